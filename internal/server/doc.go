// Package server implements the Larder REST API
//
// This package provides endpoints for recipes and their steps, images and
// ingredients, tags, user accounts, favourites, and the password and email
// confirmation flows. Steps and images are repositioned through their
// change-order endpoints, which delegate to the sequence reorder engine
package server
