// Package api defines the wire types shared by the Larder server and its
// clients
//
// This package contains recipes and their child resources (steps, images,
// ingredients, tags), user accounts, and the HTTP request and response
// messages
package api
