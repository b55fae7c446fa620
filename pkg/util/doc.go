// Package util provides small generic helpers shared by the API types and
// the server
package util
