// Package server holds the configuration of the read-only HTTP query API.
//
// The API itself is assembled in cmd/start.go from the features registered on the
// loader; this package only validates where and how it listens.
package server
