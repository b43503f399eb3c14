// Package server holds the HTTP trigger server configuration.
//
// The serve command starts a Fiber app that exposes the sync pipeline over HTTP.
// This package only defines where it listens and the API key that guards it.
package server
