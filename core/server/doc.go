// Package server holds the HTTP server configuration.
//
// The serve command reads these settings to bind the Fiber application, guard it with
// the API key and size the read cache of the lots feature.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key and the cache TTL used by the
// read endpoints.
package server
