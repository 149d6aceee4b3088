// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - auth: validates the X-API-Key header against the configured key. Paths such as
//     /metrics can be exempted for scrapers.
//   - rayid: assigns a RayID to every request (or keeps an incoming X-Ray-ID), stores it
//     in the context locals and echoes it in the response headers. logger.WithRayID
//     reads it back to correlate log entries.
//
// RayID must be registered first so every later middleware and handler can log with it.
package middleware
