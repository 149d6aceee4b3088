// Package logger provides structured logging based on Zap.
//
// New builds a development (debug) or production logger with console or json encoding.
// Field helpers scope a logger to the unit of work it reports on:
//   - WithRayID attaches the RayID of a Fiber request so every log line of the request
//     can be correlated.
//   - WithAuction attaches the auction a sync run works on.
//
// Sync code logs per-lot diagnostics with the identifier, lot_number and url fields.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "json"})
//	log = logger.WithAuction(log, "hilco-monterrey")
//	log.Warn("Image not migrated", zap.String("lot_number", "12"), zap.String("url", src))
package logger
