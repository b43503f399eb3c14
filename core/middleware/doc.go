// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key header or api_key query) guarding the
//     sync trigger endpoints.
//   - rayid: a request id (RayID) stored in the Fiber locals and echoed in the
//     response headers, picked up by logger.WithRayID.
//
// Register rayid first so every later log line carries the id.
package middleware
