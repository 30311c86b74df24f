// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - Auth: Implements API key validation to protect endpoints.
//   - RequestID: Assigns a unique id (UUID) to every incoming request, injecting it into
//     the context and response headers for tracing. Handlers pick it up through
//     logger.WithRequestID.
//
// These middleware components are designed to be registered globally in the main
// application setup, before any feature routes.
package middleware
