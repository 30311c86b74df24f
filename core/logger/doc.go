// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework used by the query API.
//
// # Context Awareness
//
// Every HTTP request gets a request id (see core/middleware/requestid). The WithRequestID helper
// extracts it from a Fiber context and attaches it to the log entry, so all logs related to one
// request can be correlated. Long-running components derive named children instead
// (logger.Named("provider").With(zap.String("provider", "process"))).
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Monitor started")
//
//	// In a request handler:
//	l := logger.WithRequestID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
