// Package logging normalizes application log entries into a consistent
// JSON schema, tags them with correlation identifiers, and forwards them
// to a pluggable backend engine.
//
// Key features
//   - One record shape for everything: general messages, HTTP
//     request/response pairs, and SFTP/DB transaction records
//   - Trace ids ride on context.Context; Run/ContextWithTraceID scope them,
//     TraceIDFromContext reads them back
//   - Request and response logs are correlated through a per-request
//     association, so both ends share traceId and requestId
//   - Pluggable engines behind a narrow interface: zerolog (reference)
//     and zap, both with lumberjack file rotation
//   - Sensitive headers are redacted before they reach any engine
//   - Graceful shutdown that waits for in-flight logs (bounded timeout)
//
// Logging never panics, never blocks the caller beyond a synchronous
// write, and never alters control flow: every entry point on Service is
// safe to call on an uninitialized or closed service.
//
// Typical usage
//
//	svc := logging.New(logging.WithConfig(logging.DefaultConfig()))
//	if err := svc.Initialize(); err != nil { panic(err) }
//	defer svc.Close()
//
//	svc.Info(ctx, logging.Text("order processed"), logging.WithField("orderId", id))
//
//	router.Use(svc.TraceMiddleware())
//	client := &http.Client{Transport: svc.NewTransport()}
package logging
