// Package logging builds the process-wide zap logger and carries
// request correlation data through context. Every service takes the
// resulting *zap.Logger directly; the context helpers exist for the
// HTTP layer to attach request IDs and trace correlation to log lines.
package logging
