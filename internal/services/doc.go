// Package services defines shared utilities consumed by the HTTP handlers, the
// CLI, and the external integrations (scraper, LLM provider).
//
// Key responsibilities:
//   - Context helpers that stamp request correlation identifiers and component
//     names for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (validation vs upstream vs storage) with errors.Is.
//   - PublicError for messages that are safe to hand back to API clients.
//
// Use these helpers when wiring new components so operational behaviour (error
// classification, observability) stays uniform.
package services
