// Package api defines the wire-format types, request validators and shared
// workflows behind the HTTP server and the CLI.
//
// # Key Types
//
// AnalyzeRequest/AnalyzeResponse: URLs plus preferences in, plan, summary and
// per-URL scrape results out.
//
// SaveRequest, FeedbackRequest: history mutations.
//
// HistoryResponse, PreferencesResponse, ErrorResponse: response envelopes.
//
// # Validators
//
// ParseAnalyzeRequest, ParseSaveRequest, ParsePreferencesRequest,
// ParseFeedbackRequest and ParseTimestamp are pure functions. They return a
// typed request or a services.ErrValidation error whose message is safe to
// show to clients.
//
// # Workflows
//
// AnalyzeService runs scrape then plan generation. Only successful scrapes are
// handed to the planner while every result is echoed back as processedUrls.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for the browser client.
package api
