// Package server exposes the liftplan HTTP API and serves the browser client.
//
// Routes use Go 1.22 method patterns on a single ServeMux. Every request passes
// through request-ID, access-log, panic-recovery, CORS and body-size
// middleware before reaching a handler. Handlers translate
// services.ErrValidation into 400 responses carrying the validation message;
// every other failure becomes a generic 500 and is logged with its detail.
package server
