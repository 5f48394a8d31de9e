// Package config loads, normalizes, and validates liftplan configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// OPENAI_API_KEY and PORT. Configuration is read once at process start; the
// resulting Config is passed explicitly to the storage, scraper, LLM client,
// and HTTP server constructors.
package config
