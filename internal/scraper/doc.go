// Package scraper fetches workout articles and reduces them to readable text.
//
// ScrapeWorkouts fans out one goroutine per URL, retries failed fetches once,
// and always returns one Result per input URL in input order. ExtractText is
// the pure HTML-to-text step and can be exercised without any network access.
package scraper
