// Package main hosts the liftplan CLI entrypoint and command graph.
//
// The Cobra command tree runs the HTTP server, drives one-off analyses from
// the terminal, and inspects or edits the JSON documents in the data
// directory. Commands share configuration loading and component wiring through
// commandContext; the work itself lives in the internal packages.
package main
