// Package storage persists workout summaries and user preferences as two JSON
// documents inside the configured data directory.
//
// A Store is created once per process with Open and passed to the HTTP
// handlers and CLI commands that need it. Every mutation runs on a single
// write-queue goroutine in submission order and holds an advisory file lock so
// a CLI invocation and a running server never interleave read-modify-write
// cycles. Documents are replaced atomically, which lets reads bypass the queue.
package storage
