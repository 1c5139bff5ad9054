// Package history keeps a SQLite ledger of pipeline runs.
//
// Every run, successful, no-op or failed, is recorded with its input and
// output paths, profile, merge strategy, stream count and failure details so
// the CLI can show recent activity. The store uses modernc.org/sqlite (pure
// Go, no cgo) in WAL mode and retries briefly when another process holds the
// write lock, which happens when several watch or CLI runs finish together.
package history
