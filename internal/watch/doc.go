// Package watch normalizes media files as they appear in a directory.
//
// A Watcher listens for fsnotify create and write events, waits until a file
// has stopped changing for the settle delay, and hands it to a Handler with an
// output path in the configured output directory. Files already present when
// the watcher starts are queued too. Files are processed one at a time; an
// output that already exists is skipped. A lock file in the watched directory
// keeps a second watcher away.
package watch
