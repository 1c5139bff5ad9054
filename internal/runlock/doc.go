// Package runlock provides advisory file locks that keep two stereomax
// processes from writing the same output, or watching the same directory, at
// once. Locks are flock(2) based and released automatically if the holder dies.
package runlock
