// Package watch checks files and git repositories against a tracker, once,
// on a schedule, or whenever the filesystem reports a write.
package watch
