// Package watcher automates sorting by monitoring a drop directory.
//
// Detector batch jobs finish by writing a results .json file somewhere; the
// watcher picks those files up as they land and runs each one through the
// separator. Filesystem events come from fsnotify, with a quiet-period
// debounce so a file still being written is not processed half-finished.
//
// Key behaviors:
//   - Only *.json files are considered; hidden and temp files are ignored
//   - A file is handled once its size and mtime have been stable for the
//     debounce window
//   - Rewritten files are processed again; unchanged duplicates are not
//   - Graceful shutdown via Stop, which drains the pending set first
package watcher
