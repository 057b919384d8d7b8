// Package watcher reloads the catalog when its source file changes.
//
// The watcher observes the directory holding the catalog rather than the
// file itself, so editors and generators that replace the file through a
// rename are seen as well. Bursts of events are debounced into one reload.
package watcher
