// Package watch reports batches of changed files below a set of directories.
//
// A [Watcher] adds every directory below the roots it is given, including
// directories created later, and collects the files written, created, removed
// or renamed. Once no event has arrived for the debounce interval the batch
// is passed to the change callback, at most as often as the rate limiter
// allows.
package watch
