// Package watcher wraps fsnotify with per-path callback registration and
// burst coalescing.
//
// Raw filesystem notifications arrive in bursts; the watcher debounces
// them per path so consumers see one settled event per burst. Consumers
// should re-stat the path on each event rather than trust the event's
// operation bits, since intermediate states are coalesced away.
package watcher
