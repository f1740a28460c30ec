// Package task runs short units of background work off the caller's
// goroutine. The prefetch queue uses it to execute question fetches so that
// Pop and Preload never block on network I/O; the server shares one worker
// pool across every user's queue.
package task
