// Package source provides QuestionSource implementations for prefetch
// queues: ServiceSource calls the review service in-process, HTTPSource calls
// the batch endpoint of a remote server.
package source
