// Package prefetch keeps a small in-memory buffer of upcoming review
// questions so that a consumer asking for the next question is answered
// immediately, while batches are fetched from a QuestionSource in the
// background.
//
// A Queue never has more than one fetch in flight. Every successful Pop
// schedules a refill, so under steady consumption the buffer stays near
// TargetQueueSize without timers or overlapping requests. Words are unique
// within a queue; duplicates returned by a source are dropped on merge.
//
// Fetch failures are recorded (see Queue.LastError) and otherwise swallowed;
// the next Pop or lifecycle call tries again.
package prefetch
