// Package events provides types and interfaces for an event-driven architecture.
//
// Prefetch queues describe their lifecycle (fetch started, fetch finished,
// cleared, exhausted) as QueueEvents. Queues emit events without knowing
// which handlers will process them; the server registers a logging handler
// and tests register a recording handler.
//
// The primary components are:
// - QueueEvent: a single lifecycle notification from one queue
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
