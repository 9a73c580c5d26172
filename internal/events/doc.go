// Package events implements the in-process event bus that fans resource
// change notifications out to live subscribers.
//
// Each subscriber owns an unbounded ordered queue. The subscriber set is
// guarded by a single mutex, which is also held for the duration of a
// broadcast so that every subscriber observes events in broadcast order.
// Subscribers whose connection went away are detected on the next broadcast
// and pruned.
//
// Streams are exposed over Server-Sent Events and WebSocket, and watchers can
// be registered to react to changes of one resource type.
package events
