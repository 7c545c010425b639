// Package eventbus is the minimal external collaborator the coordination
// primitives dispatch fire-and-forget notifications through: dispatch is
// best-effort and must never block or fail the primitive operation that
// triggered it. Modeled on the teacher's queue/pubsub (Message/Publisher
// shape) generalized from Kafka-only to a Bus interface with an in-memory
// default.
package eventbus

import "context"

// Event is one notification dispatched by a primitive. Key scopes delivery
// ordering: events dispatched for the same Key are delivered in dispatch
// order; there is no ordering guarantee across keys.
type Event struct {
	Name    string
	Key     string
	Payload any
}

// Bus dispatches events to subscribed handlers. Dispatch must return without
// waiting for delivery; Subscribe returns an unsubscribe function.
type Bus interface {
	Dispatch(ctx context.Context, evt Event)
	Subscribe(handler func(Event)) (unsubscribe func())
	Close() error
}
