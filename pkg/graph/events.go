package graph

// EventType identifies the kind of a graph event.
type EventType string

const (
	// EventTargetChanged signals that a node's state changed in a way that
	// invalidates anything computed from it.
	EventTargetChanged EventType = "target.changed"

	// EventTargetDeleted signals that a node's last strong reference was
	// dropped and it is being disposed.
	EventTargetDeleted EventType = "target.deleted"

	// EventReferenceChanged signals that a single-reference field was set.
	EventReferenceChanged EventType = "reference.changed"

	// EventReferenceAdded signals an insertion into a vector field.
	EventReferenceAdded EventType = "reference.added"

	// EventReferenceRemoved signals a removal from a vector field.
	EventReferenceRemoved EventType = "reference.removed"
)

// Event is delivered synchronously to the dependents of its source node.
type Event interface {
	GetType() EventType
	EventSource() Node
}

type BaseEvent struct {
	source Node
}

func (e BaseEvent) EventSource() Node { return e.source }

// TargetChanged propagates upward: a dependent receiving it normally
// re-raises it as its own TargetChanged (see Node.HandleReferenceEvent).
type TargetChanged struct {
	BaseEvent
}

func (TargetChanged) GetType() EventType { return EventTargetChanged }

// TargetDeleted is delivered to the remaining (weak) dependents of a node
// being disposed. Their weak fields are cleared before delivery.
type TargetDeleted struct {
	BaseEvent
}

func (TargetDeleted) GetType() EventType { return EventTargetDeleted }

// ReferenceChanged reports a single-reference field mutation on its source
// node. Delivered one hop, to the owner's dependents.
type ReferenceChanged struct {
	BaseEvent

	Field string
	Old   Node
	New   Node
}

func (ReferenceChanged) GetType() EventType { return EventReferenceChanged }

// ReferenceAdded reports an insertion into a vector reference field.
// Consumers maintaining parallel lists (UI) use the index.
type ReferenceAdded struct {
	BaseEvent

	Field  string
	Target Node
	Index  int
}

func (ReferenceAdded) GetType() EventType { return EventReferenceAdded }

// ReferenceRemoved reports a removal from a vector reference field.
type ReferenceRemoved struct {
	BaseEvent

	Field  string
	Target Node
	Index  int
}

func (ReferenceRemoved) GetType() EventType { return EventReferenceRemoved }
