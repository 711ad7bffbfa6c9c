// Package eventbus mirrors graph reference mutations onto a message bus so
// external collaborators (undo stacks, UI lists) can observe the object
// graph without hooking into its synchronous notification waves. Records
// are buffered during a wave and published when the graph flushes, after
// the wave has fully settled.
package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/chilammps/vizflow/pkg/graph"
)

// Topic is the bus topic carrying mutation records.
const Topic = "vizflow.mutations"

// Mutation is the wire form of one graph mutation. Nodes are identified by
// their UIDs; subscribers resolve them against their own node tables.
type Mutation struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Node   string `json:"node"`
	Field  string `json:"field,omitempty"`
	Old    string `json:"old,omitempty"`
	New    string `json:"new,omitempty"`
	Target string `json:"target,omitempty"`
	Index  int    `json:"index,omitempty"`
}

// Handler consumes mutation records from a subscription.
type Handler func(ctx context.Context, m Mutation) error

// Journal buffers graph mutation events and publishes them as JSON
// messages on an in-memory pub/sub. It implements graph.Journal.
type Journal struct {
	logger *slog.Logger
	pubSub *gochannel.GoChannel
	buffer []Mutation
}

func NewJournal(logger *slog.Logger) *Journal {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 1000,
			Persistent:          false,
		},
		watermill.NewSlogLogger(logger),
	)

	return &Journal{
		logger: logger.With("module", "eventbus"),
		pubSub: pubSub,
	}
}

// Record buffers a mutation event. Change notifications (TargetChanged)
// are not journaled; only structural reference mutations are.
func (j *Journal) Record(event graph.Event) {
	m := Mutation{
		ID:   watermill.NewULID(),
		Kind: string(event.GetType()),
		Node: event.EventSource().UID(),
	}

	switch ev := event.(type) {
	case graph.ReferenceChanged:
		m.Field = ev.Field
		m.Old = nodeUID(ev.Old)
		m.New = nodeUID(ev.New)
	case graph.ReferenceAdded:
		m.Field = ev.Field
		m.Target = nodeUID(ev.Target)
		m.Index = ev.Index
	case graph.ReferenceRemoved:
		m.Field = ev.Field
		m.Target = nodeUID(ev.Target)
		m.Index = ev.Index
	case graph.TargetDeleted:
	default:
		return
	}

	j.buffer = append(j.buffer, m)
}

// Flush publishes the buffered mutations in order and clears the buffer.
// The graph calls this once the notification wave that produced the
// records has completed.
func (j *Journal) Flush() {
	for _, m := range j.buffer {
		payload, err := json.Marshal(m)
		if err != nil {
			j.logger.Error("Failed to encode mutation", "mutation", m.ID, "error", err)
			continue
		}

		msg := message.NewMessage(m.ID, payload)
		msg.Metadata.Set("kind", m.Kind)

		if err := j.pubSub.Publish(Topic, msg); err != nil {
			j.logger.Error("Failed to publish mutation", "mutation", m.ID, "error", err)
		}
	}

	j.buffer = j.buffer[:0]
}

// Subscribe delivers mutation records to handler until ctx is done.
func (j *Journal) Subscribe(ctx context.Context, handler Handler) error {
	messages, err := j.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var m Mutation
			if err := json.Unmarshal(msg.Payload, &m); err != nil {
				j.logger.Error("Failed to decode mutation", "message", msg.UUID, "error", err)
				msg.Nack()

				continue
			}

			if err := handler(ctx, m); err != nil {
				j.logger.Error("Mutation handler failed", "mutation", m.ID, "error", err)
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

// Close shuts down the underlying pub/sub.
func (j *Journal) Close() error {
	return j.pubSub.Close()
}

func nodeUID(n graph.Node) string {
	if n == nil {
		return ""
	}

	return n.UID()
}
