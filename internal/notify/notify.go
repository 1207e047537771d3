// Package notify emits fire-and-forget signals about conversation activity.
// Delivery failures are reported to the caller for logging only; they never
// affect the operation that produced the event.
package notify

import (
	"context"
	"errors"
)

type EventType string

const (
	EventMessageCreated      EventType = "message.created"
	EventConversationStarted EventType = "conversation.started"
)

type Event struct {
	Type           EventType `json:"type"`
	RecipientID    int64     `json:"recipient_id"`
	ActorID        int64     `json:"actor_id"`
	ConversationID int64     `json:"conversation_id"`
	MessageID      int64     `json:"message_id,omitempty"`
}

//go:generate mockgen -destination=mocks/mock_notifier.go -package=mocks github.com/gizetz/gbairai/internal/notify Notifier

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Fanout delivers every event to each notifier in order and joins their
// errors. One failing notifier does not stop the others.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
