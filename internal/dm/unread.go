package dm

import (
	"context"

	"github.com/gizetz/gbairai/internal/apperr"
	"github.com/gizetz/gbairai/internal/store"
)

type Unread struct {
	store store.Store
}

func NewUnread(s store.Store) *Unread {
	return &Unread{store: s}
}

// CountUnread counts the messages in the conversation that were sent by
// the other participant and not yet read by viewerID.
func (u *Unread) CountUnread(ctx context.Context, conversationID, viewerID int64) (int, error) {
	n, err := u.store.CountUnread(ctx, conversationID, viewerID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}

// MarkRead marks every message received by viewerID as read. A message
// appended concurrently may be left for the next read.
func (u *Unread) MarkRead(ctx context.Context, conversationID, viewerID int64) error {
	if _, err := u.store.MarkRead(ctx, conversationID, viewerID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
