package dm

import (
	"context"
	"time"

	"github.com/gizetz/gbairai/internal/apperr"
	"github.com/gizetz/gbairai/internal/store"
)

// Visibility tracks which viewers have hidden a conversation. A hidden
// conversation becomes visible again only when a message is appended to
// it; see Ledger.Append.
type Visibility struct {
	store store.Store
	now   func() time.Time
}

func NewVisibility(s store.Store, now func() time.Time) *Visibility {
	return &Visibility{store: s, now: now}
}

func (v *Visibility) Hide(ctx context.Context, conversationID, viewerID int64) error {
	if err := v.store.HideConversation(ctx, conversationID, viewerID, v.now()); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (v *Visibility) IsHidden(ctx context.Context, conversationID, viewerID int64) (bool, error) {
	hidden, err := v.store.IsConversationHidden(ctx, conversationID, viewerID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return hidden, nil
}

func (v *Visibility) Restore(ctx context.Context, conversationID, viewerID int64) error {
	if err := v.store.RestoreConversation(ctx, conversationID, viewerID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// RestoreForAll makes the conversation visible to both participants.
// Ledger.Append gets the same effect inside its insert transaction.
func (v *Visibility) RestoreForAll(ctx context.Context, conversationID int64) error {
	if err := v.store.RestoreConversationForAll(ctx, conversationID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
