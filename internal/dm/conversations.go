package dm

import (
	"context"
	"time"

	"github.com/gizetz/gbairai/internal/apperr"
	"github.com/gizetz/gbairai/internal/models"
	"github.com/gizetz/gbairai/internal/store"
)

type Conversations struct {
	store  store.Store
	blocks *Blocks
	now    func() time.Time
}

func NewConversations(s store.Store, blocks *Blocks, now func() time.Time) *Conversations {
	return &Conversations{store: s, blocks: blocks, now: now}
}

// GetOrCreate returns the conversation between a and b, creating it on
// first contact. Argument order does not matter. The boolean reports
// whether this call created it.
func (c *Conversations) GetOrCreate(ctx context.Context, a, b int64) (*models.Conversation, bool, error) {
	if a == b {
		return nil, false, apperr.ErrSelfConversation
	}
	if err := c.blocks.ensureNotBlocked(ctx, a, b); err != nil {
		return nil, false, err
	}
	conv, created, err := c.store.GetOrCreateConversation(ctx, a, b, c.now())
	if err != nil {
		return nil, false, apperr.Internal(err)
	}
	return conv, created, nil
}

func (c *Conversations) Get(ctx context.Context, id int64) (*models.Conversation, error) {
	conv, err := c.store.GetConversation(ctx, id)
	if err != nil {
		return nil, fromStore(err, apperr.ErrConversationNotFound)
	}
	return conv, nil
}

// GetForParticipant is Get restricted to conversations userID belongs to.
// Other conversations read as not found.
func (c *Conversations) GetForParticipant(ctx context.Context, id, userID int64) (*models.Conversation, error) {
	conv, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperr.ErrConversationNotFound
	}
	return conv, nil
}

// ListForViewer returns the viewer's conversations minus the ones the
// viewer has hidden, most recent activity first.
func (c *Conversations) ListForViewer(ctx context.Context, viewerID int64) ([]models.Conversation, error) {
	convs, err := c.store.ListVisibleConversations(ctx, viewerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return convs, nil
}
