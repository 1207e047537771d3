package dm

import (
	"context"
	"errors"
	"time"

	"github.com/gizetz/gbairai/internal/apperr"
	"github.com/gizetz/gbairai/internal/models"
	"github.com/gizetz/gbairai/internal/store"
)

// Blocks stores block relations by direction (blocker -> blocked) and
// enforces them in both directions. Only the blocker can lift a block.
type Blocks struct {
	store store.Store
	now   func() time.Time
}

func NewBlocks(s store.Store, now func() time.Time) *Blocks {
	return &Blocks{store: s, now: now}
}

func (b *Blocks) Block(ctx context.Context, blockerID, blockedID int64) error {
	if blockerID == blockedID {
		return apperr.ErrSelfBlock
	}
	target, err := b.store.GetUserByID(ctx, blockedID)
	if err != nil {
		return fromStore(err, apperr.ErrAccountNotFound)
	}
	if target.IsSystem {
		return apperr.ErrProtectedAccount
	}

	err = b.store.CreateBlock(ctx, blockerID, blockedID, b.now())
	if errors.Is(err, store.ErrDuplicate) {
		return apperr.ErrAlreadyBlocked
	}
	return fromStore(err, nil)
}

func (b *Blocks) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	return fromStore(b.store.DeleteBlock(ctx, blockerID, blockedID), apperr.ErrBlockNotFound)
}

// IsBlockedEitherDirection is the single enforcement predicate for
// conversation creation and message sending.
func (b *Blocks) IsBlockedEitherDirection(ctx context.Context, x, y int64) (bool, error) {
	blocked, err := b.store.IsBlockedEitherDirection(ctx, x, y)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return blocked, nil
}

// ensureNotBlocked returns apperr.ErrBlocked whichever side created the
// block, so callers cannot tell who blocked whom.
func (b *Blocks) ensureNotBlocked(ctx context.Context, x, y int64) error {
	blocked, err := b.IsBlockedEitherDirection(ctx, x, y)
	if err != nil {
		return err
	}
	if blocked {
		return apperr.ErrBlocked
	}
	return nil
}

func (b *Blocks) ListBlockedBy(ctx context.Context, viewerID int64) ([]models.User, error) {
	users, err := b.store.ListBlockedBy(ctx, viewerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}
