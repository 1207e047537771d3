package dm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gizetz/gbairai/internal/apperr"
	"github.com/gizetz/gbairai/internal/models"
	"github.com/gizetz/gbairai/internal/notify"
	"github.com/gizetz/gbairai/internal/store"
)

const DefaultTombstonePlaceholder = "This message was deleted"

type AppendInput struct {
	ConversationID int64
	SenderID       int64
	Content        string
	Kind           models.MessageKind
	ReplyToID      *int64
}

// Ledger is the per-conversation message log. Messages are never removed:
// a viewer can hide one for themselves, and the sender can tombstone one
// for everyone, which replaces its content but keeps it listed.
type Ledger struct {
	conversations *Conversations
	blocks        *Blocks
	store         store.Store
	notifier      notify.Notifier
	placeholder   string
	logger        *slog.Logger
	now           func() time.Time
}

func NewLedger(s store.Store, conversations *Conversations, blocks *Blocks, notifier notify.Notifier, placeholder string, logger *slog.Logger, now func() time.Time) *Ledger {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if placeholder == "" {
		placeholder = DefaultTombstonePlaceholder
	}
	return &Ledger{
		conversations: conversations,
		blocks:        blocks,
		store:         s,
		notifier:      notifier,
		placeholder:   placeholder,
		logger:        logger,
		now:           now,
	}
}

// Append stores a new message and makes the conversation visible again to
// both participants. Content policy is applied by the caller beforehand;
// only empty content is rejected here.
func (l *Ledger) Append(ctx context.Context, in AppendInput) (*models.Message, error) {
	conv, err := l.conversations.Get(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(in.SenderID) {
		return nil, apperr.ErrNotParticipant
	}
	recipientID := conv.Other(in.SenderID)
	if err := l.blocks.ensureNotBlocked(ctx, in.SenderID, recipientID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.ErrEmptyContent
	}
	kind := in.Kind
	if kind == "" {
		kind = models.KindText
	}
	if !kind.Valid() {
		return nil, apperr.ErrInvalidKind
	}

	now := l.now()
	if in.ReplyToID != nil {
		if err := l.checkReply(ctx, conv.ID, *in.ReplyToID, now); err != nil {
			return nil, err
		}
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		Kind:           kind,
		ReplyToID:      in.ReplyToID,
		CreatedAt:      now,
	}
	if err := l.store.AppendMessage(ctx, msg); err != nil {
		return nil, apperr.Internal(err)
	}
	if in.ReplyToID != nil {
		if target, err := l.store.GetMessage(ctx, *in.ReplyToID); err == nil {
			msg.ReplyTo = &models.ReplyPreview{
				ID:           target.ID,
				SenderID:     target.SenderID,
				Content:      target.Content,
				Kind:         target.Kind,
				IsTombstoned: target.IsTombstoned,
			}
		}
	}

	l.emit(ctx, notify.Event{
		Type:           notify.EventMessageCreated,
		RecipientID:    recipientID,
		ActorID:        in.SenderID,
		ConversationID: conv.ID,
		MessageID:      msg.ID,
	})
	return msg, nil
}

// checkReply accepts only targets that already exist in the same
// conversation. Because the target must exist before the new message,
// reply chains cannot form cycles.
func (l *Ledger) checkReply(ctx context.Context, conversationID, replyToID int64, now time.Time) error {
	target, err := l.store.GetMessage(ctx, replyToID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.ErrInvalidReply
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if target.ConversationID != conversationID || target.CreatedAt.After(now) {
		return apperr.ErrInvalidReply
	}
	return nil
}

// TombstoneForEveryone replaces the message content with the placeholder
// for all viewers. Only the sender may do it, and it cannot be undone.
func (l *Ledger) TombstoneForEveryone(ctx context.Context, messageID, requesterID int64) error {
	msg, err := l.store.GetMessage(ctx, messageID)
	if err != nil {
		return fromStore(err, apperr.ErrMessageNotFound)
	}
	if msg.SenderID != requesterID {
		return apperr.ErrNotSender
	}
	if msg.IsTombstoned {
		return nil
	}
	return fromStore(l.store.TombstoneMessage(ctx, messageID, l.placeholder), apperr.ErrMessageNotFound)
}

// HideForViewer removes the message from viewerID's listing only.
// Hiding twice is a no-op.
func (l *Ledger) HideForViewer(ctx context.Context, messageID, viewerID int64) error {
	msg, err := l.store.GetMessage(ctx, messageID)
	if err != nil {
		return fromStore(err, apperr.ErrMessageNotFound)
	}
	conv, err := l.conversations.Get(ctx, msg.ConversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(viewerID) {
		return apperr.ErrNotParticipant
	}
	if err := l.store.HideMessage(ctx, messageID, viewerID, l.now()); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ListVisible returns the conversation's messages in creation order,
// without the ones viewerID hid. Tombstoned messages are included.
func (l *Ledger) ListVisible(ctx context.Context, conversationID, viewerID int64) ([]models.Message, error) {
	if _, err := l.conversations.GetForParticipant(ctx, conversationID, viewerID); err != nil {
		return nil, err
	}
	msgs, err := l.store.ListVisibleMessages(ctx, conversationID, viewerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return msgs, nil
}

func (l *Ledger) emit(ctx context.Context, event notify.Event) {
	if err := l.notifier.Notify(ctx, event); err != nil {
		l.logger.Warn("notification failed",
			"type", event.Type,
			"conversation_id", event.ConversationID,
			"recipient_id", event.RecipientID,
			"err", err)
	}
}
