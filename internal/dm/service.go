package dm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gizetz/gbairai/internal/apperr"
	"github.com/gizetz/gbairai/internal/models"
	"github.com/gizetz/gbairai/internal/notify"
	"github.com/gizetz/gbairai/internal/store"
)

type Options struct {
	Notifier             notify.Notifier
	Logger               *slog.Logger
	TombstonePlaceholder string
	Now                  func() time.Time
}

// Service wires the components together and exposes the use cases served
// over HTTP.
type Service struct {
	Blocks        *Blocks
	Conversations *Conversations
	Visibility    *Visibility
	Ledger        *Ledger
	Unread        *Unread

	store  store.Store
	logger *slog.Logger
}

func NewService(s store.Store, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	blocks := NewBlocks(s, now)
	conversations := NewConversations(s, blocks, now)
	return &Service{
		Blocks:        blocks,
		Conversations: conversations,
		Visibility:    NewVisibility(s, now),
		Ledger:        NewLedger(s, conversations, blocks, opts.Notifier, opts.TombstonePlaceholder, logger, now),
		Unread:        NewUnread(s),
		store:         s,
		logger:        logger,
	}
}

// StartConversation opens (or reopens) the conversation between the
// caller and participantID.
func (s *Service) StartConversation(ctx context.Context, callerID, participantID int64) (*models.Conversation, error) {
	if callerID != participantID {
		if _, err := s.store.GetUserByID(ctx, participantID); err != nil {
			return nil, fromStore(err, apperr.ErrAccountNotFound)
		}
	}
	conv, created, err := s.Conversations.GetOrCreate(ctx, callerID, participantID)
	if err != nil {
		return nil, err
	}
	if created {
		s.Ledger.emit(ctx, notify.Event{
			Type:           notify.EventConversationStarted,
			RecipientID:    participantID,
			ActorID:        callerID,
			ConversationID: conv.ID,
		})
	}
	return conv, nil
}

// Inbox lists the viewer's visible conversations with participants, the
// last message the viewer can see and the viewer's unread count.
func (s *Service) Inbox(ctx context.Context, viewerID int64) ([]models.ConversationSummary, error) {
	convs, err := s.Conversations.ListForViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.ConversationSummary, 0, len(convs))
	for i := range convs {
		summary, err := s.summarize(ctx, &convs[i], viewerID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// Conversation returns a single conversation summary. Conversations the
// viewer does not belong to read as not found; hidden ones are still
// reachable by id.
func (s *Service) Conversation(ctx context.Context, viewerID, conversationID int64) (*models.ConversationSummary, error) {
	conv, err := s.Conversations.GetForParticipant(ctx, conversationID, viewerID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, conv, viewerID)
}

func (s *Service) summarize(ctx context.Context, conv *models.Conversation, viewerID int64) (*models.ConversationSummary, error) {
	summary := &models.ConversationSummary{
		ID:             conv.ID,
		Participants:   make([]models.User, 0, 2),
		LastActivityAt: conv.LastActivityAt,
	}
	for _, id := range conv.Participants() {
		u, err := s.store.GetUserByID(ctx, id)
		if err != nil {
			return nil, fromStore(err, nil)
		}
		summary.Participants = append(summary.Participants, models.User{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt})
	}

	last, err := s.store.LastVisibleMessage(ctx, conv.ID, viewerID)
	switch {
	case err == nil:
		summary.LastMessage = last
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal(err)
	}

	if summary.UnreadCount, err = s.Unread.CountUnread(ctx, conv.ID, viewerID); err != nil {
		return nil, err
	}
	return summary, nil
}

// Messages lists what the viewer can see in the conversation and marks the
// received messages as read. A failure to mark read is logged and left for
// the next read.
func (s *Service) Messages(ctx context.Context, viewerID, conversationID int64) ([]models.Message, error) {
	msgs, err := s.Ledger.ListVisible(ctx, conversationID, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.Unread.MarkRead(ctx, conversationID, viewerID); err != nil {
		s.logger.Warn("mark read failed",
			"conversation_id", conversationID,
			"viewer_id", viewerID,
			"err", err)
	}
	return msgs, nil
}

func (s *Service) Send(ctx context.Context, in AppendInput) (*models.Message, error) {
	return s.Ledger.Append(ctx, in)
}

// DeleteConversation hides the conversation for the caller only.
func (s *Service) DeleteConversation(ctx context.Context, viewerID, conversationID int64) error {
	if _, err := s.Conversations.GetForParticipant(ctx, conversationID, viewerID); err != nil {
		return err
	}
	return s.Visibility.Hide(ctx, conversationID, viewerID)
}

func (s *Service) DeleteMessageForMe(ctx context.Context, viewerID, messageID int64) error {
	return s.Ledger.HideForViewer(ctx, messageID, viewerID)
}

func (s *Service) DeleteMessageForEveryone(ctx context.Context, requesterID, messageID int64) error {
	return s.Ledger.TombstoneForEveryone(ctx, messageID, requesterID)
}

func (s *Service) Block(ctx context.Context, blockerID, blockedID int64) error {
	return s.Blocks.Block(ctx, blockerID, blockedID)
}

func (s *Service) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	return s.Blocks.Unblock(ctx, blockerID, blockedID)
}

func (s *Service) BlockedUsers(ctx context.Context, viewerID int64) ([]models.User, error) {
	return s.Blocks.ListBlockedBy(ctx, viewerID)
}
