package store

import (
	"context"
	"errors"
	"time"

	"github.com/gizetz/gbairai/internal/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate")
)

type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
	VerifyUser(ctx context.Context, token string) error

	// Conversation operations
	GetOrCreateConversation(ctx context.Context, a, b int64, now time.Time) (conversation *models.Conversation, created bool, err error)
	GetConversation(ctx context.Context, id int64) (*models.Conversation, error)
	ListVisibleConversations(ctx context.Context, viewerID int64) ([]models.Conversation, error)

	// Conversation visibility
	HideConversation(ctx context.Context, conversationID, viewerID int64, now time.Time) error
	IsConversationHidden(ctx context.Context, conversationID, viewerID int64) (bool, error)
	RestoreConversation(ctx context.Context, conversationID, viewerID int64) error
	RestoreConversationForAll(ctx context.Context, conversationID int64) error

	// Message operations
	AppendMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id int64) (*models.Message, error)
	TombstoneMessage(ctx context.Context, id int64, placeholder string) error
	HideMessage(ctx context.Context, messageID, viewerID int64, now time.Time) error
	ListVisibleMessages(ctx context.Context, conversationID, viewerID int64) ([]models.Message, error)
	LastVisibleMessage(ctx context.Context, conversationID, viewerID int64) (*models.Message, error)

	// Read state
	CountUnread(ctx context.Context, conversationID, viewerID int64) (int, error)
	MarkRead(ctx context.Context, conversationID, viewerID int64) (int64, error)

	// Block operations
	CreateBlock(ctx context.Context, blockerID, blockedID int64, now time.Time) error
	DeleteBlock(ctx context.Context, blockerID, blockedID int64) error
	IsBlockedEitherDirection(ctx context.Context, a, b int64) (bool, error)
	ListBlockedBy(ctx context.Context, blockerID int64) ([]models.User, error)
}
