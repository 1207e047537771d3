package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/gizetz/gbairai/internal/models"
	"github.com/gizetz/gbairai/internal/store"
)

const messageSelect = `
	SELECT m.id, m.conversation_id, m.sender_id, u.username, m.content, m.kind, m.reply_to_id,
	       m.is_tombstoned, m.is_read, m.created_at,
	       r.id, r.sender_id, r.content, r.kind, r.is_tombstoned
	FROM messages m
	JOIN users u ON u.id = m.sender_id
	LEFT JOIN messages r ON r.id = m.reply_to_id
`

// visibleTo excludes the messages hidden by the viewer bound to the
// placeholder.
const visibleTo = `
	NOT EXISTS (
		SELECT 1 FROM message_hides h
		WHERE h.message_id = m.id AND h.user_id = ?
	)
`

func scanMessage(row rowScanner, op string) (*models.Message, error) {
	var (
		m           models.Message
		kind        string
		replyToID   sql.NullInt64
		replyID     sql.NullInt64
		replySender sql.NullInt64
		replyText   sql.NullString
		replyKind   sql.NullString
		replyTomb   sql.NullBool
	)
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Username, &m.Content, &kind, &replyToID,
		&m.IsTombstoned, &m.IsRead, &m.CreatedAt,
		&replyID, &replySender, &replyText, &replyKind, &replyTomb)
	if err != nil {
		return nil, notFoundOr(err, op)
	}
	m.Kind = models.MessageKind(kind)
	if replyToID.Valid {
		id := replyToID.Int64
		m.ReplyToID = &id
	}
	if replyID.Valid {
		m.ReplyTo = &models.ReplyPreview{
			ID:           replyID.Int64,
			SenderID:     replySender.Int64,
			Content:      replyText.String,
			Kind:         models.MessageKind(replyKind.String),
			IsTombstoned: replyTomb.Bool,
		}
	}
	return &m, nil
}

// AppendMessage inserts msg and, in the same transaction, advances the
// conversation's last activity and clears every participant's hide row so
// the conversation reappears for anyone who deleted it. msg.CreatedAt must
// be set by the caller; ID and Username are filled in.
func (s *SQLStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "sqlstore.AppendMessage.Begin")
	}
	defer tx.Rollback()

	var replyTo any
	if msg.ReplyToID != nil {
		replyTo = *msg.ReplyToID
	}

	query := s.rebind(`
		INSERT INTO messages (conversation_id, sender_id, content, kind, reply_to_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err = tx.QueryRowContext(ctx, query,
		msg.ConversationID, msg.SenderID, msg.Content, string(msg.Kind), replyTo, msg.CreatedAt,
	).Scan(&msg.ID)
	if err != nil {
		return errors.Wrap(err, "sqlstore.AppendMessage.Insert")
	}

	query = s.rebind("UPDATE conversations SET last_activity_at = ? WHERE id = ? AND last_activity_at < ?")
	if _, err := tx.ExecContext(ctx, query, msg.CreatedAt, msg.ConversationID, msg.CreatedAt); err != nil {
		return errors.Wrap(err, "sqlstore.AppendMessage.Touch")
	}

	if err := s.restoreForAll(ctx, tx, msg.ConversationID); err != nil {
		return err
	}

	query = s.rebind("SELECT username FROM users WHERE id = ?")
	if err := tx.QueryRowContext(ctx, query, msg.SenderID).Scan(&msg.Username); err != nil {
		return errors.Wrap(err, "sqlstore.AppendMessage.Sender")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "sqlstore.AppendMessage.Commit")
	}
	return nil
}

func (s *SQLStore) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	query := s.rebind(messageSelect + " WHERE m.id = ?")
	return scanMessage(s.db.QueryRowContext(ctx, query, id), "sqlstore.GetMessage")
}

// TombstoneMessage replaces the content of a message for every viewer. The
// row itself is kept so the message is still listed.
func (s *SQLStore) TombstoneMessage(ctx context.Context, id int64, placeholder string) error {
	query := s.rebind("UPDATE messages SET content = ?, kind = ?, is_tombstoned = TRUE WHERE id = ?")
	result, err := s.db.ExecContext(ctx, query, placeholder, string(models.KindText), id)
	if err != nil {
		return errors.Wrap(err, "sqlstore.TombstoneMessage")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "sqlstore.TombstoneMessage.RowsAffected")
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLStore) HideMessage(ctx context.Context, messageID, viewerID int64, now time.Time) error {
	query := s.rebind(`
		INSERT INTO message_hides (message_id, user_id, hidden_at)
		VALUES (?, ?, ?)
		ON CONFLICT (message_id, user_id) DO NOTHING
	`)
	if _, err := s.db.ExecContext(ctx, query, messageID, viewerID, now); err != nil {
		return errors.Wrap(err, "sqlstore.HideMessage")
	}
	return nil
}

func (s *SQLStore) ListVisibleMessages(ctx context.Context, conversationID, viewerID int64) ([]models.Message, error) {
	query := s.rebind(messageSelect + " WHERE m.conversation_id = ? AND " + visibleTo + " ORDER BY m.created_at ASC, m.id ASC")
	rows, err := s.db.QueryContext(ctx, query, conversationID, viewerID)
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore.ListVisibleMessages")
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows, "sqlstore.ListVisibleMessages.Scan")
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// LastVisibleMessage returns the newest message the viewer has not hidden,
// or store.ErrNotFound when there is none.
func (s *SQLStore) LastVisibleMessage(ctx context.Context, conversationID, viewerID int64) (*models.Message, error) {
	query := s.rebind(messageSelect + " WHERE m.conversation_id = ? AND " + visibleTo + " ORDER BY m.created_at DESC, m.id DESC LIMIT 1")
	return scanMessage(s.db.QueryRowContext(ctx, query, conversationID, viewerID), "sqlstore.LastVisibleMessage")
}

func (s *SQLStore) CountUnread(ctx context.Context, conversationID, viewerID int64) (int, error) {
	var count int
	query := s.rebind("SELECT COUNT(*) FROM messages WHERE conversation_id = ? AND sender_id <> ? AND is_read = FALSE")
	if err := s.db.QueryRowContext(ctx, query, conversationID, viewerID).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "sqlstore.CountUnread")
	}
	return count, nil
}

// MarkRead flags every message the viewer received in the conversation as
// read and returns how many rows changed.
func (s *SQLStore) MarkRead(ctx context.Context, conversationID, viewerID int64) (int64, error) {
	query := s.rebind("UPDATE messages SET is_read = TRUE WHERE conversation_id = ? AND sender_id <> ? AND is_read = FALSE")
	result, err := s.db.ExecContext(ctx, query, conversationID, viewerID)
	if err != nil {
		return 0, errors.Wrap(err, "sqlstore.MarkRead")
	}
	return result.RowsAffected()
}
