package sqlstore

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/gizetz/gbairai/internal/models"
)

const conversationColumns = "c.id, c.user_low_id, c.user_high_id, c.created_at, c.last_activity_at"

// GetOrCreateConversation returns the conversation for the unordered pair
// {a, b}, creating it if needed. Concurrent callers for the same pair all
// receive the same row: the insert is a no-op on conflict, and a unique
// violation from a racing insert falls through to the fetch.
func (s *SQLStore) GetOrCreateConversation(ctx context.Context, a, b int64, now time.Time) (*models.Conversation, bool, error) {
	low, high := models.CanonicalPair(a, b)

	query := s.rebind(`
		INSERT INTO conversations (user_low_id, user_high_id, created_at, last_activity_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_low_id, user_high_id) DO NOTHING
	`)
	created := false
	result, err := s.db.ExecContext(ctx, query, low, high, now, now)
	switch {
	case err == nil:
		n, err := result.RowsAffected()
		if err != nil {
			return nil, false, errors.Wrap(err, "sqlstore.GetOrCreateConversation.RowsAffected")
		}
		created = n == 1
	case !isUniqueViolation(err):
		return nil, false, errors.Wrap(err, "sqlstore.GetOrCreateConversation.Insert")
	}

	query = s.rebind("SELECT " + conversationColumns + " FROM conversations c WHERE c.user_low_id = ? AND c.user_high_id = ?")
	c, err := scanConversation(s.db.QueryRowContext(ctx, query, low, high), "sqlstore.GetOrCreateConversation.Select")
	if err != nil {
		return nil, false, err
	}
	return c, created, nil
}

func (s *SQLStore) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	query := s.rebind("SELECT " + conversationColumns + " FROM conversations c WHERE c.id = ?")
	return scanConversation(s.db.QueryRowContext(ctx, query, id), "sqlstore.GetConversation")
}

func scanConversation(row rowScanner, op string) (*models.Conversation, error) {
	var c models.Conversation
	if err := row.Scan(&c.ID, &c.UserLowID, &c.UserHighID, &c.CreatedAt, &c.LastActivityAt); err != nil {
		return nil, notFoundOr(err, op)
	}
	return &c, nil
}

// ListVisibleConversations returns the viewer's conversations that the
// viewer has not hidden, most recent activity first.
func (s *SQLStore) ListVisibleConversations(ctx context.Context, viewerID int64) ([]models.Conversation, error) {
	query := s.rebind(`
		SELECT ` + conversationColumns + `
		FROM conversations c
		WHERE (c.user_low_id = ? OR c.user_high_id = ?)
		  AND NOT EXISTS (
			SELECT 1 FROM conversation_hides h
			WHERE h.conversation_id = c.id AND h.user_id = ?
		  )
		ORDER BY c.last_activity_at DESC, c.id DESC
	`)
	rows, err := s.db.QueryContext(ctx, query, viewerID, viewerID, viewerID)
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore.ListVisibleConversations")
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows, "sqlstore.ListVisibleConversations.Scan")
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *c)
	}
	return conversations, rows.Err()
}

func (s *SQLStore) HideConversation(ctx context.Context, conversationID, viewerID int64, now time.Time) error {
	query := s.rebind(`
		INSERT INTO conversation_hides (conversation_id, user_id, hidden_at)
		VALUES (?, ?, ?)
		ON CONFLICT (conversation_id, user_id) DO UPDATE SET hidden_at = excluded.hidden_at
	`)
	if _, err := s.db.ExecContext(ctx, query, conversationID, viewerID, now); err != nil {
		return errors.Wrap(err, "sqlstore.HideConversation")
	}
	return nil
}

func (s *SQLStore) IsConversationHidden(ctx context.Context, conversationID, viewerID int64) (bool, error) {
	var hidden bool
	query := s.rebind("SELECT EXISTS(SELECT 1 FROM conversation_hides WHERE conversation_id = ? AND user_id = ?)")
	if err := s.db.QueryRowContext(ctx, query, conversationID, viewerID).Scan(&hidden); err != nil {
		return false, errors.Wrap(err, "sqlstore.IsConversationHidden")
	}
	return hidden, nil
}

func (s *SQLStore) RestoreConversation(ctx context.Context, conversationID, viewerID int64) error {
	query := s.rebind("DELETE FROM conversation_hides WHERE conversation_id = ? AND user_id = ?")
	if _, err := s.db.ExecContext(ctx, query, conversationID, viewerID); err != nil {
		return errors.Wrap(err, "sqlstore.RestoreConversation")
	}
	return nil
}

func (s *SQLStore) RestoreConversationForAll(ctx context.Context, conversationID int64) error {
	return s.restoreForAll(ctx, s.db, conversationID)
}

// restoreForAll clears the hide rows of both participants. AppendMessage
// runs it inside the insert transaction.
func (s *SQLStore) restoreForAll(ctx context.Context, q queryer, conversationID int64) error {
	query := s.rebind(`
		DELETE FROM conversation_hides
		WHERE conversation_id = ?
		  AND user_id IN (
			SELECT user_low_id FROM conversations WHERE id = ?
			UNION
			SELECT user_high_id FROM conversations WHERE id = ?
		  )
	`)
	if _, err := q.ExecContext(ctx, query, conversationID, conversationID, conversationID); err != nil {
		return errors.Wrap(err, "sqlstore.restoreForAll")
	}
	return nil
}
