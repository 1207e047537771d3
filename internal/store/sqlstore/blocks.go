package sqlstore

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/gizetz/gbairai/internal/models"
	"github.com/gizetz/gbairai/internal/store"
)

// CreateBlock stores the directed relation blocker -> blocked. A second
// call for the same direction returns store.ErrDuplicate.
func (s *SQLStore) CreateBlock(ctx context.Context, blockerID, blockedID int64, now time.Time) error {
	query := s.rebind("INSERT INTO blocks (blocker_id, blocked_id, created_at) VALUES (?, ?, ?)")
	if _, err := s.db.ExecContext(ctx, query, blockerID, blockedID, now); err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return errors.Wrap(err, "sqlstore.CreateBlock")
	}
	return nil
}

// DeleteBlock removes only the relation created by blockerID.
func (s *SQLStore) DeleteBlock(ctx context.Context, blockerID, blockedID int64) error {
	query := s.rebind("DELETE FROM blocks WHERE blocker_id = ? AND blocked_id = ?")
	result, err := s.db.ExecContext(ctx, query, blockerID, blockedID)
	if err != nil {
		return errors.Wrap(err, "sqlstore.DeleteBlock")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "sqlstore.DeleteBlock.RowsAffected")
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLStore) IsBlockedEitherDirection(ctx context.Context, a, b int64) (bool, error) {
	var blocked bool
	query := s.rebind(`
		SELECT EXISTS(
			SELECT 1 FROM blocks
			WHERE (blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)
		)
	`)
	if err := s.db.QueryRowContext(ctx, query, a, b, b, a).Scan(&blocked); err != nil {
		return false, errors.Wrap(err, "sqlstore.IsBlockedEitherDirection")
	}
	return blocked, nil
}

func (s *SQLStore) ListBlockedBy(ctx context.Context, blockerID int64) ([]models.User, error) {
	query := s.rebind(`
		SELECT u.id, u.username, u.created_at
		FROM blocks b
		JOIN users u ON u.id = b.blocked_id
		WHERE b.blocker_id = ?
		ORDER BY b.created_at DESC, u.id ASC
	`)
	rows, err := s.db.QueryContext(ctx, query, blockerID)
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore.ListBlockedBy")
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "sqlstore.ListBlockedBy.Scan")
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
