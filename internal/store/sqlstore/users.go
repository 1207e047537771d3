package sqlstore

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/gizetz/gbairai/internal/models"
	"github.com/gizetz/gbairai/internal/store"
)

const userColumns = "id, username, email, password, is_verified, COALESCE(verification_token, ''), is_system, created_at"

func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	query := s.rebind(`
		INSERT INTO users (username, email, password, is_verified, verification_token, is_system, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.Password, user.IsVerified, user.VerificationToken, user.IsSystem, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return errors.Wrap(err, "sqlstore.CreateUser")
	}
	return nil
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := s.rebind("SELECT " + userColumns + " FROM users WHERE username = ?")
	return s.scanUser(s.db.QueryRowContext(ctx, query, username), "sqlstore.GetUserByUsername")
}

func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := s.rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	return s.scanUser(s.db.QueryRowContext(ctx, query, id), "sqlstore.GetUserByID")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLStore) scanUser(row rowScanner, op string) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.IsVerified,
		&user.VerificationToken, &user.IsSystem, &user.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, op)
	}
	return &user, nil
}

func (s *SQLStore) VerifyUser(ctx context.Context, token string) error {
	if token == "" {
		return store.ErrNotFound
	}
	query := s.rebind("UPDATE users SET is_verified = TRUE, verification_token = '' WHERE verification_token = ?")
	result, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		return errors.Wrap(err, "sqlstore.VerifyUser")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "sqlstore.VerifyUser.RowsAffected")
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLStore) SearchUsers(ctx context.Context, queryStr string) ([]models.User, error) {
	query := s.rebind("SELECT id, username, email, created_at FROM users WHERE username LIKE ? AND is_system = FALSE ORDER BY username LIMIT 10")
	rows, err := s.db.QueryContext(ctx, query, queryStr+"%")
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore.SearchUsers")
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "sqlstore.SearchUsers.Scan")
		}
		user.Email = maskEmail(user.Email)
		users = append(users, user)
	}
	return users, rows.Err()
}

func maskEmail(email string) string {
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return email
	}
	runes := []rune(local)
	visible := 1
	if len(runes) > 2 {
		visible = min(len(runes)/2, 3)
	}
	return string(runes[:visible]) + strings.Repeat("*", len(runes)-visible) + "@" + domain
}
