package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kode4food/larder/pkg/api"
)

const userColumns = `id, username, email, password_hash, token, is_admin,
	email_confirmed, bio, avatar, joined`

// CreateUser inserts a new account. Returns ErrConflict when the username,
// email or token is taken
func (s *Store) CreateUser(ctx context.Context, u *api.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Token, u.IsAdmin,
		u.EmailConfirmed, u.Bio, u.Avatar, toMillis(u.Joined),
	)
	if err != nil {
		return s.conflict(err, fmt.Sprintf("user %q", u.Username))
	}
	return nil
}

// UserByUsername looks up an account by its username
func (s *Store) UserByUsername(
	ctx context.Context, username string,
) (*api.User, error) {
	return s.userWhere(ctx, "username = ?", username)
}

// UserByEmail looks up an account by its email address
func (s *Store) UserByEmail(ctx context.Context, email string) (*api.User, error) {
	return s.userWhere(ctx, "email = ?", email)
}

// UserByToken looks up the account that owns an API token
func (s *Store) UserByToken(ctx context.Context, token string) (*api.User, error) {
	return s.userWhere(ctx, "token = ?", token)
}

// UserByID looks up an account by its identifier
func (s *Store) UserByID(ctx context.Context, id api.UserID) (*api.User, error) {
	return s.userWhere(ctx, "id = ?", id)
}

// ListUsers returns every account ordered by username
func (s *Store) ListUsers(ctx context.Context) ([]*api.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []*api.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

// UpdateUser writes every mutable column of an account
func (s *Store) UpdateUser(ctx context.Context, u *api.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, password_hash = ?,
			is_admin = ?, email_confirmed = ?, bio = ?, avatar = ?
		WHERE id = ?`,
		u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.EmailConfirmed,
		u.Bio, u.Avatar, u.ID,
	)
	if err != nil {
		return s.conflict(err, fmt.Sprintf("user %q", u.Username))
	}
	return expectRow(res, fmt.Sprintf("user %q", u.Username))
}

// DeleteUser removes an account. Its recipes are kept without an author
func (s *Store) DeleteUser(ctx context.Context, id api.UserID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("user %s", id))
}

func (s *Store) userWhere(
	ctx context.Context, cond string, arg any,
) (*api.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+cond, arg,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("user %v", arg))
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*api.User, error) {
	var u api.User
	var joined int64
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Token,
		&u.IsAdmin, &u.EmailConfirmed, &u.Bio, &u.Avatar, &joined)
	if err != nil {
		return nil, err
	}
	u.Joined = fromMillis(joined)
	return &u, nil
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return nil
}
