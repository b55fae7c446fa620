// Package tokens issues and redeems one-time tokens for email confirmation
// and password resets. Tokens live in Redis and expire on their own
package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kode4food/larder/pkg/api"
	"github.com/kode4food/larder/pkg/log"
)

type (
	// Purpose separates token namespaces so a reset token cannot confirm
	// an email and vice versa
	Purpose string

	// Store keeps one-time tokens in Redis
	Store struct {
		client *redis.Client
		prefix string
		ttls   map[Purpose]time.Duration
	}
)

const (
	ConfirmEmail  Purpose = "confirm-email"
	ResetPassword Purpose = "reset-password"

	DefaultTTL = time.Hour
)

var (
	ErrTokenNotFound  = errors.New("the token was not found")
	ErrUnknownPurpose = errors.New("unknown token purpose")
)

// Connect opens a Redis client and verifies that the server responds
func Connect(ctx context.Context, opts *redis.Options) (*redis.Client, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewStore creates a token store. Keys are namespaced under prefix
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
		ttls: map[Purpose]time.Duration{
			ConfirmEmail:  DefaultTTL,
			ResetPassword: DefaultTTL,
		},
	}
}

// WithTTL sets how long tokens of a purpose stay redeemable
func (s *Store) WithTTL(p Purpose, ttl time.Duration) *Store {
	if ttl > 0 {
		s.ttls[p] = ttl
	}
	return s
}

// Issue creates a token bound to a user
func (s *Store) Issue(
	ctx context.Context, p Purpose, user api.UserID,
) (string, error) {
	ttl, ok := s.ttls[p]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPurpose, p)
	}
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(p, token), string(user), ttl).Err(); err != nil {
		return "", fmt.Errorf("storing %s token: %w", p, err)
	}
	slog.Debug("Token issued",
		slog.String("purpose", string(p)),
		log.UserID(user))
	return token, nil
}

// Redeem consumes a token and returns the user it was issued for. A token
// can be redeemed once
func (s *Store) Redeem(
	ctx context.Context, p Purpose, token string,
) (api.UserID, error) {
	user, err := s.client.GetDel(ctx, s.key(p, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redeeming %s token: %w", p, err)
	}
	return api.UserID(user), nil
}

// Ping checks that Redis is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) key(p Purpose, token string) string {
	return fmt.Sprintf("%s:token:%s:%s", s.prefix, p, token)
}
