package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ticket is the reset record issued by ForgotPassword: at most one per
// username, overwritten on reissue, consumed on successful reset.
type Ticket struct {
	OTP       string
	Email     string
	CreatedAt time.Time
}

var ErrTicketNotFound = errors.New("otp ticket not found")

// TicketStore persists reset tickets keyed by username.
type TicketStore interface {
	Save(ctx context.Context, username string, ticket Ticket) error
	Get(ctx context.Context, username string) (Ticket, error)
	Delete(ctx context.Context, username string) error
}

// RedisTicketStore stores one hash per username. No TTL is set: an expired
// ticket stays around until overwritten or consumed, and the validity
// window is checked on use.
type RedisTicketStore struct {
	client *redis.Client
}

func NewRedisTicketStore(client *redis.Client) *RedisTicketStore {
	return &RedisTicketStore{client: client}
}

// Save overwrites any prior ticket for the username.
func (s *RedisTicketStore) Save(ctx context.Context, username string, ticket Ticket) error {
	key := ticketKey(username)

	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]interface{}{
		"otp":        ticket.OTP,
		"email":      ticket.Email,
		"created_at": ticket.CreatedAt.Unix(),
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save otp ticket: %w", err)
	}
	return nil
}

// Get retrieves the ticket for a username.
func (s *RedisTicketStore) Get(ctx context.Context, username string) (Ticket, error) {
	data, err := s.client.HGetAll(ctx, ticketKey(username)).Result()
	if err != nil {
		return Ticket{}, fmt.Errorf("failed to get otp ticket: %w", err)
	}
	if len(data) == 0 {
		return Ticket{}, ErrTicketNotFound
	}

	createdAtUnix, err := strconv.ParseInt(data["created_at"], 10, 64)
	if err != nil {
		return Ticket{}, fmt.Errorf("failed to parse otp ticket timestamp: %w", err)
	}

	return Ticket{
		OTP:       data["otp"],
		Email:     data["email"],
		CreatedAt: time.Unix(createdAtUnix, 0),
	}, nil
}

// Delete removes a consumed ticket.
func (s *RedisTicketStore) Delete(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, ticketKey(username)).Err(); err != nil {
		return fmt.Errorf("failed to delete otp ticket: %w", err)
	}
	return nil
}

func ticketKey(username string) string {
	return fmt.Sprintf("password_otp:%s", username)
}
