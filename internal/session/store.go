package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/copo-api/internal/models"
)

// ErrNotFound indicates the session id has no live entry.
var ErrNotFound = errors.New("session not found")

const sessionKeyPrefix = "session:"

// Session is the server-side state bound to one opaque cookie value.
type Session struct {
	UserID       uint        `json:"user_id"`
	Role         models.Role `json:"role"`
	DepartmentID *uint       `json:"department_id,omitempty"`
}

// Store keeps sessions in Redis so they survive restarts and scale
// across nodes. Entries expire after the configured TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore constructs a session store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

// TTL reports the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create persists a new session and returns its opaque identifier.
func (s *Store) Create(ctx context.Context, sess Session) (string, error) {
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	id := uuid.NewString()
	if err := s.client.Set(ctx, sessionKeyPrefix+id, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return id, nil
}

// Get loads the session bound to the identifier.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrNotFound
	}

	payload, err := s.client.Get(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return Session{}, fmt.Errorf("failed to decode session: %w", err)
	}

	return sess, nil
}

// Destroy removes the session. Destroying an unknown id is not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, sessionKeyPrefix+id).Err()
}
