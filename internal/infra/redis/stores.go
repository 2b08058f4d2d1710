package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"quizis-session-service/internal/domain"
)

// recordStore keeps one JSON-serialized record per key under a shared prefix.
// Serialization must round-trip every field losslessly, nested sequences
// included; the typed wrappers below rely on that.
type recordStore[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (s recordStore[T]) get(ctx context.Context, id string) (T, bool, error) {
	var record T
	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return record, false, nil
	}
	if err != nil {
		return record, false, fmt.Errorf("redis get %s: %w", s.prefix+id, err)
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return record, false, fmt.Errorf("%w: %v", domain.ErrCorruptState, err)
	}
	return record, true, nil
}

func (s recordStore[T]) save(ctx context.Context, id string, record T) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.prefix+id, err)
	}
	if err := s.client.Set(ctx, s.prefix+id, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.prefix+id, err)
	}
	return nil
}

func (s recordStore[T]) delete(ctx context.Context, id string) (bool, error) {
	removed, err := s.client.Del(ctx, s.prefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("redis del %s: %w", s.prefix+id, err)
	}
	return removed > 0, nil
}

// ProgressStore is a Redis-backed implementation of app.ProgressStore.
type ProgressStore struct {
	records recordStore[domain.Session]
}

func NewProgressStore(client *redis.Client, ttl time.Duration) *ProgressStore {
	return &ProgressStore{records: recordStore[domain.Session]{client: client, prefix: "quiz:progress:", ttl: ttl}}
}

func (s *ProgressStore) Get(ctx context.Context, userID string) (domain.Session, bool, error) {
	return s.records.get(ctx, userID)
}

func (s *ProgressStore) Save(ctx context.Context, userID string, session domain.Session) error {
	return s.records.save(ctx, userID, session)
}

func (s *ProgressStore) Delete(ctx context.Context, userID string) (bool, error) {
	return s.records.delete(ctx, userID)
}

// ResultStore is a Redis-backed implementation of app.ResultStore.
type ResultStore struct {
	records recordStore[domain.ResultSummary]
}

func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{records: recordStore[domain.ResultSummary]{client: client, prefix: "quiz:result:", ttl: ttl}}
}

func (s *ResultStore) Get(ctx context.Context, userID string) (domain.ResultSummary, bool, error) {
	return s.records.get(ctx, userID)
}

func (s *ResultStore) Save(ctx context.Context, userID string, result domain.ResultSummary) error {
	return s.records.save(ctx, userID, result)
}

func (s *ResultStore) Delete(ctx context.Context, userID string) (bool, error) {
	return s.records.delete(ctx, userID)
}

// UserStore is a Redis-backed implementation of app.UserStore. Accounts do
// not expire.
type UserStore struct {
	records recordStore[domain.User]
}

func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{records: recordStore[domain.User]{client: client, prefix: "quiz:user:"}}
}

func (s *UserStore) Get(ctx context.Context, email string) (domain.User, bool, error) {
	return s.records.get(ctx, email)
}

func (s *UserStore) Save(ctx context.Context, user domain.User) error {
	return s.records.save(ctx, user.Email, user)
}
