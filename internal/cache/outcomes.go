// Package cache keeps terminal checkout outcomes in Redis after their session
// has been dropped from memory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an outcome stays readable after it was cached
const DefaultTTL = 24 * time.Hour

// Connect parses a redis:// URL and pings the server
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// OutcomeStore stores outcomes as JSON under "outcome:<session id>"
type OutcomeStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewOutcomeStore creates a store; a non-positive ttl means DefaultTTL
func NewOutcomeStore(rdb redis.Cmdable, ttl time.Duration) *OutcomeStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &OutcomeStore{rdb: rdb, ttl: ttl}
}

func outcomeKey(sessionID string) string {
	return "outcome:" + sessionID
}

func (s *OutcomeStore) SaveOutcome(ctx context.Context, outcome models.Outcome) error {
	body, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	if err := s.rdb.Set(ctx, outcomeKey(outcome.SessionID), string(body), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache outcome %s: %w", outcome.SessionID, err)
	}
	return nil
}

// LoadOutcome reports false when nothing is cached for the session
func (s *OutcomeStore) LoadOutcome(ctx context.Context, sessionID string) (models.Outcome, bool, error) {
	body, err := s.rdb.Get(ctx, outcomeKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.Outcome{}, false, nil
	}
	if err != nil {
		return models.Outcome{}, false, fmt.Errorf("failed to read outcome %s: %w", sessionID, err)
	}

	var outcome models.Outcome
	if err := json.Unmarshal([]byte(body), &outcome); err != nil {
		return models.Outcome{}, false, fmt.Errorf("corrupt outcome %s: %w", sessionID, err)
	}
	return outcome, true, nil
}
