package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/jobboard-api/internal/domain"
)

// TicketStore keeps recovery tickets as JSON values whose key TTL follows ExpiresAt.
// Compare-and-swap uses WATCH/MULTI on the ticket key.
type TicketStore struct {
	client *goRedis.Client
	prefix string
	now    func() time.Time
	// beforeCommit runs between the version check and EXEC.
	beforeCommit func(ctx context.Context)
}

func NewTicketStore(client *goRedis.Client) *TicketStore {
	return &TicketStore{client: client, prefix: "recovery:", now: time.Now}
}

func (s *TicketStore) key(userID, ticketType string) string {
	return s.prefix + ticketType + ":" + userID
}

func (s *TicketStore) Get(ctx context.Context, userID, ticketType string) (*domain.RecoveryTicket, error) {
	raw, err := s.client.Get(ctx, s.key(userID, ticketType)).Bytes()
	if errors.Is(err, goRedis.Nil) {
		return nil, fmt.Errorf("ticket not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec.ticket(), nil
}

// Save writes t if the stored version still equals prevVersion (0 means absent).
func (s *TicketStore) Save(ctx context.Context, t *domain.RecoveryTicket, prevVersion int64) error {
	payload, err := json.Marshal(newRecord(t))
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}
	ttl := ttlUntil(t.ExpiresAt, s.now())
	key := s.key(t.UserID, t.Type)

	err = s.client.Watch(ctx, func(tx *goRedis.Tx) error {
		current, err := currentVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != prevVersion {
			return fmt.Errorf("ticket changed concurrently: %w", domain.ErrConflict)
		}
		if s.beforeCommit != nil {
			s.beforeCommit(ctx)
		}
		_, err = tx.TxPipelined(ctx, func(p goRedis.Pipeliner) error {
			p.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, goRedis.TxFailedErr) {
		return fmt.Errorf("ticket changed concurrently: %w", domain.ErrConflict)
	}
	return err
}

// Delete removes the ticket only if it is still at version.
func (s *TicketStore) Delete(ctx context.Context, userID, ticketType string, version int64) error {
	key := s.key(userID, ticketType)
	err := s.client.Watch(ctx, func(tx *goRedis.Tx) error {
		current, err := currentVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != version {
			return fmt.Errorf("ticket already consumed: %w", domain.ErrNotFound)
		}
		if s.beforeCommit != nil {
			s.beforeCommit(ctx)
		}
		_, err = tx.TxPipelined(ctx, func(p goRedis.Pipeliner) error {
			p.Del(ctx, key)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, goRedis.TxFailedErr) {
		return fmt.Errorf("ticket already consumed: %w", domain.ErrNotFound)
	}
	return err
}

// record is the stored form; RecoveryTicket hides its secrets from JSON.
type record struct {
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	State     string    `json:"state"`
	Code      string    `json:"code"`
	GrantHash string    `json:"grant_hash,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Version   int64     `json:"version"`
	Attempts  int       `json:"attempts,omitempty"`
}

func newRecord(t *domain.RecoveryTicket) record {
	return record{
		UserID:    t.UserID,
		Type:      t.Type,
		State:     t.State,
		Code:      t.Code,
		GrantHash: t.GrantHash,
		IssuedAt:  t.IssuedAt,
		ExpiresAt: t.ExpiresAt,
		Version:   t.Version,
		Attempts:  t.Attempts,
	}
}

func (r record) ticket() *domain.RecoveryTicket {
	return &domain.RecoveryTicket{
		UserID:    r.UserID,
		Type:      r.Type,
		State:     r.State,
		Code:      r.Code,
		GrantHash: r.GrantHash,
		IssuedAt:  r.IssuedAt,
		ExpiresAt: r.ExpiresAt,
		Version:   r.Version,
		Attempts:  r.Attempts,
	}
}

func currentVersion(ctx context.Context, tx *goRedis.Tx, key string) (int64, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, goRedis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return 0, err
	}
	return rec.Version, nil
}

// ttlUntil never returns a non-positive TTL, which Redis would treat as "no expiry".
func ttlUntil(expiresAt, now time.Time) time.Duration {
	ttl := expiresAt.Sub(now)
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}
