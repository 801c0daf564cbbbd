package imports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/mycrew-backend/internal/transfer"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	"github.com/angelmondragon/mycrew-backend/pkg/redis"
)

// Pending is an import parked until the user answers the duplicate question.
type Pending struct {
	ID         string                 `json:"id"`
	Format     enums.TransferFormat   `json:"format"`
	FileName   string                 `json:"fileName,omitempty"`
	Contacts   []transfer.ContactData `json:"contacts"`
	Duplicates []string               `json:"duplicates"`
	Skipped    int                    `json:"skipped"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// PendingStore keeps pending imports until they are resolved or expire.
type PendingStore interface {
	Put(ctx context.Context, p Pending, ttl time.Duration) error
	// Take removes and returns the pending import. found is false when it
	// never existed or has expired.
	Take(ctx context.Context, id string) (p Pending, found bool, err error)
}

type redisStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	PendingImportKey(importID string) string
}

// RedisPendingStore stores pending imports as JSON values with a TTL.
type RedisPendingStore struct {
	client redisStore
}

func NewRedisPendingStore(client redisStore) (*RedisPendingStore, error) {
	if client == nil {
		return nil, errors.New("redis client required for pending imports")
	}
	return &RedisPendingStore{client: client}, nil
}

func (s *RedisPendingStore) Put(ctx context.Context, p Pending, ttl time.Duration) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending import: %w", err)
	}
	return s.client.Set(ctx, s.client.PendingImportKey(p.ID), payload, ttl)
}

func (s *RedisPendingStore) Take(ctx context.Context, id string) (Pending, bool, error) {
	raw, err := s.client.GetDel(ctx, s.client.PendingImportKey(id))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return Pending{}, false, nil
		}
		return Pending{}, false, err
	}
	var p Pending
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Pending{}, false, fmt.Errorf("decode pending import: %w", err)
	}
	return p, true, nil
}
