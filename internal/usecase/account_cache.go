package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/infrastructure/metrics"
)

// AccountCache keeps the immutable part of accounts in a Cache: ids, owners,
// types and the username directory. Balances are never cached, so entries
// cannot go stale and need no invalidation. A nil *AccountCache is valid and
// caches nothing. Cache failures are logged and never fail a request.
type AccountCache struct {
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewAccountCache creates an AccountCache. It returns nil when cache is nil.
func NewAccountCache(cache Cache, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) *AccountCache {
	if cache == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &AccountCache{cache: cache, ttl: ttl, metrics: m, logger: logger}
}

// accountRef identifies an account without its balance.
type accountRef struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// readableBy reports whether principal may read the referenced account.
func (r *accountRef) readableBy(principal domain.Principal) bool {
	return principal.CanReadAccount(&domain.Account{ID: r.ID, OwnerID: r.OwnerID})
}

func accountIDKey(id string) string {
	return "account:id:" + id
}

func accountOwnerKey(ownerID string) string {
	return "account:owner:" + ownerID
}

func directoryKey(username string) string {
	return "account:username:" + username
}

func (c *AccountCache) ref(ctx context.Context, key string) (*accountRef, bool) {
	var ref accountRef
	if !c.load(ctx, key, &ref) {
		return nil, false
	}
	return &ref, true
}

func (c *AccountCache) storeRef(ctx context.Context, account *domain.Account) {
	if c == nil {
		return
	}

	ref := accountRef{
		ID:        account.ID,
		OwnerID:   account.OwnerID,
		Type:      string(account.Type),
		CreatedAt: account.CreatedAt,
	}
	c.store(ctx, ref, accountIDKey(account.ID), accountOwnerKey(account.OwnerID))
}

func (c *AccountCache) directory(ctx context.Context, username string) (*AccountDirectoryEntry, bool) {
	var entry AccountDirectoryEntry
	if !c.load(ctx, directoryKey(username), &entry) {
		return nil, false
	}
	return &entry, true
}

func (c *AccountCache) storeDirectory(ctx context.Context, entry *AccountDirectoryEntry) {
	if c == nil {
		return
	}
	c.store(ctx, entry, directoryKey(entry.Username))
}

func (c *AccountCache) load(ctx context.Context, key string, dst any) bool {
	if c == nil {
		return false
	}

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", key).Msg("account cache read failed")
		}
		c.record("miss")
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("account cache entry corrupt")
		c.record("miss")
		return false
	}

	c.record("hit")
	return true
}

func (c *AccountCache) store(ctx context.Context, v any, keys ...string) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}

	for _, key := range keys {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("account cache write failed")
		}
	}
}

func (c *AccountCache) record(result string) {
	if c.metrics != nil {
		c.metrics.CacheOperations.WithLabelValues(result).Inc()
	}
}
