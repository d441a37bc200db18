// Package cache wraps the Shared Cache (Redis) into logical stores.
//
// Sessions and directory entries share one Redis deployment but never share
// keys: each owner gets its own Namespace, and a Namespace can only see,
// overwrite or flush keys under its own prefix.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/redis/go-redis/v9"
)

// Well-known namespace prefixes.
const (
	SessionPrefix   = "session:"
	DirectoryPrefix = "directory:"
)

const scanBatch = 256

// Namespace is a prefix-scoped view of a Redis client. Every call is bounded
// by the per-operation timeout; failures wrap common.ErrUpstreamUnavailable.
type Namespace struct {
	rdb       redis.UniversalClient
	prefix    string
	opTimeout time.Duration
}

func NewNamespace(rdb redis.UniversalClient, prefix string, opTimeout time.Duration) *Namespace {
	return &Namespace{rdb: rdb, prefix: prefix, opTimeout: opTimeout}
}

func (n *Namespace) key(k string) string {
	return n.prefix + k
}

func (n *Namespace) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if n.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, n.opTimeout)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: redis %s: %v", common.ErrUpstreamUnavailable, op, err)
}

// Get returns the raw value or common.ErrCacheMiss.
func (n *Namespace) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := n.bound(ctx)
	defer cancel()

	data, err := n.rdb.Get(ctx, n.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrCacheMiss
		}
		return nil, unavailable("get", err)
	}
	return data, nil
}

// Set stores value with ttl. A zero ttl is rejected: nothing in this system
// may live in the Shared Cache forever.
func (n *Namespace) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache set %q: ttl must be positive", key)
	}

	ctx, cancel := n.bound(ctx)
	defer cancel()

	if err := n.rdb.Set(ctx, n.key(key), value, ttl).Err(); err != nil {
		return unavailable("set", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (n *Namespace) Delete(ctx context.Context, key string) error {
	ctx, cancel := n.bound(ctx)
	defer cancel()

	if err := n.rdb.Del(ctx, n.key(key)).Err(); err != nil {
		return unavailable("del", err)
	}
	return nil
}

// SetXX overwrites key only while it still exists. It returns
// common.ErrCacheMiss when the key is gone, so a deleted value is never
// written back.
func (n *Namespace) SetXX(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache set %q: ttl must be positive", key)
	}

	ctx, cancel := n.bound(ctx)
	defer cancel()

	ok, err := n.rdb.SetXX(ctx, n.key(key), value, ttl).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return unavailable("set xx", err)
	}
	if !ok {
		return common.ErrCacheMiss
	}
	return nil
}

// Flush deletes every key of this namespace and returns how many were
// removed. Keys of other namespaces are untouched.
func (n *Namespace) Flush(ctx context.Context) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	pattern := escapePattern(n.prefix) + "*"

	for {
		keys, next, err := n.scan(ctx, cursor, pattern)
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			deleted, err := n.del(ctx, keys)
			if err != nil {
				return removed, err
			}
			removed += deleted
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

func (n *Namespace) scan(ctx context.Context, cursor uint64, pattern string) ([]string, uint64, error) {
	ctx, cancel := n.bound(ctx)
	defer cancel()

	keys, next, err := n.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
	if err != nil {
		return nil, 0, unavailable("scan", err)
	}
	return keys, next, nil
}

func (n *Namespace) del(ctx context.Context, keys []string) (int64, error) {
	ctx, cancel := n.bound(ctx)
	defer cancel()

	deleted, err := n.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, unavailable("del", err)
	}
	return deleted, nil
}

// Ping checks that the backing store answers.
func (n *Namespace) Ping(ctx context.Context) error {
	ctx, cancel := n.bound(ctx)
	defer cancel()

	if err := n.rdb.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

var patternEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapePattern(s string) string {
	return patternEscaper.Replace(s)
}
