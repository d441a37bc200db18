package cache

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientOptions bounds every network interaction with Redis.
type ClientOptions struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewClient parses a redis:// URL (the DB index selects the logical store)
// and applies the timeouts. Connecting is lazy: an unreachable Redis shows
// up as errors on the first command, not here.
func NewClient(url string, opts ClientOptions) (*redis.Client, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if opts.DialTimeout > 0 {
		o.DialTimeout = opts.DialTimeout
	}
	if opts.ReadTimeout > 0 {
		o.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		o.WriteTimeout = opts.WriteTimeout
	}
	return redis.NewClient(o), nil
}
