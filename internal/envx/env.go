// Package envx reads typed values from environment variables. Every helper
// leaves the destination untouched when the variable is unset or empty.
package envx

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

func String(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func Int(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func Bool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// Duration accepts Go duration strings ("30s", "24h").
func Duration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// Addr turns a bare port from key into a listen address on all interfaces.
// A value that already contains a colon is used as is.
func Addr(dst *string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if strings.Contains(v, ":") {
		*dst = v
		return
	}
	*dst = ":" + v
}

// PostgresDSN assembles a DSN from POSTGRES_HOST, POSTGRES_PORT,
// POSTGRES_USER, POSTGRES_PASSWORD and POSTGRES_DB. Nothing happens unless
// POSTGRES_HOST is set.
func PostgresDSN(dst *string) {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return
	}
	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + os.Getenv("POSTGRES_DB"),
		RawQuery: "sslmode=disable",
	}
	*dst = u.String()
}

// RedisURL assembles redis://REDIS_HOST:REDIS_PORT/db. Nothing happens
// unless REDIS_HOST is set.
func RedisURL(dst *string, db int) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	*dst = fmt.Sprintf("redis://%s/%d", net.JoinHostPort(host, port), db)
}
