package config

import (
	"errors"

	"github.com/dmitrijs2005/kubelearn/internal/envx"
)

// parseEnv reads PORT, DATABASE_DSN (or POSTGRES_*), REDIS_URL (or
// REDIS_HOST/REDIS_PORT), DIRECTORY_CACHE_TTL, CACHE_OP_TIMEOUT,
// IDENTITY_SIGNING_KEY and LOG_LEVEL.
func parseEnv(config *Config) error {
	envx.Addr(&config.EndpointAddr, "PORT")
	envx.PostgresDSN(&config.DatabaseDSN)
	envx.String(&config.DatabaseDSN, "DATABASE_DSN")
	envx.RedisURL(&config.RedisURL, directoryDB)
	envx.String(&config.RedisURL, "REDIS_URL")
	envx.String(&config.IdentitySigningKey, "IDENTITY_SIGNING_KEY")
	envx.String(&config.LogLevel, "LOG_LEVEL")

	return errors.Join(
		envx.Duration(&config.QueryTimeout, "DB_QUERY_TIMEOUT"),
		envx.Duration(&config.CacheTTL, "DIRECTORY_CACHE_TTL"),
		envx.Duration(&config.CacheOpTimeout, "CACHE_OP_TIMEOUT"),
	)
}
