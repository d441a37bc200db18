package config

import (
	"errors"

	"github.com/dmitrijs2005/kubelearn/internal/envx"
)

// parseEnv reads:
//
//	PORT                    listen port (binds all interfaces)
//	DATABASE_DSN            PostgreSQL DSN
//	POSTGRES_HOST/USER/PASSWORD/DB
//	                        DSN parts, used when DATABASE_DSN is unset
//	BCRYPT_COST             bcrypt work factor
//	DB_QUERY_TIMEOUT        e.g. "3s"
//	RUN_MIGRATIONS          true/false
//	LOG_LEVEL               debug, info, warn, error
func parseEnv(config *Config) error {
	envx.Addr(&config.EndpointAddr, "PORT")
	envx.PostgresDSN(&config.DatabaseDSN)
	envx.String(&config.DatabaseDSN, "DATABASE_DSN")
	envx.String(&config.LogLevel, "LOG_LEVEL")

	return errors.Join(
		envx.Int(&config.BcryptCost, "BCRYPT_COST"),
		envx.Duration(&config.QueryTimeout, "DB_QUERY_TIMEOUT"),
		envx.Bool(&config.RunMigrations, "RUN_MIGRATIONS"),
	)
}
