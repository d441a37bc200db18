package config

import (
	"flag"

	"github.com/dmitrijs2005/kubelearn/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   bind address (e.g., ":3001")
//	-d string   PostgreSQL DSN
//	-b int      bcrypt cost
//	-l string   log level
//	-m=bool     run migrations at startup (use the = form)
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"a", "d", "b", "l", "m"})

	fs := flag.NewFlagSet("authservice", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.RunMigrations, "m", config.RunMigrations, "run migrations at startup")

	return fs.Parse(args)
}
