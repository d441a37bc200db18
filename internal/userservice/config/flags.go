package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/kubelearn/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   bind address
//	-d string   PostgreSQL DSN
//	-r string   Redis URL of the directory store
//	-t int      directory cache TTL, seconds
//	-l string   log level
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"a", "d", "r", "t", "l"})

	fs := flag.NewFlagSet("userservice", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	ttl := fs.Int("t", int(config.CacheTTL.Seconds()), "directory cache TTL (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.CacheTTL = time.Duration(*ttl) * time.Second
		}
	})
	return nil
}
