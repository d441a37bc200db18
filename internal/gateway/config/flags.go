package config

import (
	"flag"

	"github.com/dmitrijs2005/kubelearn/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string         public bind address
//	-auth string      Credential Verifier URL
//	-users string     user directory URL
//	-frontend string  View Renderer URL
//	-r string         Redis URL of the session store
//	-l string         log level
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"a", "auth", "users", "frontend", "r", "l"})

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.AuthServiceURL, "auth", config.AuthServiceURL, "credential verifier URL")
	fs.StringVar(&config.UserServiceURL, "users", config.UserServiceURL, "user directory URL")
	fs.StringVar(&config.FrontendURL, "frontend", config.FrontendURL, "view renderer URL")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL of the session store")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
