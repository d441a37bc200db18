package config

import (
	"flag"

	"github.com/dmitrijs2005/kubelearn/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   bind address
//	-l string   log level
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"a", "l"})

	fs := flag.NewFlagSet("frontend", flag.ContinueOnError)
	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
