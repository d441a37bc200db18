package config

import "github.com/dmitrijs2005/kubelearn/internal/envx"

// parseEnv reads PORT, IDENTITY_SIGNING_KEY and LOG_LEVEL.
func parseEnv(config *Config) {
	envx.Addr(&config.EndpointAddr, "PORT")
	envx.String(&config.IdentitySigningKey, "IDENTITY_SIGNING_KEY")
	envx.String(&config.LogLevel, "LOG_LEVEL")
}
