package common

import "time"

// Identity metadata attached by the gateway to every proxied request.
const (
	HeaderUserID        = "X-User-Id"
	HeaderUserName      = "X-User-Name"
	HeaderUserRole      = "X-User-Role"
	HeaderUserAssertion = "X-User-Assertion"
	HeaderRequestID     = "X-Request-Id"
)

// Credential rules enforced both at the gateway and at the verifier.
const (
	MinPasswordLength = 6
	MinUsernameLength = 3
	MaxUsernameLength = 100
	// bcrypt only reads the first 72 bytes.
	MaxPasswordBytes  = 72
)

// SessionLifetime is the default lifetime of a browser session.
const SessionLifetime = 24 * time.Hour
