// Package api is the JSON contract of the Credential Verifier, shared by its
// handlers and by the gateway client.
package api

import "github.com/dmitrijs2005/kubelearn/internal/identity"

const (
	PathVerify   = "/auth/verify"
	PathRegister = "/auth/register"
)

// Error codes of a failed response.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserExists         = "USER_EXISTS"
	CodeUnavailable        = "UNAVAILABLE"
	CodeInternal           = "INTERNAL"
)

type VerifyRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Response is the body of every verifier answer. Reason carries the
// validation code when Code is VALIDATION_ERROR.
type Response struct {
	Success bool               `json:"success"`
	User    *identity.Identity `json:"user,omitempty"`
	Code    string             `json:"code,omitempty"`
	Reason  string             `json:"reason,omitempty"`
	Message string             `json:"message,omitempty"`
}
