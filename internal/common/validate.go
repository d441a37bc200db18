package common

import "unicode/utf8"

// ValidateCredentials applies the credential rules in a fixed order: missing
// fields, password length, then username length. The first failure wins.
func ValidateCredentials(username, password string) error {
	if username == "" || password == "" {
		return NewValidationError(CodeMissingFields)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return NewValidationError(CodePasswordTooShort)
	}
	if len(password) > MaxPasswordBytes {
		return NewValidationError(CodePasswordTooLong)
	}
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength {
		return NewValidationError(CodeUsernameTooShort)
	}
	if n > MaxUsernameLength {
		return NewValidationError(CodeUsernameTooLong)
	}
	return nil
}
