package highlevel

import (
	"errors"
	"fmt"
)

// ErrContactNotFound is returned by operations that need an existing contact
// when the email resolves to nothing. A nil result from
// SearchContactByEmail is not an error; this sentinel is only for callers
// that cannot proceed without a contact id.
var ErrContactNotFound = errors.New("contact not found")

// ConfigError means the client is missing required configuration (the API
// key). No network call is attempted when it is returned.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "highlevel config error: " + e.Message
}

// AuthError is a 401 from the CRM, usually an expired or wrong-type API key.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "highlevel authentication failed: " + e.Message
}

// APIError is any other non-success response from the CRM.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("highlevel API error (status %d): %s", e.Status, e.Message)
}
