// Package models defines the client-side data models of the SkillSwap CLI.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/skillswap/internal/timex"
)

// ErrInvalidInput wraps local validation failures detected before a request
// is sent.
var ErrInvalidInput = errors.New("invalid input")

// User is a registered account as returned by the backend. Values are
// replaced wholesale on re-fetch and never patched in place.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt timex.Time `json:"created_at"`
}

// Credentials are submitted to the login endpoint.
type Credentials struct {
	Username string
	Password string
}

// Registration is the body of the register endpoint.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate rejects registrations the backend would refuse anyway.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	return nil
}
