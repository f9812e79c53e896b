package models

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_@.-]+$`)

// ErrUsernameTaken is returned when the server already knows the username.
var ErrUsernameTaken = errors.New("username already used")

// Registration holds what a prospective user submits.
type Registration struct {
	Username string
	Password string
	Email    string
}

// ValidationError describes one invalid registration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Validate applies the same length and format rules as the server.
func (r *Registration) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	if err := checkLength("username", r.Username, 3, 50); err != nil {
		return err
	}
	if !usernamePattern.MatchString(r.Username) {
		return &ValidationError{Field: "username", Reason: "contains invalid characters"}
	}
	if err := checkLength("password", r.Password, 8, 50); err != nil {
		return err
	}
	if err := checkLength("email", r.Email, 1, 100); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(r.Email)
	if err != nil || addr.Address != r.Email {
		return &ValidationError{Field: "email", Reason: "must be a valid address"}
	}
	return nil
}

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be between %d and %d characters", min, max)}
	}
	return nil
}
