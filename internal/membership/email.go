// internal/membership/email.go
package membership

import (
	"regexp"
	"strings"

	"biblioteca/internal/apperr"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email is a syntactically valid address. Comparable with ==.
type Email struct {
	value string
}

func NewEmail(s string) (Email, error) {
	if s == "" {
		return Email{}, apperr.Validation("email is required")
	}
	if !emailPattern.MatchString(s) {
		return Email{}, apperr.Validation("invalid email: %s", s)
	}
	return Email{value: s}, nil
}

func (e Email) String() string {
	return e.value
}

// Domain returns the part after the @.
func (e Email) Domain() string {
	_, domain, _ := strings.Cut(e.value, "@")
	return domain
}

func (e Email) IsZero() bool {
	return e.value == ""
}

func (e Email) MarshalText() ([]byte, error) {
	return []byte(e.value), nil
}

func (e *Email) UnmarshalText(text []byte) error {
	parsed, err := NewEmail(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
