// internal/catalog/isbn.go
package catalog

import (
	"strings"
	"unicode"

	"biblioteca/internal/apperr"
)

// ISBN is a validated ISBN-10 or ISBN-13. The zero value is not a valid ISBN.
type ISBN struct {
	raw        string
	normalized string
}

// NewISBN validates s after stripping hyphens and whitespace. The input
// formatting is kept for display.
func NewISBN(s string) (ISBN, error) {
	if strings.TrimSpace(s) == "" {
		return ISBN{}, apperr.Validation("isbn is required")
	}

	clean := strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	var ok bool
	switch len(clean) {
	case 10:
		ok = validISBN10(clean)
	case 13:
		ok = validISBN13(clean)
	}
	if !ok {
		return ISBN{}, apperr.Validation("invalid isbn: %s", s)
	}

	return ISBN{raw: s, normalized: clean}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 9; i++ {
		if !isDigit(s[i]) {
			return false
		}
		sum += int(s[i]-'0') * (10 - i)
	}

	switch check := s[9]; {
	case check == 'X':
		sum += 10
	case isDigit(check):
		sum += int(check - '0')
	default:
		return false
	}

	return sum%11 == 0
}

func validISBN13(s string) bool {
	sum := 0
	for i := 0; i < 13; i++ {
		if !isDigit(s[i]) {
			return false
		}
		if i == 12 {
			break
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(s[i]-'0') * weight
	}

	return (10-sum%10)%10 == int(s[12]-'0')
}

// String returns the ISBN as it was given.
func (i ISBN) String() string {
	return i.raw
}

// Normalized returns the ISBN without separators.
func (i ISBN) Normalized() string {
	return i.normalized
}

func (i ISBN) IsZero() bool {
	return i.normalized == ""
}

// Equal compares ISBNs by value, ignoring formatting.
func (i ISBN) Equal(other ISBN) bool {
	return i.normalized == other.normalized
}

func (i ISBN) MarshalText() ([]byte, error) {
	return []byte(i.raw), nil
}

func (i *ISBN) UnmarshalText(text []byte) error {
	parsed, err := NewISBN(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
