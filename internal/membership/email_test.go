// internal/membership/email_test.go
package membership

import (
	"strings"
	"testing"

	"biblioteca/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewEmail(t *testing.T) {
	valid := []string{
		"joao@email.com",
		"maria.souza+biblioteca@ufsc.br",
		"a_b%c-d@sub.domain.org",
		"X@Y.IO",
	}
	for _, s := range valid {
		email, err := NewEmail(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, email.String())
	}

	invalid := []string{
		"",
		"joao",
		"joao@",
		"@email.com",
		"joao@email",
		"joao@email.c",
		"joao@@email.com",
		"joão@email.com",
		"joao @email.com",
		"joao@email.com ",
		"joao@email.c0m",
	}
	for _, s := range invalid {
		_, err := NewEmail(s)
		assert.ErrorIs(t, err, apperr.ErrValidation, s)
	}
}

func TestEmailParts(t *testing.T) {
	email, err := NewEmail("joao@email.com")
	require.NoError(t, err)

	assert.Equal(t, "email.com", email.Domain())

	same, err := NewEmail("joao@email.com")
	require.NoError(t, err)
	assert.True(t, email == same)
}

const (
	localChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789._%+-"
	domainChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789.-"
	tldChars    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

func charsOf(set string, min, max int) *rapid.Generator[string] {
	return rapid.StringOfN(rapid.RuneFrom([]rune(set)), min, max, -1)
}

func TestEmailRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := charsOf(localChars, 1, 20).Draw(t, "local") + "@" +
			charsOf(domainChars, 1, 20).Draw(t, "domain") + "." +
			charsOf(tldChars, 2, 6).Draw(t, "tld")

		email, err := NewEmail(s)
		if err != nil {
			t.Fatalf("grammatical address %q rejected: %v", s, err)
		}
		if email.String() != s {
			t.Fatalf("round trip changed %q into %q", s, email.String())
		}
	})
}

func TestEmailWithoutAtIsRejectedProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Filter(func(s string) bool {
			return !strings.Contains(s, "@")
		}).Draw(t, "s")

		if _, err := NewEmail(s); err == nil {
			t.Fatalf("address without @ accepted: %q", s)
		}
	})
}

func TestEmailWithForeignCharacterIsRejectedProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		local := charsOf(localChars, 1, 10).Draw(t, "local")
		bad := rapid.SampledFrom([]string{" ", "!", "#", "ç", "/", ",", "\n"}).Draw(t, "bad")
		pos := rapid.IntRange(0, len(local)).Draw(t, "pos")

		s := local[:pos] + bad + local[pos:] + "@email.com"
		if _, err := NewEmail(s); err == nil {
			t.Fatalf("address with %q accepted: %q", bad, s)
		}
	})
}
