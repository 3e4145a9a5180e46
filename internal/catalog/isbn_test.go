// internal/catalog/isbn_test.go
package catalog

import (
	"strings"
	"testing"

	"biblioteca/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewISBN(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"isbn13 with hyphen", "978-0134494166", true},
		{"isbn13 wrong check digit", "978-0134494167", false},
		{"isbn10", "0306406152", true},
		{"isbn10 wrong check digit", "0306406153", false},
		{"isbn10 with X check", "080442957X", true},
		{"isbn10 with lowercase x", "080442957x", false},
		{"isbn13 with spaces", "978 0 14 143951 8", true},
		{"isbn13 plain", "9780743273565", true},
		{"letters inside isbn10", "03064A6152", false},
		{"X outside check position", "X306406152", false},
		{"X in isbn13", "978013449416X", false},
		{"too short", "12345", false},
		{"eleven digits", "03064061521", false},
		{"empty", "", false},
		{"blank", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isbn, err := NewISBN(tt.input)
			if !tt.valid {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.ErrValidation)
				assert.True(t, isbn.IsZero())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input, isbn.String())
			assert.NotContains(t, isbn.Normalized(), "-")
			assert.NotContains(t, isbn.Normalized(), " ")
		})
	}
}

func TestISBNEqualIgnoresFormatting(t *testing.T) {
	a, err := NewISBN("978-0134494166")
	require.NoError(t, err)
	b, err := NewISBN("9780134494166")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, "9780134494166", a.Normalized())
	assert.NotEqual(t, a.String(), b.String())
}

func TestISBNText(t *testing.T) {
	var isbn ISBN
	require.NoError(t, isbn.UnmarshalText([]byte("0-306-40615-2")))

	text, err := isbn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0-306-40615-2", string(text))

	assert.ErrorIs(t, isbn.UnmarshalText([]byte("0306406153")), apperr.ErrValidation)
}

func digits(n int) *rapid.Generator[string] {
	return rapid.StringOfN(rapid.RuneFrom([]rune("0123456789")), n, n, -1)
}

func isbn10Check(body string) byte {
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(body[i]-'0') * (10 - i)
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return 'X'
	}
	return byte('0' + check)
}

func isbn13Check(body string) byte {
	sum := 0
	for i := 0; i < 12; i++ {
		w := 1
		if i%2 == 1 {
			w = 3
		}
		sum += int(body[i]-'0') * w
	}
	return byte('0' + (10-sum%10)%10)
}

func TestISBN10ChecksumProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body := digits(9).Draw(t, "body")
		check := isbn10Check(body)

		_, err := NewISBN(body + string(check))
		if err != nil {
			t.Fatalf("checksum-correct isbn10 %s%c rejected: %v", body, check, err)
		}

		wrong := rapid.SampledFrom([]byte("0123456789X")).
			Filter(func(c byte) bool { return c != check }).
			Draw(t, "wrong")
		if _, err := NewISBN(body + string(wrong)); err == nil {
			t.Fatalf("isbn10 %s%c with wrong check accepted", body, wrong)
		}
	})
}

func TestISBN13ChecksumProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body := digits(12).Draw(t, "body")
		check := isbn13Check(body)

		isbn, err := NewISBN(body + string(check))
		if err != nil {
			t.Fatalf("checksum-correct isbn13 %s%c rejected: %v", body, check, err)
		}
		if isbn.Normalized() != body+string(check) {
			t.Fatalf("normalized form changed: %s", isbn.Normalized())
		}

		wrong := rapid.SampledFrom([]byte("0123456789")).
			Filter(func(c byte) bool { return c != check }).
			Draw(t, "wrong")
		if _, err := NewISBN(body + string(wrong)); err == nil {
			t.Fatalf("isbn13 %s%c with wrong check accepted", body, wrong)
		}
	})
}

func TestISBNSeparatorsDoNotMatterProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body := digits(12).Draw(t, "body")
		plain := body + string(isbn13Check(body))

		var b strings.Builder
		for i := 0; i < len(plain); i++ {
			b.WriteByte(plain[i])
			if rapid.Bool().Draw(t, "sep") {
				b.WriteString(rapid.SampledFrom([]string{"-", " ", "\t"}).Draw(t, "kind"))
			}
		}

		isbn, err := NewISBN(b.String())
		if err != nil {
			t.Fatalf("formatted isbn %q rejected: %v", b.String(), err)
		}
		if isbn.Normalized() != plain || isbn.String() != b.String() {
			t.Fatalf("got normalized %q display %q", isbn.Normalized(), isbn.String())
		}
	})
}
