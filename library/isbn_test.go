package library

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewISBN(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "isbn13", raw: "9780451524935", want: "9780451524935"},
		{name: "isbn10", raw: "0451524934", want: "0451524934"},
		{name: "hyphenated", raw: "978-0-13-468599-1", want: "9780134685991"},
		{name: "surrounding whitespace", raw: "  978-0451524935 \t", want: "9780451524935"},
		{name: "check digit X", raw: "080442957X", want: "080442957X"},
		{name: "empty", raw: "", wantErr: true},
		{name: "only separators", raw: " --- ", wantErr: true},
		{name: "too short", raw: "12345", wantErr: true},
		{name: "eleven", raw: "12345678901", wantErr: true},
		{name: "fourteen", raw: "97804515249350", wantErr: true},
		{name: "five multibyte characters", raw: "ééééé", wantErr: true},
		{name: "ten multibyte characters", raw: "éééééééééé", want: "éééééééééé"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewISBN(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestISBNEqualityUsesNormalizedValue(t *testing.T) {
	a := MustISBN("978-0-451-52493-5")
	b := MustISBN("9780451524935")
	assert.Equal(t, a, b)
	assert.True(t, a == b)

	seen := map[ISBN]bool{a: true}
	assert.True(t, seen[b])
}

func TestMustISBNPanics(t *testing.T) {
	assert.Panics(t, func() { MustISBN("nope") })
}
