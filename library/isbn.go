package library

import (
	"strings"
	"unicode/utf8"
)

// ISBN is a normalized book identifier. The zero value is not a valid ISBN.
type ISBN struct {
	value string
}

// NewISBN strips hyphens and surrounding whitespace from raw and requires the
// result to be 10 or 13 characters long.
func NewISBN(raw string) (ISBN, error) {
	normalized := strings.TrimSpace(strings.ReplaceAll(raw, "-", ""))
	if normalized == "" {
		return ISBN{}, newError(ErrValidation, "ISBN must not be empty")
	}
	if n := utf8.RuneCountInString(normalized); n != 10 && n != 13 {
		return ISBN{}, newError(ErrValidation, "ISBN must be 10 or 13 characters, got %d", n)
	}
	return ISBN{value: normalized}, nil
}

// MustISBN is NewISBN for literals known to be valid.
func MustISBN(raw string) ISBN {
	isbn, err := NewISBN(raw)
	if err != nil {
		panic(err)
	}
	return isbn
}

func (i ISBN) String() string { return i.value }

// IsZero reports whether i was never constructed.
func (i ISBN) IsZero() bool { return i.value == "" }
