// internal/marker/code.go
//
// Code is the fixed-length sequence both the secret and the guess are made of.

package marker

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// CodeLen is the number of positions in every code.
const CodeLen = 4

// ErrInvalidInput is returned when a secret or guess does not have exactly
// CodeLen elements. It is the only error the marker produces.
var ErrInvalidInput = errors.New("invalid input")

// Code is an ordered, immutable sequence of CodeLen comparable values.
// Being an array, it is copied by value and cannot be mutated through
// a Marker that holds it.
type Code[T comparable] [CodeLen]T

// NewCode copies vals into a Code. vals must hold exactly CodeLen elements.
func NewCode[T comparable](vals []T) (Code[T], error) {
	var c Code[T]
	if len(vals) != CodeLen {
		return c, fmt.Errorf("code has %d elements, want %d: %w", len(vals), CodeLen, ErrInvalidInput)
	}
	copy(c[:], vals)
	return c, nil
}

// ParseCode splits s into runes, so "1234" becomes Code{'1','2','3','4'}.
func ParseCode(s string) (Code[rune], error) {
	if n := utf8.RuneCountInString(s); n != CodeLen {
		return Code[rune]{}, fmt.Errorf("code %q has %d symbols, want %d: %w", s, n, CodeLen, ErrInvalidInput)
	}
	return NewCode([]rune(s))
}

// Contains reports whether v appears at any position of c.
func (c Code[T]) Contains(v T) bool {
	for _, x := range c {
		if x == v {
			return true
		}
	}
	return false
}
