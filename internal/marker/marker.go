// internal/marker/marker.go
//
// Scoring of a guess against a secret, Codebreaker style.
//
// Two counts are produced:
//   - exact:  positions where guess and secret hold the same value.
//   - number: positions that are not exact, but whose guess value occurs
//             anywhere in the secret.
//
// The number rule is a plain membership test. It does not consume secret
// values as they are matched, so duplicates can be counted more than once:
// secret "1122" against guess "2211" gives 0 exact and 4 number matches.
// Callers relying on classic Mastermind peg counting must not use this.

package marker

// Marker holds one secret/guess pair. It is never mutated after New and is
// safe for concurrent use.
type Marker[T comparable] struct {
	secret Code[T]
	guess  Code[T]
}

// New validates both sequences and returns a Marker for them.
// Either sequence having a length other than CodeLen yields ErrInvalidInput.
func New[T comparable](secret, guess []T) (*Marker[T], error) {
	s, err := NewCode(secret)
	if err != nil {
		return nil, err
	}
	g, err := NewCode(guess)
	if err != nil {
		return nil, err
	}
	return FromCodes(s, g), nil
}

// FromCodes builds a Marker from already validated codes.
func FromCodes[T comparable](secret, guess Code[T]) *Marker[T] {
	return &Marker[T]{secret: secret, guess: guess}
}

// ExactMatchCount returns the number of exact matches.
func (m *Marker[T]) ExactMatchCount() int {
	count := 0
	for i := 0; i < CodeLen; i++ {
		if m.ExactMatch(i) {
			count++
		}
	}
	return count
}

// NumberMatchCount returns the number of number-only matches.
func (m *Marker[T]) NumberMatchCount() int {
	count := 0
	for i := 0; i < CodeLen; i++ {
		if m.NumberMatch(i) {
			count++
		}
	}
	return count
}

// ExactMatch reports whether the guess equals the secret at index.
// Indices outside [0, CodeLen) never match.
func (m *Marker[T]) ExactMatch(index int) bool {
	if index < 0 || index >= CodeLen {
		return false
	}
	return m.guess[index] == m.secret[index]
}

// NumberMatch reports whether the guess value at index occurs somewhere in
// the secret without being an exact match.
func (m *Marker[T]) NumberMatch(index int) bool {
	if index < 0 || index >= CodeLen {
		return false
	}
	return m.secret.Contains(m.guess[index]) && !m.ExactMatch(index)
}

// Score returns both counts.
func (m *Marker[T]) Score() Score {
	return Score{Exact: m.ExactMatchCount(), Number: m.NumberMatchCount()}
}

// Mark scores guess against secret in one call.
func Mark[T comparable](secret, guess []T) (Score, error) {
	m, err := New(secret, guess)
	if err != nil {
		return Score{}, err
	}
	return m.Score(), nil
}

// MarkString scores two codes written as strings of CodeLen symbols.
func MarkString(secret, guess string) (Score, error) {
	s, err := ParseCode(secret)
	if err != nil {
		return Score{}, err
	}
	g, err := ParseCode(guess)
	if err != nil {
		return Score{}, err
	}
	return FromCodes(s, g).Score(), nil
}
