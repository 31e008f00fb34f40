package marker

import "strings"

// Score is the feedback for one guess.
// Exact+Number never exceeds CodeLen.
type Score struct {
	Exact  int `json:"exact"`
	Number int `json:"number"`
}

// Feedback renders the score as a mark string: one '+' per exact match
// followed by one '-' per number match, e.g. "++--".
func (s Score) Feedback() string {
	return strings.Repeat("+", s.Exact) + strings.Repeat("-", s.Number)
}
