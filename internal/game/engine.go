// internal/game/engine.go
//
// Game start and guess marking.
// Responsibilities:
//   - Validate the secret and send the welcome + prompt messages.
//   - Mark guesses with the marker package and send the "+-" feedback.
//
// There is no turn counting and no end-of-game state: every guess is marked
// independently against the same secret.
package game

import (
	"errors"

	"github.com/robalobadob/codebreaker/internal/marker"
)

// ErrNotStarted is returned by Guess before Start has succeeded.
var ErrNotStarted = errors.New("game not started")

// New constructs a game that reports through m.
func New(m Messenger) *Game {
	return &Game{messenger: m}
}

// Resume returns a game already started with secret. No greeting is sent;
// used when a game outlives the request that started it.
func Resume(m Messenger, secret string) (*Game, error) {
	code, err := marker.ParseCode(secret)
	if err != nil {
		return nil, err
	}
	return &Game{messenger: m, secret: code, started: true}, nil
}

// Start sets the secret and greets the player.
// The secret must be marker.CodeLen symbols long; on error nothing is sent.
func (g *Game) Start(secret string) error {
	code, err := marker.ParseCode(secret)
	if err != nil {
		return err
	}
	g.secret = code
	g.started = true
	g.messenger.Puts(MsgWelcome)
	g.messenger.Puts(MsgPrompt)
	return nil
}

// Guess marks guess against the secret and sends the feedback string.
func (g *Game) Guess(guess string) (marker.Score, error) {
	if !g.started {
		return marker.Score{}, ErrNotStarted
	}
	code, err := marker.ParseCode(guess)
	if err != nil {
		return marker.Score{}, err
	}
	score := marker.FromCodes(g.secret, code).Score()
	g.messenger.Puts(score.Feedback())
	return score, nil
}
