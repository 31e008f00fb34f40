// internal/game/types.go
//
// Core type definitions for the Codebreaker game.
// Defines:
//   - Messenger: the output sink a Game talks to.
//   - WriterMessenger: adapter from any io.Writer.
//   - Game: a started game holding its secret.

package game

import (
	"fmt"
	"io"

	"github.com/robalobadob/codebreaker/internal/marker"
)

// Messages sent by Start, in order.
const (
	MsgWelcome = "Welcome to Codebreaker!"
	MsgPrompt  = "Enter guess:"
)

// Messenger receives one line of output at a time.
type Messenger interface {
	Puts(msg string)
}

// WriterMessenger writes each message followed by a newline to W.
// Write errors are dropped; a console that cannot be written to has
// nobody to report them to.
type WriterMessenger struct {
	W io.Writer
}

// Puts writes msg and a newline.
func (m WriterMessenger) Puts(msg string) {
	_, _ = fmt.Fprintln(m.W, msg)
}

// Recorder is a Messenger that keeps every message in memory.
// Used by the HTTP layer to return Start messages and by tests.
type Recorder struct {
	Messages []string
}

// Puts appends msg.
func (r *Recorder) Puts(msg string) { r.Messages = append(r.Messages, msg) }

// Game holds the output sink and, once started, the secret code.
type Game struct {
	messenger Messenger
	secret    marker.Code[rune]
	started   bool
}
