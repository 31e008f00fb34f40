// internal/secret/secret.go
//
// Secret code generation.
//   - Random: crypto-random code for a fresh game.
//   - Daily:  deterministic code for a calendar day, HMAC(salt, YYYY-MM-DD).
//   - Validate: checks a caller-supplied code against the symbol alphabet.
//
// Codes are strings of marker.CodeLen symbols drawn from an alphabet such as
// "123456". Symbols may repeat.

package secret

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/robalobadob/codebreaker/internal/marker"
)

// DefaultSymbols is the classic Codebreaker alphabet.
const DefaultSymbols = "123456"

// ErrEmptyAlphabet is returned when no symbols are configured.
var ErrEmptyAlphabet = errors.New("secret: symbol alphabet is empty")

// Random returns a cryptographically random code over symbols.
func Random(symbols string) (string, error) {
	alpha := []rune(symbols)
	if len(alpha) == 0 {
		return "", ErrEmptyAlphabet
	}
	var b strings.Builder
	size := big.NewInt(int64(len(alpha)))
	for i := 0; i < marker.CodeLen; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("secret: random: %w", err)
		}
		b.WriteRune(alpha[n.Int64()])
	}
	return b.String(), nil
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Daily returns the code for t's UTC date. Every position takes two bytes of
// HMAC-SHA256(salt, DateKey(t)) modulo the alphabet size, so the same date and
// salt always give the same code. An empty alphabet yields "".
func Daily(t time.Time, salt, symbols string) string {
	alpha := []rune(symbols)
	if len(alpha) == 0 {
		return ""
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)

	out := make([]rune, marker.CodeLen)
	for i := range out {
		n := binary.BigEndian.Uint16(sum[i*2 : i*2+2])
		out[i] = alpha[int(n)%len(alpha)]
	}
	return string(out)
}

// Validate checks that code is marker.CodeLen symbols, all from symbols.
// Length problems wrap marker.ErrInvalidInput.
func Validate(code, symbols string) error {
	if _, err := marker.ParseCode(code); err != nil {
		return err
	}
	for _, r := range code {
		if !strings.ContainsRune(symbols, r) {
			return fmt.Errorf("symbol %q not in %q: %w", r, symbols, marker.ErrInvalidInput)
		}
	}
	return nil
}
