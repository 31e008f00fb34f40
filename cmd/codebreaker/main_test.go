package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/robalobadob/codebreaker/internal/marker"
	"github.com/robalobadob/codebreaker/internal/secret"
)

func TestRunMarksGuesses(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-secret", "1234", "1243", "12", "4321"}, &out, secret.DefaultSymbols)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "Welcome to Codebreaker!\nEnter guess:\n++--\n----\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRunRandomSecretReveal(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-reveal"}, &out, secret.DefaultSymbols); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	last := lines[len(lines)-1]
	code := strings.TrimPrefix(last, "Secret was ")
	if err := secret.Validate(code, secret.DefaultSymbols); err != nil {
		t.Errorf("revealed %q: %v", last, err)
	}
}

func TestRunRejectsBadSecret(t *testing.T) {
	err := run([]string{"-secret", "99"}, &bytes.Buffer{}, secret.DefaultSymbols)
	if !errors.Is(err, marker.ErrInvalidInput) {
		t.Errorf("run error = %v, want ErrInvalidInput", err)
	}
}
