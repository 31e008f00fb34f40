// Command codebreaker starts a game in the terminal and marks the guesses
// given on the command line:
//
//	codebreaker -secret 1234 1243 4321
//
// Without -secret a random code over the configured symbols is used.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/codebreaker/internal/config"
	"github.com/robalobadob/codebreaker/internal/game"
	"github.com/robalobadob/codebreaker/internal/secret"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	if err := run(os.Args[1:], os.Stdout, cfg.Symbols); err != nil {
		log.Fatal().Err(err).Msg("codebreaker")
	}
}

// run parses args, starts a game writing to out and marks each guess.
func run(args []string, out io.Writer, symbols string) error {
	fs := flag.NewFlagSet("codebreaker", flag.ContinueOnError)
	fs.SetOutput(out)
	code := fs.String("secret", "", "secret code (default random)")
	reveal := fs.Bool("reveal", false, "print the secret after marking")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *code == "" {
		var err error
		if *code, err = secret.Random(symbols); err != nil {
			return err
		}
	} else if err := secret.Validate(*code, symbols); err != nil {
		return fmt.Errorf("secret: %w", err)
	}

	g := game.New(game.WriterMessenger{W: out})
	if err := g.Start(*code); err != nil {
		return err
	}
	for _, guess := range fs.Args() {
		if _, err := g.Guess(guess); err != nil {
			log.Warn().Err(err).Str("guess", guess).Msg("guess ignored")
			continue
		}
	}
	if *reveal {
		fmt.Fprintf(out, "Secret was %s\n", *code)
	}
	return nil
}
