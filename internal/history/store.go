// internal/history/store.go
//
// SQLite-backed log of scored guesses. Each row records what was marked and
// the resulting counts; it never stores secrets or game progress.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/codebreaker/internal/marker"
)

// Entry is one scored guess.
type Entry struct {
	ID        int64     `json:"id"`
	GameID    string    `json:"gameId"`
	UserID    string    `json:"userId,omitempty"`
	Guess     string    `json:"guess"`
	Exact     int       `json:"exact"`
	Number    int       `json:"number"`
	CreatedAt time.Time `json:"createdAt"`
}

// Score returns the entry's counts as a marker.Score.
func (e Entry) Score() marker.Score {
	return marker.Score{Exact: e.Exact, Number: e.Number}
}

// Store reads and writes the marks table.
type Store struct{ db *sql.DB }

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts e. A zero CreatedAt is set to now; an empty UserID is
// stored as NULL.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO marks(game_id, user_id, guess, exact, number, created_at)
		 VALUES(?,?,?,?,?,?)`,
		e.GameID, nullString(e.UserID), e.Guess, e.Exact, e.Number, e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, err
	}
	e.ID, err = res.LastInsertId()
	return e, err
}

// ByGame lists a game's entries, oldest first.
func (s *Store) ByGame(ctx context.Context, gameID string) ([]Entry, error) {
	return s.query(ctx,
		`SELECT id, game_id, COALESCE(user_id,''), guess, exact, number, created_at
		 FROM marks WHERE game_id=? ORDER BY id ASC`, gameID)
}

// ByUser lists a user's most recent entries, newest first.
// A non-positive limit defaults to 50.
func (s *Store) ByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.query(ctx,
		`SELECT id, game_id, COALESCE(user_id,''), guess, exact, number, created_at
		 FROM marks WHERE user_id=? ORDER BY id DESC LIMIT ?`, userID, limit)
}

// ClaimGame attributes a guest game's entries to userID.
func (s *Store) ClaimGame(ctx context.Context, gameID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE marks SET user_id=? WHERE game_id=? AND user_id IS NULL`, userID, gameID)
	return err
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.GameID, &e.UserID, &e.Guess, &e.Exact, &e.Number, &created); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("history: mark %d created_at: %w", e.ID, err)
		}
		e.CreatedAt = t
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
