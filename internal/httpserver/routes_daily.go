// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily code.
// Exposes two endpoints under /daily:
//   - GET  /daily        → today's date key and the symbol alphabet
//   - POST /daily/guess  → mark a guess against today's code
//
// Today's code is derived from the UTC date and DAILY_SALT, so every player
// is marked against the same secret without the server storing it. Daily
// marks are only recorded for signed-in players and only read back through
// /history/mine; a shared history would give the code away.

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/codebreaker/internal/history"
	"github.com/robalobadob/codebreaker/internal/marker"
	"github.com/robalobadob/codebreaker/internal/secret"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDailyInfo)
		r.Post("/guess", s.handleDailyGuess)
	})
}

// dailyToday returns today's date key and code.
func (s *Server) dailyToday() (date, code string) {
	now := s.now()
	return secret.DateKey(now), secret.Daily(now, s.cfg.DailySalt, s.cfg.Symbols)
}

type dailyInfoRes struct {
	Date    string `json:"date"`
	Symbols string `json:"symbols"`
	Length  int    `json:"length"`
}

func (s *Server) handleDailyInfo(w http.ResponseWriter, r *http.Request) {
	date, _ := s.dailyToday()
	writeJSON(w, http.StatusOK, dailyInfoRes{Date: date, Symbols: s.cfg.Symbols, Length: marker.CodeLen})
}

type dailyGuessReq struct {
	Guess string `json:"guess"`
}

type dailyGuessRes struct {
	markRes
	Date string `json:"date"`
}

// dailyGamePrefix prefixes the history game id of daily marks.
const dailyGamePrefix = "daily-"

// handleDailyGuess marks a guess against today's code. Signed-in players get
// a history entry under the game id "daily-YYYY-MM-DD".
func (s *Server) handleDailyGuess(w http.ResponseWriter, r *http.Request) {
	var p dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	date, code := s.dailyToday()
	sc, err := marker.MarkString(code, p.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if currentUser(r) != nil {
		s.record(r, history.Entry{GameID: dailyGamePrefix + date, Guess: p.Guess}, sc)
	}
	writeJSON(w, http.StatusOK, dailyGuessRes{markRes: toMarkRes(sc), Date: date})
}
