package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/robalobadob/codebreaker/internal/config"
	"github.com/robalobadob/codebreaker/internal/db"
	"github.com/robalobadob/codebreaker/internal/game"
	"github.com/robalobadob/codebreaker/internal/history"
	"github.com/robalobadob/codebreaker/internal/secret"
	"github.com/robalobadob/codebreaker/internal/store"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	goleak.VerifyTestMain(m,
		// database/sql keeps a connection opener goroutine per open DB.
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	conn, err := db.OpenMigrated(db.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return newTestServerWithDB(t, conn)
}

func newTestServerWithDB(t *testing.T, conn *sql.DB) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	s := New(cfg, store.NewMemoryStore(), conn)
	s.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	return s
}

// do sends a JSON request and decodes the JSON response into out (if non-nil).
func do(t *testing.T, s *Server, method, path string, body any, out any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	var body map[string]bool
	rec := do(t, s, http.MethodGet, "/health", nil, &body)
	if rec.Code != http.StatusOK || !body["ok"] {
		t.Errorf("GET /health = %d %v", rec.Code, body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	s := newTestServer(t)
	var body map[string]string
	rec := do(t, s, http.MethodGet, "/nope", nil, &body)
	if rec.Code != http.StatusNotFound || body["error"] != "not_found" || body["path"] != "/nope" {
		t.Errorf("GET /nope = %d %v", rec.Code, body)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodOptions, "/mark", nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("OPTIONS /mark = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != config.Default().ClientOrigin {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestMark(t *testing.T) {
	tests := []struct {
		secret, guess string
		want          markRes
	}{
		{"1234", "1234", markRes{Exact: 4, Number: 0, Feedback: "++++"}},
		{"1234", "4321", markRes{Exact: 0, Number: 4, Feedback: "----"}},
		{"1234", "1243", markRes{Exact: 2, Number: 2, Feedback: "++--"}},
		{"1122", "2211", markRes{Exact: 0, Number: 4, Feedback: "----"}},
		{"1234", "5678", markRes{Exact: 0, Number: 0, Feedback: ""}},
	}
	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.secret+"/"+tt.guess, func(t *testing.T) {
			var got markRes
			rec := do(t, s, http.MethodPost, "/mark", markReq{Secret: tt.secret, Guess: tt.guess}, &got)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			if got != tt.want {
				t.Errorf("POST /mark = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMarkInvalid(t *testing.T) {
	s := newTestServer(t)
	var body map[string]string
	rec := do(t, s, http.MethodPost, "/mark", markReq{Secret: "123", Guess: "1234"}, &body)
	if rec.Code != http.StatusBadRequest || !strings.Contains(body["error"], "invalid input") {
		t.Errorf("POST /mark short secret = %d %v", rec.Code, body)
	}

	req := httptest.NewRequest(http.MethodPost, "/mark", strings.NewReader("{"))
	res := httptest.NewRecorder()
	s.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Errorf("POST /mark bad json = %d", res.Code)
	}
}

func TestGameFlow(t *testing.T) {
	s := newTestServer(t)

	var started newGameRes
	rec := do(t, s, http.MethodPost, "/game/new", newGameReq{Secret: "1234"}, &started)
	if rec.Code != http.StatusOK || started.GameID == "" {
		t.Fatalf("POST /game/new = %d %+v", rec.Code, started)
	}
	if want := []string{game.MsgWelcome, game.MsgPrompt}; strings.Join(started.Messages, "|") != strings.Join(want, "|") {
		t.Errorf("messages = %q, want %q", started.Messages, want)
	}

	for _, g := range []struct {
		guess string
		want  markRes
	}{
		{"1243", markRes{Exact: 2, Number: 2, Feedback: "++--"}},
		{"1234", markRes{Exact: 4, Feedback: "++++"}},
		{"1234", markRes{Exact: 4, Feedback: "++++"}}, // no end state: guesses keep being marked
	} {
		var got markRes
		rec := do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: started.GameID, Guess: g.guess}, &got)
		if rec.Code != http.StatusOK || got != g.want {
			t.Errorf("guess %s = %d %+v, want %+v", g.guess, rec.Code, got, g.want)
		}
	}

	var entries []history.Entry
	rec = do(t, s, http.MethodGet, "/game/"+started.GameID+"/history", nil, &entries)
	if rec.Code != http.StatusOK || len(entries) != 3 {
		t.Fatalf("history = %d %+v", rec.Code, entries)
	}
	if entries[0].Guess != "1243" || entries[0].Exact != 2 || entries[0].Number != 2 {
		t.Errorf("first entry = %+v", entries[0])
	}
}

func TestNewGameRandomSecret(t *testing.T) {
	s := newTestServer(t)
	var started newGameRes
	rec := do(t, s, http.MethodPost, "/game/new", nil, &started)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /game/new = %d %s", rec.Code, rec.Body)
	}
	sess, err := s.store.Get(context.Background(), started.GameID)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if err := secret.Validate(sess.Secret, s.cfg.Symbols); err != nil {
		t.Errorf("random secret %q invalid: %v", sess.Secret, err)
	}
}

func TestNewGameRejectsBadSecret(t *testing.T) {
	s := newTestServer(t)
	for _, sec := range []string{"12", "12345", "1239"} {
		rec := do(t, s, http.MethodPost, "/game/new", newGameReq{Secret: sec}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("secret %q: status %d, want 400", sec, rec.Code)
		}
	}
}

func TestGuessErrors(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: "missing", Guess: "1234"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown game: %d, want 404", rec.Code)
	}

	var started newGameRes
	do(t, s, http.MethodPost, "/game/new", newGameReq{Secret: "1234"}, &started)
	rec = do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: started.GameID, Guess: "12"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short guess: %d, want 400", rec.Code)
	}
}

func TestGuessSurvivesHistoryFailure(t *testing.T) {
	conn, err := db.Open(db.Memory) // no migrations: marks table missing
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	s := newTestServerWithDB(t, conn)

	var started newGameRes
	do(t, s, http.MethodPost, "/game/new", newGameReq{Secret: "1234"}, &started)
	var got markRes
	rec := do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: started.GameID, Guess: "4321"}, &got)
	if rec.Code != http.StatusOK || got.Number != 4 {
		t.Errorf("guess with broken history = %d %+v", rec.Code, got)
	}
}

func TestDaily(t *testing.T) {
	s := newTestServer(t)

	var info dailyInfoRes
	rec := do(t, s, http.MethodGet, "/daily", nil, &info)
	if rec.Code != http.StatusOK || info.Date != "2026-10-19" || info.Length != 4 {
		t.Fatalf("GET /daily = %d %+v", rec.Code, info)
	}

	_, code := s.dailyToday()
	var got dailyGuessRes
	rec = do(t, s, http.MethodPost, "/daily/guess", dailyGuessReq{Guess: code}, &got)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /daily/guess = %d %s", rec.Code, rec.Body)
	}
	if got.Exact != 4 || got.Number != 0 || got.Date != "2026-10-19" || got.Feedback != "++++" {
		t.Errorf("daily guess of the code = %+v", got)
	}

	rec = do(t, s, http.MethodPost, "/daily/guess", dailyGuessReq{Guess: "1"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short daily guess: %d, want 400", rec.Code)
	}

	entries, err := s.history.ByGame(context.Background(), "daily-2026-10-19")
	if err != nil {
		t.Fatalf("ByGame: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("guest daily guesses recorded: %+v", entries)
	}
}

func TestDailyHistoryNotPublic(t *testing.T) {
	s := newTestServer(t)
	ck := signup(t, s, "solver")
	_, code := s.dailyToday()

	var got dailyGuessRes
	do(t, s, http.MethodPost, "/daily/guess", dailyGuessReq{Guess: code}, &got, ck)
	if got.Exact != 4 {
		t.Fatalf("daily guess of the code = %+v", got)
	}

	for _, cookies := range [][]*http.Cookie{nil, {signup(t, s, "snoop")}} {
		var body map[string]string
		rec := do(t, s, http.MethodGet, "/game/daily-2026-10-19/history", nil, &body, cookies...)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET daily history = %d %s, want 404", rec.Code, rec.Body)
		}
	}

	var mine []history.Entry
	do(t, s, http.MethodGet, "/history/mine", nil, &mine, ck)
	if len(mine) != 1 || mine[0].Guess != code {
		t.Errorf("solver history = %+v, want the daily guess", mine)
	}
}

func TestOwnedGameHistoryHiddenFromOthers(t *testing.T) {
	s := newTestServer(t)
	owner := signup(t, s, "owner")

	var started newGameRes
	do(t, s, http.MethodPost, "/game/new", newGameReq{Secret: "1234"}, &started, owner)
	do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: started.GameID, Guess: "1243"}, nil, owner)

	path := "/game/" + started.GameID + "/history"
	if rec := do(t, s, http.MethodGet, path, nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("guest read of owned game = %d, want 404", rec.Code)
	}
	other := signup(t, s, "other")
	if rec := do(t, s, http.MethodGet, path, nil, nil, other); rec.Code != http.StatusNotFound {
		t.Errorf("other user read of owned game = %d, want 404", rec.Code)
	}
	var entries []history.Entry
	if rec := do(t, s, http.MethodGet, path, nil, &entries, owner); rec.Code != http.StatusOK || len(entries) != 1 {
		t.Errorf("owner read = %d %+v", rec.Code, entries)
	}
}
