// internal/httpserver/server.go
//
// HTTP server wiring for the Codebreaker backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     zerolog access log).
//   - Public endpoints: "/", "/health", POST /mark.
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess,
//     GET /game/{id}/history, POST /game/{id}/claim (auth).
//   - Daily code endpoints (optional auth): mounted under /daily.
//   - Account endpoints: /auth/*, /history/mine (routes_auth.go).
//
// Notes:
//   - A game is only a secret behind an id. Every guess is marked on its own;
//     the server keeps no turn count and never declares a winner.
//   - Mark history is written best effort: a failed insert is logged and the
//     player still gets their marks.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/codebreaker/internal/auth"
	"github.com/robalobadob/codebreaker/internal/config"
	"github.com/robalobadob/codebreaker/internal/game"
	"github.com/robalobadob/codebreaker/internal/history"
	"github.com/robalobadob/codebreaker/internal/id"
	"github.com/robalobadob/codebreaker/internal/marker"
	"github.com/robalobadob/codebreaker/internal/secret"
	"github.com/robalobadob/codebreaker/internal/store"
)

// Server bundles router, session store, history and accounts.
type Server struct {
	r       *chi.Mux
	cfg     *config.Config
	store   store.Store
	history *history.Store
	auth    *auth.Service
	cookies auth.Cookies
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
// db must already be migrated.
func New(cfg *config.Config, st store.Store, db *sql.DB) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		store:   st,
		history: history.NewStore(db),
		auth:    auth.NewService(db, cfg.JWTSecret, time.Duration(cfg.JWTExpiresDays)*24*time.Hour),
		cookies: auth.Cookies{Name: cfg.CookieName, Secure: cfg.Production()},
		now:     time.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "codebreaker",
			"endpoints": []string{"/health", "POST /mark", "POST /game/new", "POST /game/guess", "/daily", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// Stateless scoring
	s.r.Post("/mark", s.handleMark)

	// Game and daily endpoints, optional auth (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth)
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Get("/game/{id}/history", s.handleGameHistory)
		r.With(s.requireAuth).Post("/game/{id}/claim", s.handleClaimGame)
		s.mountDaily(r)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// accessLog writes one line per request through the request-scoped logger.
func accessLog(r *http.Request, status, size int, d time.Duration) {
	lvl := zerolog.InfoLevel
	if status >= 500 {
		lvl = zerolog.ErrorLevel
	}
	hlog.FromRequest(r).WithLevel(lvl).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- MARK --------------------------------------

type markReq struct {
	Secret string `json:"secret"`
	Guess  string `json:"guess"`
}

// markRes is the scoring payload shared by every marking endpoint.
type markRes struct {
	Exact    int    `json:"exact"`
	Number   int    `json:"number"`
	Feedback string `json:"feedback"`
}

func toMarkRes(sc marker.Score) markRes {
	return markRes{Exact: sc.Exact, Number: sc.Number, Feedback: sc.Feedback()}
}

// handleMark scores a guess against a caller-supplied secret.
func (s *Server) handleMark(w http.ResponseWriter, r *http.Request) {
	var req markReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sc, err := marker.MarkString(req.Secret, req.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toMarkRes(sc))
}

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	Secret string `json:"secret"` // optional fixed secret (testing)
}
type newGameRes struct {
	GameID   string   `json:"gameId"`
	Messages []string `json:"messages"`
}

// handleNewGame starts a game with a random (or supplied) secret and returns
// the messages the game sent on start.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	code := req.Secret
	if code == "" {
		var err error
		if code, err = secret.Random(s.cfg.Symbols); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("generate secret")
			writeError(w, http.StatusInternalServerError, "secret_failed")
			return
		}
	} else if err := secret.Validate(code, s.cfg.Symbols); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := &game.Recorder{}
	if err := game.New(out).Start(code); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := store.Session{ID: id.New(), Secret: code, CreatedAt: s.now().UTC()}
	if me := currentUser(r); me != nil {
		sess.UserID = me.ID
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	hlog.FromRequest(r).Debug().Str("gameId", sess.ID).Str("user", sess.UserID).Msg("game started")

	writeJSON(w, http.StatusOK, newGameRes{GameID: sess.ID, Messages: out.Messages})
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

// handleGuess marks a guess against a stored game's secret and records it.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}

	g, err := game.Resume(&game.Recorder{}, sess.Secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "bad_session")
		return
	}
	sc, err := g.Guess(req.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.record(r, history.Entry{GameID: sess.ID, Guess: req.Guess}, sc)
	writeJSON(w, http.StatusOK, toMarkRes(sc))
}

// handleGameHistory lists the marks recorded for a game started through
// /game/new. Ids that are not live sessions (daily rows included) are 404,
// and an owned game is only shown to its owner.
func (s *Server) handleGameHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	if sess.UserID != "" {
		if me := currentUser(r); me == nil || me.ID != sess.UserID {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
	}
	entries, err := s.history.ByGame(r.Context(), sess.ID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("load history")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// record stores a scored guess, attributing it to the caller when signed in.
func (s *Server) record(r *http.Request, e history.Entry, sc marker.Score) {
	e.Exact, e.Number = sc.Exact, sc.Number
	e.CreatedAt = s.now().UTC()
	if me := currentUser(r); me != nil {
		e.UserID = me.ID
	}
	if _, err := s.history.Record(r.Context(), e); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("gameId", e.GameID).Msg("record mark")
	}
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
