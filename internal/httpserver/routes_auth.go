// internal/httpserver/routes_auth.go
//
// Account routes and auth middleware.
//   - POST /auth/signup, /auth/login, /auth/logout
//   - GET  /auth/me, /history/mine (require auth)
//   - POST /game/{id}/claim (require auth): attach a guest game's marks to
//     the caller.
//
// withOptionalAuth decorates requests with the user when a valid token is
// present and never rejects; requireAuth answers 401 instead.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/codebreaker/internal/auth"
	"github.com/robalobadob/codebreaker/internal/store"
)

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

// currentUser returns the signed-in user or nil for guests.
func currentUser(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

// mountAuthRoutes registers authentication + gated routes.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentUser(r))
	})
	s.r.With(s.requireAuth).Get("/history/mine", s.handleMyHistory)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleSignup creates a new user, signs a JWT and sets the auth cookie.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.auth.Signup(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "Username taken")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.issueToken(w, r, u) {
		return
	}
	hlog.FromRequest(r).Info().Str("user", u.ID).Msg("signup")
	writeJSON(w, http.StatusOK, u)
}

// handleLogin authenticates a user and sets the auth cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "login_failed")
		return
	}
	if !s.issueToken(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": u.ID, "username": u.Username})
}

// issueToken signs a token for u and writes the cookie. On failure it
// writes the error response and returns false.
func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, u *auth.User) bool {
	tok, exp, err := s.auth.Sign(u)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.cookies.Set(w, tok, exp)
	return true
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleMyHistory lists the caller's recent marks (?limit=N, default 50).
func (s *Server) handleMyHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.history.ByUser(r.Context(), currentUser(r).ID, limit)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("load history")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleClaimGame attaches a guest game to the caller.
func (s *Server) handleClaimGame(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	if sess.UserID != "" && sess.UserID != me.ID {
		writeError(w, http.StatusForbidden, "owned_by_other")
		return
	}
	sess.UserID = me.ID
	if err := s.store.Save(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	if err := s.history.ClaimGame(r.Context(), sess.ID, me.ID); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("gameId", sess.ID).Msg("claim history")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// --------------------------- middleware ------------------------------------

// userFromToken resolves the request's token to a user that still exists.
func (s *Server) userFromToken(r *http.Request) (*authUser, error) {
	tok := s.cookies.Token(r)
	if tok == "" {
		return nil, auth.ErrInvalidToken
	}
	uid, _, err := s.auth.Verify(tok)
	if err != nil {
		return nil, err
	}
	u, err := s.auth.UserByID(r.Context(), uid)
	if err != nil {
		return nil, err
	}
	return &authUser{ID: u.ID, Username: u.Username}, nil
}

// withOptionalAuth decorates requests with user context if a valid JWT is
// present. It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, err := s.userFromToken(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth enforces a valid JWT for an existing user.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) != nil {
			next.ServeHTTP(w, r)
			return
		}
		u, err := s.userFromToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
	})
}
