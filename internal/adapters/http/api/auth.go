package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/okian/perception/internal/adapters/session"
	"github.com/okian/perception/pkg/logger"
	"github.com/okian/perception/pkg/metrics"
)

// SessionCookie names the cookie carrying the session token.
const SessionCookie = "perception_session"

type ctxKey struct{}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username  string `json:"username"`
	ExpiresAt string `json:"expiresAt"`
}

// AuthHandler checks the static dashboard login and guards routes.
type AuthHandler struct {
	sessions Sessions
	username string
	password string
	secure   bool
	limiter  *ipLimiter
	log      logger.Logger
}

func newAuthHandler(sessions Sessions, cfg settings) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		username: cfg.username,
		password: cfg.password,
		secure:   cfg.secureCookie,
		limiter:  newIPLimiter(cfg.ratePerMin, cfg.burst, cfg.now),
		log:      cfg.log.Named("auth"),
	}
}

// HandleLogin handles POST /api/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !h.limiter.allow(clientIP(r)) {
		metrics.RecordLoginAttempt("rate_limited")
		writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind(op, ErrRateLimited))
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordLoginAttempt("bad_request")
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if !h.valid(req.Username, req.Password) {
		metrics.RecordLoginAttempt("rejected")
		h.log.Warn(r.Context(), "login rejected", logger.String("ip", clientIP(r)))
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	sess := h.sessions.Create(r.Context(), h.username)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	metrics.RecordLoginAttempt("success")
	writeJSON(w, http.StatusOK, loginResponse{
		Username:  sess.Username,
		ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// HandleLogout handles POST /api/logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		h.sessions.Delete(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// RequireSession rejects requests without a live session with 401.
func (h *AuthHandler) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := h.session(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", NewKind("api.require_session", ErrUnauthorized))
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	}
}

func (h *AuthHandler) session(r *http.Request) (session.Session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return session.Session{}, false
	}
	sess, err := h.sessions.Lookup(r.Context(), c.Value)
	if err != nil {
		return session.Session{}, false
	}
	return sess, true
}

// valid compares in constant time. An unset username or password never matches.
func (h *AuthHandler) valid(username, password string) bool {
	if h.username == "" || h.password == "" {
		return false
	}
	u := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(h.username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(h.password))
	return u&p == 1
}

// CurrentSession returns the session attached by RequireSession.
func CurrentSession(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(session.Session)
	return sess, ok
}
