package handler

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jobboard-api/internal/application/session"
	"github.com/jobboard-api/internal/domain"
)

// CookieConfig describes the auth cookie set at login.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// SessionHandler handles login, logout and current-principal endpoints.
type SessionHandler struct {
	svc    session.Service
	cookie CookieConfig
	log    *zap.Logger
}

func NewSessionHandler(svc session.Service, cookie CookieConfig, log *zap.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, cookie: cookie, log: log}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	h.issue(w, res)
}

func (h *SessionHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req session.GoogleLoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.GoogleLogin(r.Context(), req)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	h.issue(w, res)
}

func (h *SessionHandler) issue(w http.ResponseWriter, res *session.LoginResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Message: fmt.Sprintf("Welcome back %s", res.User.FullName),
		Token:   res.Token,
		User:    res.User,
		Success: true,
	})
}

// Logout clears the cookie. Tokens are stateless and stay valid until they expire.
func (h *SessionHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Logged out successfully", Success: true})
}

// Check returns the principal resolved by the auth middleware.
func (h *SessionHandler) Check(w http.ResponseWriter, r *http.Request) {
	u, ok := principal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		User    checkView `json:"user"`
		Success bool      `json:"success"`
	}{User: newCheckView(u), Success: true})
}

type checkView struct {
	ID       string `json:"id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func newCheckView(u *domain.User) checkView {
	return checkView{ID: u.UserID, FullName: u.FullName, Email: u.Email, Role: u.Role, Status: u.Status}
}
