package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"familytree/internal/auth/models"
	dErrors "familytree/pkg/domain-errors"
	"familytree/pkg/platform/httputil"
	"familytree/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "refreshToken"

// Service defines the account operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken, accessToken string) error
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// Handler serves registration, login, token refresh and logout.
type Handler struct {
	auth          Service
	logger        *slog.Logger
	secureCookies bool
}

func New(auth Service, logger *slog.Logger, secureCookies bool) *Handler {
	return &Handler{auth: auth, logger: logger, secureCookies: secureCookies}
}

// Register mounts the account routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Get("/token", h.handleRefresh)
	r.Delete("/logout", h.handleLogout)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(ctx, w, "invalid register request", err)
		return
	}
	if _, err := h.auth.Register(ctx, &req); err != nil {
		h.fail(ctx, w, "register failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, messageResponse{Message: "registration successful"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(ctx, w, "invalid login request", err)
		return
	}
	session, err := h.auth.Login(ctx, &req)
	if err != nil {
		h.fail(ctx, w, "login failed", err)
		return
	}
	http.SetCookie(w, h.refreshCookie(session.RefreshToken, session.RefreshExpiresAt))
	httputil.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: session.AccessToken})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access, err := h.auth.Refresh(ctx, refreshTokenFrom(r))
	if err != nil {
		h.fail(ctx, w, "token refresh failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: access})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.auth.Logout(ctx, refreshTokenFrom(r), strings.TrimSpace(access)); err != nil {
		h.fail(ctx, w, "logout failed", err)
		return
	}
	http.SetCookie(w, h.refreshCookie("", time.Unix(0, 0)))
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (h *Handler) refreshCookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteNoneMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	if !h.secureCookies {
		// Browsers drop SameSite=None cookies that are not Secure.
		c.SameSite = http.SameSiteLaxMode
	}
	return c
}

func refreshTokenFrom(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}
