package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gizetz/gbairai/internal/apperr"
	"github.com/gizetz/gbairai/internal/auth"
	"github.com/gizetz/gbairai/internal/models"
	"github.com/gizetz/gbairai/internal/store"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type VerificationMailer interface {
	SendVerificationEmail(to, username, token string) error
}

type AuthHandler struct {
	Store         store.Store
	Signer        *auth.Signer
	Mailer        VerificationMailer
	Logger        *slog.Logger
	SecureCookies bool
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case !usernamePattern.MatchString(req.Username):
		writeError(w, r, h.Logger, apperr.Validation("username must be 3-32 letters, digits or underscores"))
		return
	case !strings.Contains(req.Email, "@"):
		writeError(w, r, h.Logger, apperr.Validation("invalid email"))
		return
	case len(req.Password) < 8 || len(req.Password) > 72:
		writeError(w, r, h.Logger, apperr.Validation("password must be 8-72 characters"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, h.Logger, apperr.Internal(err))
		return
	}

	user := &models.User{
		Username:          req.Username,
		Email:             req.Email,
		Password:          string(hashedPassword),
		VerificationToken: uuid.NewString(),
		CreatedAt:         time.Now().UTC(),
	}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, r, h.Logger, apperr.Conflict("username or email already taken"))
			return
		}
		writeError(w, r, h.Logger, apperr.Internal(err))
		return
	}

	if h.Mailer != nil {
		if err := h.Mailer.SendVerificationEmail(user.Email, user.Username, user.VerificationToken); err != nil {
			h.Logger.Warn("verification email failed", "user_id", user.ID, "err", err)
		}
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	invalid := apperr.Unauthorized("invalid credentials")
	user, err := h.Store.GetUserByUsername(r.Context(), creds.Username)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusUnauthorized, invalid)
		return
	}
	if err != nil {
		writeError(w, r, h.Logger, apperr.Internal(err))
		return
	}
	if user.IsSystem {
		writeJSONError(w, http.StatusUnauthorized, invalid)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		writeJSONError(w, http.StatusUnauthorized, invalid)
		return
	}

	http.SetCookie(w, h.Signer.SessionCookie(user.ID, h.SecureCookies))
	writeJSON(w, http.StatusOK, user)
}

// writeJSONError is writeError with an explicit status, for the login
// failures that must read as 401 rather than 403.
func writeJSONError(w http.ResponseWriter, status int, err error) {
	appErr := err.(*apperr.AppError)
	writeJSON(w, status, struct {
		Code    apperr.Code `json:"code"`
		Message string      `json:"message"`
	}{appErr.Code, appErr.Message})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	err := h.Store.VerifyUser(r.Context(), token)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, h.Logger, apperr.NotFound("verification token not found"))
		return
	}
	if err != nil {
		writeError(w, r, h.Logger, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

func (h *AuthHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, []models.User{})
		return
	}

	users, err := h.Store.SearchUsers(r.Context(), query)
	if err != nil {
		writeError(w, r, h.Logger, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := callerID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	user, err := h.Store.GetUserByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, h.Logger, apperr.ErrAccountNotFound)
		return
	}
	if err != nil {
		writeError(w, r, h.Logger, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, user)
}
