package handlers

import (
	"net/http"
	"time"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

const (
	AccessCookieName  = "careerdesk_access_token"
	RefreshCookieName = "careerdesk_refresh_token"
	refreshCookiePath = "/api/v1/auth/refresh"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=1024"`
}

type AuthHandler struct {
	authService  domain.AuthService
	secureCookie bool
}

// NewAuthHandler builds the admin session endpoints. secureCookie is false only
// for plain-HTTP local development.
func NewAuthHandler(authService domain.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, err)
		return
	}

	access, refresh, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	h.setAuthCookies(w, access, refresh)
	writeJSON(w, http.StatusOK, map[string]string{"status": "authenticated", "access_token": access})
}

// Refresh handles the Silent Refresh flow
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	// 1. Extract the Refresh Cookie
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No refresh token provided")
		return
	}

	// 2. 🛡️ Cryptographic Verification + Token Rotation
	access, refresh, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		// If the refresh token is expired or tampered with, clear the dead cookie
		h.clearCookies(w)
		writeError(w, http.StatusUnauthorized, "Session expired, please log in again")
		return
	}

	h.setAuthCookies(w, access, refresh)
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed", "access_token": access})
}

// 🛡️ Helper: Apply Zero-Trust cookie policies
func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int((15 * time.Minute).Seconds()),
	})

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refreshToken,
		Path:     refreshCookiePath, // 🛡️ Only send this cookie to the refresh endpoint
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
	})
}

// 🛡️ Helper: Clean up cookies on failure
func (h *AuthHandler) clearCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: AccessCookieName, Value: "", Path: "/", HttpOnly: true, MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: RefreshCookieName, Value: "", Path: refreshCookiePath, HttpOnly: true, MaxAge: -1})
}
