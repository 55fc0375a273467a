package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"trove/app/dto"
	"trove/app/oauth"
	"trove/app/services"
)

const stateCookie = "oauth_state"

type OAuthController struct {
	Auth      *services.AuthService
	providers map[string]oauth.Provider
}

func NewOAuthController(auth *services.AuthService, providers ...oauth.Provider) *OAuthController {
	m := make(map[string]oauth.Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &OAuthController{Auth: auth, providers: m}
}

// Begin redirects to the provider's authorize URL with a random state bound
// to a short-lived cookie.
func (c *OAuthController) Begin(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := c.providers[name]
		if !ok {
			writeMessage(w, http.StatusNotFound, "Unknown OAuth provider.")
			return
		}
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			writeInternal(w, "An error occurred while starting OAuth.", err)
			return
		}
		state := hex.EncodeToString(buf)
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookie,
			Value:    state,
			Path:     "/auth",
			MaxAge:   600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, p.AuthCodeURL(state), http.StatusFound)
	}
}

func (c *OAuthController) Callback(name, successMessage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := c.providers[name]
		if !ok {
			writeMessage(w, http.StatusNotFound, "Unknown OAuth provider.")
			return
		}
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" || state == "" {
			writeMessage(w, http.StatusBadRequest, "Missing authorization code or state.")
			return
		}
		cookie, err := r.Cookie(stateCookie)
		if err != nil || cookie.Value != state {
			writeMessage(w, http.StatusBadRequest, "OAuth state mismatch.")
			return
		}

		profile, err := p.Exchange(r.Context(), code)
		if err != nil {
			writeInternal(w, "An error occurred during the OAuth exchange.", err)
			return
		}
		token, user, err := c.Auth.OAuthLogin(r.Context(), name, profile)
		if err != nil {
			writeInternal(w, "An error occurred while logging in with "+name+".", err)
			return
		}
		writeJSON(w, http.StatusOK, dto.OAuthResponse{
			Message: successMessage,
			User:    dto.NewUserResponse(user),
			Token:   token,
		})
	}
}
