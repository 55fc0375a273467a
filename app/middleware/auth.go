package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"trove/app/dto"
	jwtutil "trove/app/jwt"
	"trove/app/models"
	"trove/app/token"
	"trove/global"
)

type ctxKey int

const claimsKey ctxKey = 1

type Auth struct {
	Signer    *jwtutil.Signer
	Blacklist *token.Blacklist
}

// RequireAuth extracts the bearer token and rejects it in order: missing,
// revoked, cryptographically invalid. The revocation lookup runs before
// signature verification on purpose; it is the cheap path.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			writeMessage(w, http.StatusForbidden, "Token is required.")
			return
		}
		raw := strings.TrimPrefix(authz, "Bearer ")

		revoked, err := a.Blacklist.IsRevoked(r.Context(), raw)
		if err != nil {
			global.Logger.Error().Err(err).Msg("revocation check failed")
			writeMessage(w, http.StatusInternalServerError, "An error occurred while verifying the token.")
			return
		}
		if revoked {
			writeMessage(w, http.StatusUnauthorized, "Token has been blacklisted. Please log in again.")
			return
		}

		claims, err := a.Signer.Parse(raw)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid Token.")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = context.WithValue(ctx, rawTokenKey, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole is the role gate: a pure membership test over the verified
// claims, never a database lookup.
func (a *Auth) RequireRole(next http.Handler, roles ...models.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil {
			writeMessage(w, http.StatusForbidden, "Token is required.")
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				next.ServeHTTP(w, r)
				return
			}
		}
		writeMessage(w, http.StatusForbidden, "Access denied: insufficient permissions.")
	})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.MessageResponse{Message: msg})
}
