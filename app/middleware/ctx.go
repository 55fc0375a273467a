package middleware

import (
	"context"

	jwtutil "trove/app/jwt"
)

const rawTokenKey ctxKey = 2

func GetClaims(ctx context.Context) *jwtutil.Claims {
	if v := ctx.Value(claimsKey); v != nil {
		if c, ok := v.(*jwtutil.Claims); ok {
			return c
		}
	}
	return nil
}

// GetRawToken returns the bearer string RequireAuth validated, so logout can
// revoke exactly what the caller presented.
func GetRawToken(ctx context.Context) string {
	if v := ctx.Value(rawTokenKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
