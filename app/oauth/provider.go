// Package oauth exchanges third-party identity assertions for local profiles.
// Each provider implements the same small interface so the auth service can
// treat GitHub and Google identically.
package oauth

import "context"

// Profile is the verified identity a provider hands back after a code
// exchange. Email and Username may be empty if the provider withholds them.
type Profile struct {
	Subject  string
	Username string
	Email    string
}

type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}
