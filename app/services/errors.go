package services

import "errors"

// Sentinel errors let controllers map outcomes to status codes without
// string matching.
var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrOAuthOnly       = errors.New("account has no password; use oauth")
	ErrAccountLocked   = errors.New("account locked")
	ErrInvalidRole     = errors.New("invalid role")
	ErrItemNotFound    = errors.New("item not found")
	ErrCommentNotFound = errors.New("comment not found")
)
