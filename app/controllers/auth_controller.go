package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"trove/app/dto"
	"trove/app/middleware"
	"trove/app/services"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields (username, email, password) are required.")
		return
	}

	user, err := c.Auth.Register(r.Context(), req.Username, req.Email, req.Password, req.Role)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "Email is already registered. Please log in or use another email.")
		return
	case errors.Is(err, services.ErrUsernameTaken):
		writeMessage(w, http.StatusBadRequest, "Username is already taken. Please choose another one.")
		return
	case errors.Is(err, services.ErrInvalidRole):
		writeMessage(w, http.StatusBadRequest, "Invalid role.")
		return
	default:
		writeInternal(w, "An error occurred while registering the user.", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		Message: "User registered successfully",
		User:    dto.NewUserResponse(user),
	})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	token, user, err := c.Auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found. Please register first.")
		return
	case errors.Is(err, services.ErrOAuthOnly):
		writeMessage(w, http.StatusUnauthorized, "User authenticated via OAuth. Use OAuth to log in.")
		return
	case errors.Is(err, services.ErrInvalidPassword):
		writeMessage(w, http.StatusUnauthorized, "Invalid password.")
		return
	case errors.Is(err, services.ErrAccountLocked):
		writeMessage(w, http.StatusForbidden, "Account locked due to too many failed login attempts.")
		return
	default:
		writeInternal(w, "An error occurred while logging in.", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Message: "Login successful",
		Auth:    true,
		Token:   token,
		ID:      user.ID,
	})
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	raw := middleware.GetRawToken(r.Context())
	claims := middleware.GetClaims(r.Context())
	if err := c.Auth.Logout(r.Context(), raw, claims); err != nil {
		writeInternal(w, "An error occurred while logging out.", err)
		return
	}
	writeMessage(w, http.StatusOK, "Logout successful")
}
