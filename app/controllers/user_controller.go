package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"trove/app/dto"
	"trove/app/services"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

func userID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.Users.List(r.Context())
	if err != nil {
		writeInternal(w, "An error occurred while fetching users.", err)
		return
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "User ID is required.")
		return
	}
	user, err := c.Users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found.")
			return
		}
		writeInternal(w, "An error occurred while fetching the user.", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "User ID is required.")
		return
	}
	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	user, err := c.Users.Update(r.Context(), id, services.UpdateParams{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		Locked:   req.Locked,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found.")
		return
	case errors.Is(err, services.ErrInvalidRole):
		writeMessage(w, http.StatusBadRequest, "Invalid role.")
		return
	default:
		writeInternal(w, "An error occurred while updating the user.", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "User ID is required.")
		return
	}
	if err := c.Users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found.")
			return
		}
		writeInternal(w, "An error occurred while deleting the user.", err)
		return
	}
	writeMessage(w, http.StatusOK, "User deleted successfully")
}
