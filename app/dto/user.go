package dto

import "trove/app/models"

// UpdateUserRequest uses pointers so absent fields stay untouched.
type UpdateUserRequest struct {
	Username *string      `json:"username"`
	Email    *string      `json:"email"`
	Role     *models.Role `json:"role"`
	Locked   *bool        `json:"locked"`
}
