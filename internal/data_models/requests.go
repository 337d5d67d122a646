package dto

import (
	model "github.com/shahpalash10/chore-Mate/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type CreateTaskRequest struct {
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	AssignedToID *string `json:"assigned_to_id"`
	DueDate      string  `json:"due_date"`
	DueTime      *string `json:"due_time"`
}

// ToggleTaskRequest carries the completion status as currently shown, not
// the desired one; the synchronizer flips it.
type ToggleTaskRequest struct {
	IsCompleted bool `json:"is_completed"`
}

type SessionResponse struct {
	State string      `json:"state"`
	User  *model.User `json:"user,omitempty"`
	Error string      `json:"error,omitempty"`
}
