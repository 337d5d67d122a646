package model

import (
	"strings"
	"time"

	"github.com/shahpalash10/chore-Mate/internal/constants"
)

type User struct {
	ID    string         `gorm:"primaryKey;size:36" json:"id"`
	Name  string         `gorm:"not null" json:"name"`
	Email string         `gorm:"not null;uniqueIndex" json:"email"`
	Role  constants.Role `gorm:"type:varchar(20);not null" json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == constants.RoleAdmin
}

type Task struct {
	ID           string             `gorm:"primaryKey;size:36" json:"id"`
	Title        string             `gorm:"not null" json:"title"`
	Category     constants.Category `gorm:"type:varchar(20);not null" json:"category"`
	AssignedToID *string            `gorm:"size:36;index" json:"assigned_to_id"`
	CreatedByID  string             `gorm:"size:36;not null" json:"created_by_id"`
	DueDate      string             `gorm:"size:10;not null" json:"due_date"`
	DueTime      *string            `gorm:"size:5" json:"due_time,omitempty"`
	IsCompleted  bool               `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	AssignedTo *User `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	CreatedBy  *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// IsPlaceholder reports whether the task is an unconfirmed optimistic entry.
func (t *Task) IsPlaceholder() bool {
	return strings.HasPrefix(t.ID, constants.PlaceholderPrefix)
}

// Credential backs the identity service. Kept separate from the profile row
// so the users table matches what the synchronizer reads.
type Credential struct {
	UserID       string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
}
