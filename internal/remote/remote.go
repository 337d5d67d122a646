// Package remote declares the contract of the managed backend the app is
// built against: row stores for users and tasks, an identity provider, and a
// per-table change-notification channel. The core services only ever see
// these interfaces.
package remote

import (
	"context"
	"errors"
	"time"

	model "github.com/shahpalash10/chore-Mate/internal/models"
)

var ErrNotFound = errors.New("not found in backend")

// TaskFilter narrows ListTasks. An empty AssignedToID means no filter
// (admin view); the backend additionally enforces row-level access itself.
type TaskFilter struct {
	AssignedToID string
}

// TaskDraft is the payload of an insert. Placeholder ids never travel with
// it; the backend assigns the real id.
type TaskDraft struct {
	Title        string
	Category     string
	AssignedToID *string
	CreatedByID  string
	DueDate      string
	DueTime      *string
}

type TaskStore interface {
	// ListTasks returns tasks with assignee/creator snapshots, ordered by
	// completion status asc, due date asc, creation time desc.
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	InsertTask(ctx context.Context, draft TaskDraft) (*model.Task, error)
	SetTaskCompleted(ctx context.Context, id string, completed bool) error
	DeleteTask(ctx context.Context, id string) error
}

type UserStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	InsertUser(ctx context.Context, user *model.User) error
}

// Session is an authenticated identity with its expiry. The profile row is
// fetched separately through the UserStore.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}

type Identity interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	// Session returns the persisted session, or nil when none is stored.
	Session(ctx context.Context) (*Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, newPassword string) error
	// SessionChanges registers a listener for sign-in/sign-out events. A nil
	// session means signed out. The returned func removes the listener.
	SessionChanges(fn func(*Session)) (unsubscribe func())
}

// Notifier delivers per-table change events. Events carry no payload;
// consumers react by reloading.
type Notifier interface {
	Subscribe(ctx context.Context, table string, fn func()) (unsubscribe func(), err error)
	Publish(ctx context.Context, table string) error
}
