package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shahpalash10/chore-Mate/internal/constants"
	errs "github.com/shahpalash10/chore-Mate/internal/errors"
	model "github.com/shahpalash10/chore-Mate/internal/models"
	"github.com/shahpalash10/chore-Mate/internal/remote"
)

// identityProvider is the slice of the session manager the synchronizer
// needs: who is looking at the collection right now.
type identityProvider interface {
	CurrentUser() *model.User
}

// CreateTaskInput carries the fields of a create intent. On remote failure
// the same value is handed back through the failure handler so the caller
// can restore its form and offer a retry.
type CreateTaskInput struct {
	Title        string
	Category     constants.Category
	AssignedToID *string
	DueDate      string
	DueTime      *string
}

// SyncService owns the in-memory task collection. Mutations apply
// optimistically and synchronously; the matching remote call runs in the
// background and either lets a change notification reconcile state through
// Load, or rolls the optimistic edit back.
type SyncService struct {
	store    remote.TaskStore
	users    remote.UserStore
	notifier remote.Notifier
	identity identityProvider
	toastTTL time.Duration

	mu         sync.Mutex
	collection []model.Task
	userList   []model.User
	// pending tracks in-flight optimistic creates by placeholder id. The
	// value flips to true once the insert is confirmed, after which the
	// next authoritative load drops the placeholder.
	pending    map[string]bool
	toastOn    bool
	toastTimer *time.Timer

	unsubscribers  []func()
	onChange       []func()
	onCreateFailed func(CreateTaskInput, error)
}

func NewSyncService(
	store remote.TaskStore,
	users remote.UserStore,
	notifier remote.Notifier,
	identity identityProvider,
	toastTTL time.Duration,
) *SyncService {
	return &SyncService{
		store:    store,
		users:    users,
		notifier: notifier,
		identity: identity,
		toastTTL: toastTTL,
		pending:  make(map[string]bool),
	}
}

// Start opens the per-table change subscriptions and performs the initial
// loads. Each table independently triggers a full reload of its collection.
// Starting an already-started synchronizer is a no-op.
func (s *SyncService) Start(ctx context.Context) error {
	s.mu.Lock()
	if len(s.unsubscribers) > 0 {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	unsubTasks, err := s.notifier.Subscribe(ctx, constants.TasksTable, func() {
		if err := s.Load(context.Background()); err != nil {
			log.Printf("reload after tasks change failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	unsubUsers, err := s.notifier.Subscribe(ctx, constants.UsersTable, func() {
		s.loadUsers(context.Background())
	})
	if err != nil {
		unsubTasks()
		return err
	}

	s.mu.Lock()
	s.unsubscribers = append(s.unsubscribers, unsubTasks, unsubUsers)
	s.mu.Unlock()

	s.loadUsers(ctx)
	return s.Load(ctx)
}

// Stop tears down the subscriptions and any running toast timer.
func (s *SyncService) Stop() {
	s.mu.Lock()
	unsubs := s.unsubscribers
	s.unsubscribers = nil
	if s.toastTimer != nil {
		s.toastTimer.Stop()
		s.toastTimer = nil
	}
	s.toastOn = false
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Load replaces the confirmed portion of the collection with authoritative
// rows while keeping in-flight placeholders visible. On fetch failure the
// collection stays as it was: stale but consistent.
func (s *SyncService) Load(ctx context.Context) error {
	viewer := s.identity.CurrentUser()
	if viewer == nil {
		return errs.ErrNotAuthenticated
	}

	filter := remote.TaskFilter{}
	if !viewer.IsAdmin() {
		filter.AssignedToID = viewer.ID
	}

	rows, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		log.Printf("failed to load tasks: %v", err)
		return err
	}

	s.mu.Lock()
	s.collection = s.merge(rows)
	s.mu.Unlock()

	s.notifyChanged()
	return nil
}

// merge keeps placeholders whose create is still in flight in front of the
// authoritative rows. Settled placeholders are superseded by their server
// row and dropped. Caller holds the lock.
func (s *SyncService) merge(rows []model.Task) []model.Task {
	merged := make([]model.Task, 0, len(rows)+len(s.pending))
	for _, task := range s.collection {
		if !task.IsPlaceholder() {
			continue
		}
		settled, ok := s.pending[task.ID]
		if !ok || settled {
			delete(s.pending, task.ID)
			continue
		}
		merged = append(merged, task)
	}
	return append(merged, rows...)
}

// Create inserts an optimistic placeholder and returns its id immediately.
// The remote insert runs in the background; the placeholder stays until a
// reload supersedes it, or is removed with the input handed back on failure.
func (s *SyncService) Create(ctx context.Context, input CreateTaskInput) (string, error) {
	viewer := s.identity.CurrentUser()
	if viewer == nil {
		return "", errs.ErrNotAuthenticated
	}
	if !viewer.IsAdmin() {
		return "", errs.ErrAdminOnly
	}

	if strings.TrimSpace(input.Title) == "" {
		return "", errs.ErrTitleRequired
	}
	if input.Category == "" {
		input.Category = constants.CategoryGeneral
	}
	if !constants.ValidCategory(input.Category) {
		return "", errs.ErrInvalidCategory
	}
	if input.DueDate == "" {
		input.DueDate = time.Now().UTC().Format("2006-01-02")
	}

	now := time.Now().UTC()
	placeholder := model.Task{
		ID:           constants.PlaceholderPrefix + uuid.NewString(),
		Title:        input.Title,
		Category:     input.Category,
		AssignedToID: input.AssignedToID,
		CreatedByID:  viewer.ID,
		DueDate:      input.DueDate,
		DueTime:      input.DueTime,
		IsCompleted:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
		AssignedTo:   s.lookupUser(input.AssignedToID),
		CreatedBy:    viewer,
	}

	s.mu.Lock()
	s.collection = append([]model.Task{placeholder}, s.collection...)
	s.pending[placeholder.ID] = false
	s.mu.Unlock()
	s.notifyChanged()

	draft := remote.TaskDraft{
		Title:        input.Title,
		Category:     string(input.Category),
		AssignedToID: input.AssignedToID,
		CreatedByID:  viewer.ID,
		DueDate:      input.DueDate,
		DueTime:      input.DueTime,
	}

	go func() {
		if _, err := s.store.InsertTask(context.Background(), draft); err != nil {
			log.Printf("failed to create task: %v", err)
			s.removePlaceholder(placeholder.ID)
			s.reportCreateFailure(input, err)
			return
		}

		s.mu.Lock()
		if _, ok := s.pending[placeholder.ID]; ok {
			s.pending[placeholder.ID] = true
		}
		s.mu.Unlock()
	}()

	return placeholder.ID, nil
}

// ToggleCompletion flips completion optimistically, then persists the flip.
// A failed update is rolled back by reloading from the authoritative store
// rather than reversing the field by hand.
func (s *SyncService) ToggleCompletion(ctx context.Context, taskID string, current bool) error {
	viewer := s.identity.CurrentUser()
	if viewer == nil {
		return errs.ErrNotAuthenticated
	}

	s.mu.Lock()
	idx := s.indexOf(taskID)
	if idx < 0 {
		s.mu.Unlock()
		return errs.ErrTaskNotFound
	}
	task := &s.collection[idx]
	if !viewer.IsAdmin() && (task.AssignedToID == nil || *task.AssignedToID != viewer.ID) {
		s.mu.Unlock()
		return errs.ErrNotTaskAssignee
	}
	task.IsCompleted = !current
	task.UpdatedAt = time.Now().UTC()
	isPlaceholder := task.IsPlaceholder()
	s.mu.Unlock()
	s.notifyChanged()

	if !current && viewer.Role == constants.RoleEmployee {
		s.signalCompletion()
	}

	// Placeholder ids never go over the wire; the confirmed row will carry
	// the flip once the create lands and the user toggles again.
	if isPlaceholder {
		return nil
	}

	go func() {
		if err := s.store.SetTaskCompleted(context.Background(), taskID, !current); err != nil {
			log.Printf("failed to update task %s: %v", taskID, err)
			if err := s.Load(context.Background()); err != nil {
				log.Printf("rollback reload failed: %v", err)
			}
		}
	}()

	return nil
}

// Delete removes the task from view immediately. Remote failure restores it
// through a reload; a not-found race is benign and needs no rollback.
func (s *SyncService) Delete(ctx context.Context, taskID string) error {
	viewer := s.identity.CurrentUser()
	if viewer == nil {
		return errs.ErrNotAuthenticated
	}
	if !viewer.IsAdmin() {
		return errs.ErrAdminOnly
	}

	s.mu.Lock()
	idx := s.indexOf(taskID)
	if idx < 0 {
		s.mu.Unlock()
		return errs.ErrTaskNotFound
	}
	isPlaceholder := s.collection[idx].IsPlaceholder()
	s.collection = append(s.collection[:idx], s.collection[idx+1:]...)
	if isPlaceholder {
		delete(s.pending, taskID)
	}
	s.mu.Unlock()
	s.notifyChanged()

	if isPlaceholder {
		return nil
	}

	go func() {
		if err := s.store.DeleteTask(context.Background(), taskID); err != nil {
			log.Printf("failed to delete task %s: %v", taskID, err)
			if err := s.Load(context.Background()); err != nil {
				log.Printf("rollback reload failed: %v", err)
			}
		}
	}()

	return nil
}

// Tasks returns a snapshot of the collection.
func (s *SyncService) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.collection))
	copy(out, s.collection)
	return out
}

// Users returns a snapshot of the user roster.
func (s *SyncService) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, len(s.userList))
	copy(out, s.userList)
	return out
}

// Employees returns the assignable part of the roster.
func (s *SyncService) Employees() []model.User {
	var out []model.User
	for _, u := range s.Users() {
		if u.Role == constants.RoleEmployee {
			out = append(out, u)
		}
	}
	return out
}

// CompletionSignal reports whether the transient completed toast is active.
func (s *SyncService) CompletionSignal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toastOn
}

// OnChange registers an observer invoked after every state change.
func (s *SyncService) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// SetCreateFailureHandler registers the callback that receives the original
// input of a create whose remote insert failed.
func (s *SyncService) SetCreateFailureHandler(fn func(CreateTaskInput, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCreateFailed = fn
}

func (s *SyncService) loadUsers(ctx context.Context) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		log.Printf("failed to load users: %v", err)
		return
	}

	s.mu.Lock()
	s.userList = users
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *SyncService) signalCompletion() {
	s.mu.Lock()
	s.toastOn = true
	if s.toastTimer != nil {
		s.toastTimer.Stop()
	}
	s.toastTimer = time.AfterFunc(s.toastTTL, func() {
		s.mu.Lock()
		s.toastOn = false
		s.mu.Unlock()
		s.notifyChanged()
	})
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *SyncService) removePlaceholder(id string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx >= 0 {
		s.collection = append(s.collection[:idx], s.collection[idx+1:]...)
	}
	delete(s.pending, id)
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *SyncService) reportCreateFailure(input CreateTaskInput, err error) {
	s.mu.Lock()
	fn := s.onCreateFailed
	s.mu.Unlock()
	if fn != nil {
		fn(input, err)
	}
}

func (s *SyncService) lookupUser(id *string) *model.User {
	if id == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.userList {
		if s.userList[i].ID == *id {
			u := s.userList[i]
			return &u
		}
	}
	return nil
}

// indexOf requires the lock.
func (s *SyncService) indexOf(id string) int {
	for i := range s.collection {
		if s.collection[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *SyncService) notifyChanged() {
	s.mu.Lock()
	fns := make([]func(), len(s.onChange))
	copy(fns, s.onChange)
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
