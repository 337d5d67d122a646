package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shahpalash10/chore-Mate/internal/constants"
	errs "github.com/shahpalash10/chore-Mate/internal/errors"
	model "github.com/shahpalash10/chore-Mate/internal/models"
	"github.com/shahpalash10/chore-Mate/internal/notify"
	"github.com/shahpalash10/chore-Mate/internal/remote"
)

// fakeTaskStore is an in-memory row store with switchable failures.
type fakeTaskStore struct {
	mu         sync.Mutex
	rows       []model.Task
	failInsert bool
	failUpdate bool
	failDelete bool
	failList   bool
}

var errRemote = errors.New("remote call failed")

func (f *fakeTaskStore) ListTasks(ctx context.Context, filter remote.TaskFilter) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failList {
		return nil, errRemote
	}

	var out []model.Task
	for _, t := range f.rows {
		if filter.AssignedToID != "" && (t.AssignedToID == nil || *t.AssignedToID != filter.AssignedToID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskStore) InsertTask(ctx context.Context, draft remote.TaskDraft) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failInsert {
		return nil, errRemote
	}

	task := model.Task{
		ID:           uuid.NewString(),
		Title:        draft.Title,
		Category:     constants.Category(draft.Category),
		AssignedToID: draft.AssignedToID,
		CreatedByID:  draft.CreatedByID,
		DueDate:      draft.DueDate,
		DueTime:      draft.DueTime,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	f.rows = append(f.rows, task)
	return &task, nil
}

func (f *fakeTaskStore) SetTaskCompleted(ctx context.Context, id string, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpdate {
		return errRemote
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].IsCompleted = completed
			return nil
		}
	}
	return remote.ErrNotFound
}

func (f *fakeTaskStore) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDelete {
		return errRemote
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users []model.User
}

func (f *fakeUserStore) ListUsers(ctx context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, len(f.users))
	copy(out, f.users)
	return out, nil
}

func (f *fakeUserStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, remote.ErrNotFound
}

func (f *fakeUserStore) InsertUser(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, *user)
	return nil
}

type staticIdentity struct {
	user *model.User
}

func (s staticIdentity) CurrentUser() *model.User { return s.user }

var (
	testAdmin    = &model.User{ID: "admin-1", Name: "Ada", Email: "ada@office.test", Role: constants.RoleAdmin}
	testEmployee = &model.User{ID: "emp-1", Name: "Bo", Email: "bo@office.test", Role: constants.RoleEmployee}
)

func newSync(store *fakeTaskStore, viewer *model.User) *SyncService {
	return NewSyncService(store, &fakeUserStore{}, notify.NewLocal(), staticIdentity{viewer}, 50*time.Millisecond)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestLoad_ReplacesStateWithAuthoritativeRows(t *testing.T) {
	store := &fakeTaskStore{rows: []model.Task{
		{ID: "t1", Title: "Wipe counters", DueDate: "2024-03-01"},
		{ID: "t2", Title: "Empty bins", DueDate: "2024-03-02"},
	}}
	s := newSync(store, testAdmin)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tasks := s.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}

	seen := map[string]bool{}
	for _, task := range tasks {
		if seen[task.ID] {
			t.Errorf("duplicate id %s", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestLoad_FailureLeavesStateUnchanged(t *testing.T) {
	store := &fakeTaskStore{rows: []model.Task{{ID: "t1", Title: "Wipe counters"}}}
	s := newSync(store, testAdmin)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	store.mu.Lock()
	store.failList = true
	store.mu.Unlock()

	if err := s.Load(context.Background()); err == nil {
		t.Fatal("expected error from failing load")
	}
	if len(s.Tasks()) != 1 {
		t.Errorf("state should be stale but intact, got %d tasks", len(s.Tasks()))
	}
}

func TestCreate_PlaceholderVisibleImmediately(t *testing.T) {
	store := &fakeTaskStore{}
	s := newSync(store, testAdmin)

	id, err := s.Create(context.Background(), CreateTaskInput{Title: "Restock fridge", Category: constants.CategoryKitchen})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.HasPrefix(id, constants.PlaceholderPrefix) {
		t.Errorf("expected placeholder id, got %s", id)
	}

	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].ID != id {
		t.Fatalf("placeholder should be first in collection")
	}
	if tasks[0].DueDate != time.Now().UTC().Format("2006-01-02") {
		t.Errorf("expected today's date as default due date, got %s", tasks[0].DueDate)
	}
}

func TestCreate_ConvergesAfterReload(t *testing.T) {
	store := &fakeTaskStore{}
	s := newSync(store, testAdmin)

	id, err := s.Create(context.Background(), CreateTaskInput{Title: "Restock fridge", Category: constants.CategoryKitchen})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Wait for the background insert to land in the store.
	waitFor(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.rows) == 1
	})

	// A reload before the insert settles must keep the placeholder around;
	// once settled it must be superseded by the server row.
	waitFor(t, func() bool {
		if err := s.Load(context.Background()); err != nil {
			return false
		}
		tasks := s.Tasks()
		if len(tasks) != 1 {
			return false
		}
		return tasks[0].ID != id
	})

	task := s.Tasks()[0]
	if task.Title != "Restock fridge" || task.Category != constants.CategoryKitchen {
		t.Errorf("server row lost the create's fields: %+v", task)
	}
	if task.IsPlaceholder() {
		t.Errorf("confirmed task still looks like a placeholder: %s", task.ID)
	}
}

func TestCreate_LoadPreservesInFlightPlaceholder(t *testing.T) {
	store := &fakeTaskStore{}
	s := newSync(store, testAdmin)

	if _, err := s.Create(context.Background(), CreateTaskInput{Title: "Water plants"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Reload right away: the logical create must never vanish, and repeated
	// reloads must converge on exactly one entry for it.
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(s.Tasks()) == 0 {
		t.Fatal("in-flight create dropped by reload")
	}

	waitFor(t, func() bool {
		if err := s.Load(context.Background()); err != nil {
			return false
		}
		titles := 0
		for _, task := range s.Tasks() {
			if task.Title == "Water plants" {
				titles++
			}
		}
		return titles == 1
	})
}

func TestCreate_RequiresAdmin(t *testing.T) {
	store := &fakeTaskStore{}
	s := newSync(store, testEmployee)

	_, err := s.Create(context.Background(), CreateTaskInput{Title: "Nope"})
	if !errors.Is(err, errs.ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
	if len(s.Tasks()) != 0 {
		t.Error("rejected create must not touch state")
	}
}

func TestCreate_ValidatesTitle(t *testing.T) {
	s := newSync(&fakeTaskStore{}, testAdmin)

	if _, err := s.Create(context.Background(), CreateTaskInput{Title: "   "}); !errors.Is(err, errs.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
}

func TestCreate_FailureRemovesPlaceholderAndRestoresInput(t *testing.T) {
	store := &fakeTaskStore{failInsert: true}
	s := newSync(store, testAdmin)

	var (
		mu       sync.Mutex
		restored *CreateTaskInput
	)
	s.SetCreateFailureHandler(func(input CreateTaskInput, err error) {
		mu.Lock()
		restored = &input
		mu.Unlock()
	})

	input := CreateTaskInput{Title: "Clean microwave", Category: constants.CategoryKitchen, DueDate: "2024-03-05"}
	if _, err := s.Create(context.Background(), input); err != nil {
		t.Fatalf("create should not fail synchronously: %v", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return restored != nil
	})

	mu.Lock()
	if restored.Title != input.Title || restored.Category != input.Category || restored.DueDate != input.DueDate {
		t.Errorf("restored input does not match original: %+v", *restored)
	}
	mu.Unlock()

	if len(s.Tasks()) != 0 {
		t.Error("placeholder should be rolled back after remote failure")
	}
}

func TestToggle_EmployeeCompletionSignalExpires(t *testing.T) {
	empID := testEmployee.ID
	store := &fakeTaskStore{rows: []model.Task{{ID: "t1", Title: "Sort mail", AssignedToID: &empID}}}
	s := newSync(store, testEmployee)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := s.ToggleCompletion(context.Background(), "t1", false); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	if !s.CompletionSignal() {
		t.Fatal("expected completion signal after employee completes a task")
	}

	waitFor(t, func() bool { return !s.CompletionSignal() })
}

func TestToggle_AdminRaisesNoSignal(t *testing.T) {
	empID := testEmployee.ID
	store := &fakeTaskStore{rows: []model.Task{{ID: "t1", Title: "Sort mail", AssignedToID: &empID}}}
	s := newSync(store, testAdmin)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := s.ToggleCompletion(context.Background(), "t1", false); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	if s.CompletionSignal() {
		t.Error("admin toggles must not raise the completion signal")
	}
}

func TestToggle_FailureRollsBackViaReload(t *testing.T) {
	empID := testEmployee.ID
	store := &fakeTaskStore{
		rows:       []model.Task{{ID: "t1", Title: "Sort mail", AssignedToID: &empID, IsCompleted: false}},
		failUpdate: true,
	}
	s := newSync(store, testEmployee)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := s.ToggleCompletion(context.Background(), "t1", false); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	// Optimistic flip is visible first, then the forced reload restores the
	// authoritative value.
	waitFor(t, func() bool {
		tasks := s.Tasks()
		return len(tasks) == 1 && !tasks[0].IsCompleted
	})
}

func TestToggle_EmployeeCannotTouchOthersTask(t *testing.T) {
	otherID := "someone-else"
	store := &fakeTaskStore{rows: []model.Task{{ID: "t1", Title: "Sort mail", AssignedToID: &otherID}}}
	s := newSync(store, testEmployee)

	// Admin-filtered load would exclude it, so inject via an admin view.
	admin := newSync(store, testAdmin)
	if err := admin.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	s.mu.Lock()
	s.collection = admin.Tasks()
	s.mu.Unlock()

	if err := s.ToggleCompletion(context.Background(), "t1", false); !errors.Is(err, errs.ErrNotTaskAssignee) {
		t.Fatalf("expected ErrNotTaskAssignee, got %v", err)
	}
}

func TestDelete_RemovesImmediatelyAndRestoresOnFailure(t *testing.T) {
	store := &fakeTaskStore{
		rows:       []model.Task{{ID: "t1", Title: "Defrost freezer"}},
		failDelete: true,
	}
	s := newSync(store, testAdmin)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := s.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// Row disappears immediately, then the rollback reload brings it back
	// because the server still has it.
	waitFor(t, func() bool {
		tasks := s.Tasks()
		return len(tasks) == 1 && tasks[0].ID == "t1"
	})
}

func TestDelete_RequiresAdmin(t *testing.T) {
	empID := testEmployee.ID
	store := &fakeTaskStore{rows: []model.Task{{ID: "t1", AssignedToID: &empID}}}
	s := newSync(store, testEmployee)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := s.Delete(context.Background(), "t1"); !errors.Is(err, errs.ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
	if len(s.Tasks()) != 1 {
		t.Error("rejected delete must not touch state")
	}
}

func TestStart_ChangeNotificationTriggersReload(t *testing.T) {
	store := &fakeTaskStore{}
	users := &fakeUserStore{}
	notifier := notify.NewLocal()
	s := NewSyncService(store, users, notifier, staticIdentity{testAdmin}, 50*time.Millisecond)

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop()

	store.mu.Lock()
	store.rows = append(store.rows, model.Task{ID: "t1", Title: "Wipe counters"})
	store.mu.Unlock()

	if err := notifier.Publish(ctx, constants.TasksTable); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	waitFor(t, func() bool { return len(s.Tasks()) == 1 })
}
