package repository

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"gorm.io/gorm"

	"github.com/shahpalash10/chore-Mate/internal/constants"
	model "github.com/shahpalash10/chore-Mate/internal/models"
	"github.com/shahpalash10/chore-Mate/internal/remote"
)

// TaskRepository is the tasks row store of the backend stand-in. Every
// successful mutation publishes a change event on the tasks table, the same
// way the hosted service's realtime channel would.
type TaskRepository struct {
	db       *gorm.DB
	notifier remote.Notifier
}

func NewTaskRepository(db *gorm.DB, notifier remote.Notifier) *TaskRepository {
	return &TaskRepository{db: db, notifier: notifier}
}

func (r *TaskRepository) ListTasks(ctx context.Context, filter remote.TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).
		Preload("AssignedTo").
		Preload("CreatedBy").
		Order("is_completed asc").
		Order("due_date asc").
		Order("created_at desc")

	if filter.AssignedToID != "" {
		query = query.Where("assigned_to_id = ?", filter.AssignedToID)
	}

	var tasks []model.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) InsertTask(ctx context.Context, draft remote.TaskDraft) (*model.Task, error) {
	now := time.Now().UTC()
	task := &model.Task{
		ID:           uuid.NewString(),
		Title:        draft.Title,
		Category:     constants.Category(draft.Category),
		AssignedToID: draft.AssignedToID,
		CreatedByID:  draft.CreatedByID,
		DueDate:      draft.DueDate,
		DueTime:      draft.DueTime,
		IsCompleted:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}

	r.publish(ctx)
	return task, nil
}

func (r *TaskRepository) SetTaskCompleted(ctx context.Context, id string, completed bool) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_completed": completed,
			"updated_at":   time.Now().UTC(),
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return remote.ErrNotFound
	}

	r.publish(ctx)
	return nil
}

// DeleteTask is idempotent: deleting a row that is already gone is not an
// error, the next reload simply omits it.
func (r *TaskRepository) DeleteTask(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected > 0 {
		r.publish(ctx)
	}
	return nil
}

func (r *TaskRepository) publish(ctx context.Context) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Publish(ctx, constants.TasksTable); err != nil {
		log.Printf("failed to publish tasks change: %v", err)
	}
}
