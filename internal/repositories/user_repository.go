package repository

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/shahpalash10/chore-Mate/internal/constants"
	model "github.com/shahpalash10/chore-Mate/internal/models"
	"github.com/shahpalash10/chore-Mate/internal/remote"
)

type UserRepository struct {
	db       *gorm.DB
	notifier remote.Notifier
}

func NewUserRepository(db *gorm.DB, notifier remote.Notifier) *UserRepository {
	return &UserRepository{db: db, notifier: notifier}
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("name").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, remote.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) InsertUser(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	if r.notifier != nil {
		if err := r.notifier.Publish(ctx, constants.UsersTable); err != nil {
			log.Printf("failed to publish users change: %v", err)
		}
	}
	return nil
}
