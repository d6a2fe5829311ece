package service

import (
	"context"

	"github.com/sessiontodo/todo/database"
	"github.com/sessiontodo/todo/database/model"
	"github.com/sessiontodo/todo/web/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskService reads and changes the tasks of a user. Every change goes
// through mutate, which enforces ownership.
type TaskService struct {
	db        *gorm.DB
	pageLimit int
}

func NewTaskService(db *gorm.DB, pageLimit int) *TaskService {
	return &TaskService{db: db, pageLimit: pageLimit}
}

func errRetry() error {
	return entity.NewError(entity.KindNotFoundOrMalformed, "todos.retry")
}

func storeError(err error) error {
	return entity.WrapError(entity.KindStore, "errors.database", err)
}

// List returns all tasks of username in insertion order.
func (s *TaskService) List(ctx context.Context, username string) ([]model.Task, error) {
	var tasks []model.Task
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("id").
		Find(&tasks).
		Error
	if err != nil {
		return nil, storeError(err)
	}
	return tasks, nil
}

// ListPage returns at most the page limit of tasks after skipping skip.
func (s *TaskService) ListPage(ctx context.Context, username string, skip int) ([]model.Task, error) {
	if skip < 0 {
		skip = 0
	}
	var tasks []model.Task
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("id").
		Offset(skip).
		Limit(s.pageLimit).
		Find(&tasks).
		Error
	if err != nil {
		return nil, storeError(err)
	}
	return tasks, nil
}

// Create stores a new, incomplete task owned by username.
func (s *TaskService) Create(ctx context.Context, username string, form *entity.TaskForm) (*model.Task, error) {
	if err := form.CheckTaskName(); err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, entity.WrapError(entity.KindInternal, "errors.internal", err)
	}
	task := &model.Task{
		Id:          id.String(),
		TaskName:    form.TaskName,
		IsCompleted: false,
		Username:    username,
	}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, storeError(err)
	}
	return task, nil
}

// ToggleState flips the completion flag of a task owned by username.
func (s *TaskService) ToggleState(ctx context.Context, id, username string) (*model.Task, error) {
	return s.mutate(ctx, id, username, func(tx *gorm.DB, task *model.Task) error {
		task.IsCompleted = !task.IsCompleted
		return updateOwned(tx, task, "is_completed", task.IsCompleted)
	})
}

// Rename changes the name of a task owned by username.
func (s *TaskService) Rename(ctx context.Context, form *entity.TaskForm, username string) (*model.Task, error) {
	if form.Id == "" {
		return nil, errRetry()
	}
	if err := form.CheckTaskName(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, form.Id, username, func(tx *gorm.DB, task *model.Task) error {
		task.TaskName = form.TaskName
		return updateOwned(tx, task, "task_name", task.TaskName)
	})
}

// Delete removes a task owned by username.
func (s *TaskService) Delete(ctx context.Context, id, username string) error {
	_, err := s.mutate(ctx, id, username, func(tx *gorm.DB, task *model.Task) error {
		res := tx.Where("id = ? AND username = ?", task.Id, task.Username).Delete(&model.Task{})
		if res.Error != nil {
			return storeError(res.Error)
		}
		if res.RowsAffected == 0 {
			return errRetry()
		}
		return nil
	})
	return err
}

// mutate loads the task, rejects callers that do not own it and runs apply
// in the same transaction. A missing id and an unknown id fail identically.
func (s *TaskService) mutate(ctx context.Context, id, username string, apply func(tx *gorm.DB, task *model.Task) error) (*model.Task, error) {
	if id == "" {
		return nil, errRetry()
	}

	task := &model.Task{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).First(task).Error
		if database.IsNotFound(err) {
			return errRetry()
		} else if err != nil {
			return storeError(err)
		}

		if task.Username != username {
			return entity.NewError(entity.KindOwnership, "todos.notOwner")
		}
		return apply(tx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func updateOwned(tx *gorm.DB, task *model.Task, column string, value any) error {
	res := tx.Model(&model.Task{}).
		Where("id = ? AND username = ?", task.Id, task.Username).
		Update(column, value)
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return errRetry()
	}
	return nil
}
