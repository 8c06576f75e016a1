package repositories

import (
	"context"

	"go-do-list/backend/internal/models"

	"gorm.io/gorm"
)

// TaskFilter narrows a task listing. The zero value lists every task.
type TaskFilter struct {
	FolderID   *uint
	Unassigned bool
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Order("id asc")
	switch {
	case filter.FolderID != nil:
		query = query.Where("folder_id = ?", *filter.FolderID)
	case filter.Unassigned:
		query = query.Where("folder_id IS NULL")
	}

	tasks := []models.Task{}
	err := query.Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Get(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).First(&task, id).Error
	return task, err
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Save writes every mutable column of task, including zero values and nulls.
func (r *TaskRepository) Save(ctx context.Context, task *models.Task) error {
	result := r.db.WithContext(ctx).
		Model(task).
		Select("folder_id", "title", "completed", "is_important", "notes", "due_date").
		Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the task and its file rows in one transaction and returns
// the removed rows so their bytes can be cleaned up.
func (r *TaskRepository) Delete(ctx context.Context, id uint) ([]models.TaskFile, error) {
	var files []models.TaskFile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Select("id").First(&task, id).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Order("id asc").Find(&files).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskFile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
