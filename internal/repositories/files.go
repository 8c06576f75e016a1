package repositories

import (
	"context"
	"errors"

	"go-do-list/backend/internal/models"

	"gorm.io/gorm"
)

type TaskFileRepository struct {
	db *gorm.DB
}

func NewTaskFileRepository(db *gorm.DB) *TaskFileRepository {
	return &TaskFileRepository{db: db}
}

func (r *TaskFileRepository) ListByTask(ctx context.Context, taskID uint) ([]models.TaskFile, error) {
	files := []models.TaskFile{}
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id asc").Find(&files).Error
	return files, err
}

func (r *TaskFileRepository) Get(ctx context.Context, id uint) (models.TaskFile, error) {
	var file models.TaskFile
	err := r.db.WithContext(ctx).First(&file, id).Error
	return file, err
}

func (r *TaskFileRepository) ExistsByName(ctx context.Context, taskID uint, filename string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TaskFile{}).
		Where("task_id = ? AND filename = ?", taskID, filename).
		Count(&count).Error
	return count > 0, err
}

// Create inserts the row. A duplicate (task_id, filename) surfaces as
// gorm.ErrDuplicatedKey.
func (r *TaskFileRepository) Create(ctx context.Context, file *models.TaskFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// FindIngestedByPath returns any row for path that already carries an
// embedding id, or nil when there is none.
func (r *TaskFileRepository) FindIngestedByPath(ctx context.Context, path string) (*models.TaskFile, error) {
	var file models.TaskFile
	err := r.db.WithContext(ctx).
		Where("file_path = ? AND embedding_id IS NOT NULL AND embedding_id <> ''", path).
		Order("id asc").
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *TaskFileRepository) SetEmbeddingID(ctx context.Context, id uint, embeddingID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.TaskFile{}).
		Where("id = ?", id).
		Update("embedding_id", embeddingID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TaskFileRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.TaskFile{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
