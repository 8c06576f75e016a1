package repositories

import (
	"context"

	"go-do-list/backend/internal/models"

	"gorm.io/gorm"
)

type FolderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) List(ctx context.Context) ([]models.Folder, error) {
	folders := []models.Folder{}
	err := r.db.WithContext(ctx).Order("id asc").Find(&folders).Error
	return folders, err
}

func (r *FolderRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Folder{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	return r.db.WithContext(ctx).Create(folder).Error
}

// Delete unassigns every task in the folder and removes it, atomically.
// Returns gorm.ErrRecordNotFound when the folder does not exist.
func (r *FolderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("folder_id = ?", id).
			Update("folder_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Folder{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
