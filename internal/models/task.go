package models

import (
	"time"
)

type Folder struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`
}

type Task struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FolderID    *uint     `json:"folder_id" gorm:"index"`
	Title       string    `json:"title" gorm:"not null"`
	Completed   bool      `json:"completed" gorm:"not null"`
	IsImportant bool      `json:"isImportant" gorm:"column:is_important;not null"`
	Notes       string    `json:"notes"`
	DueDate     *string   `json:"dueDate" gorm:"column:due_date"`
	CreatedAt   time.Time `json:"createdAt" gorm:"column:created_at;not null"`

	Folder *Folder    `json:"-" gorm:"foreignKey:FolderID;constraint:OnDelete:SET NULL"`
	Files  []TaskFile `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

type TaskFile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TaskID      uint      `json:"task_id" gorm:"not null;uniqueIndex:idx_task_files_task_filename"`
	Filename    string    `json:"filename" gorm:"not null;uniqueIndex:idx_task_files_task_filename"`
	FilePath    string    `json:"file_path" gorm:"not null;index"`
	EmbeddingID *string   `json:"embedding_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f TaskFile) Ingested() bool {
	return f.EmbeddingID != nil && *f.EmbeddingID != ""
}

// All returns every persisted model in dependency order, for migrations.
func All() []interface{} {
	return []interface{}{&Folder{}, &Task{}, &TaskFile{}}
}
