package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-do-list/backend/internal/apperrors"
	"go-do-list/backend/internal/logging"
	"go-do-list/backend/internal/models"
	"go-do-list/backend/internal/repositories"
	"go-do-list/backend/internal/storage"
)

type TaskService interface {
	ListTasks(ctx context.Context, filter repositories.TaskFilter) ([]models.Task, error)
	GetTask(ctx context.Context, id uint) (models.Task, error)
	CreateTask(ctx context.Context, input models.CreateTaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, id uint, patch models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, id uint) error
}

type TaskServiceImpl struct {
	tasks   *repositories.TaskRepository
	folders *repositories.FolderRepository
	store   storage.FileStore
	log     logging.Logger
	now     func() time.Time
}

func NewTaskService(
	tasks *repositories.TaskRepository,
	folders *repositories.FolderRepository,
	store storage.FileStore,
	log logging.Logger,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		tasks:   tasks,
		folders: folders,
		store:   store,
		log:     log,
		now:     time.Now,
	}
}

// ParseTaskFilter reads the folder_id query parameter: empty lists every
// task, "unassigned" lists tasks without a folder, a positive integer lists
// one folder.
func ParseTaskFilter(raw string) (repositories.TaskFilter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return repositories.TaskFilter{}, nil
	}
	if strings.EqualFold(raw, models.UnassignedFolder) {
		return repositories.TaskFilter{Unassigned: true}, nil
	}

	id, err := models.ParseFolderID(raw)
	if err != nil || id == nil {
		return repositories.TaskFilter{}, apperrors.Validation("invalid folder_id %q", raw)
	}
	return repositories.TaskFilter{FolderID: id}, nil
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, filter repositories.TaskFilter) ([]models.Task, error) {
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, id uint) (models.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return models.Task{}, notFoundOr(err, "get task", "task %d not found", id)
	}
	return task, nil
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, input models.CreateTaskInput) (models.Task, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return models.Task{}, apperrors.Validation("title is required")
	}
	if err := s.checkFolder(ctx, input.FolderID.ID); err != nil {
		return models.Task{}, err
	}

	createdAt := s.now().UTC()
	if input.CreatedAt != nil {
		createdAt = input.CreatedAt.UTC()
	}

	task := models.Task{
		FolderID:    input.FolderID.ID,
		Title:       strings.TrimSpace(*input.Title),
		Completed:   input.Completed,
		IsImportant: input.IsImportant,
		Notes:       input.Notes,
		DueDate:     input.DueDate,
		CreatedAt:   createdAt,
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, id uint, patch models.TaskPatch) (models.Task, error) {
	if patch.Empty() {
		return models.Task{}, apperrors.Validation("no valid fields to update")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Task{}, apperrors.Validation("title must not be empty")
	}

	task, err := s.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if patch.FolderID.Set {
		if err := s.checkFolder(ctx, patch.FolderID.ID); err != nil {
			return models.Task{}, err
		}
	}

	patch.Apply(&task)
	if err := s.tasks.Save(ctx, &task); err != nil {
		return models.Task{}, notFoundOr(err, "update task", "task %d not found", id)
	}
	return task, nil
}

// DeleteTask removes the task and its attachment rows, then the attachment
// bytes. Byte removal failures are logged and do not fail the call.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id uint) error {
	files, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return notFoundOr(err, "delete task", "task %d not found", id)
	}

	cleanupCtx := context.WithoutCancel(ctx)
	for _, f := range files {
		if err := s.store.Remove(cleanupCtx, f.FilePath); err != nil {
			s.log.Warn(ctx, "failed to remove attachment bytes", "task_id", id, "file_id", f.ID, "path", f.FilePath, "error", err)
		}
	}
	return nil
}

func (s *TaskServiceImpl) checkFolder(ctx context.Context, folderID *uint) error {
	if folderID == nil {
		return nil
	}
	exists, err := s.folders.Exists(ctx, *folderID)
	if err != nil {
		return fmt.Errorf("check folder: %w", err)
	}
	if !exists {
		return apperrors.Validation("folder %d does not exist", *folderID)
	}
	return nil
}
