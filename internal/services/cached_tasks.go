package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-do-list/backend/internal/cache"
	"go-do-list/backend/internal/logging"
	"go-do-list/backend/internal/models"
	"go-do-list/backend/internal/repositories"
)

const (
	foldersAllKey       = "folders:all"
	tasksAllKey         = "tasks:all"
	tasksUnassignedKey  = "tasks:unassigned"
	tasksPattern        = "tasks:*"
	foldersPattern      = "folders:*"
	tasksByFolderKeyFmt = "tasks:folder:%d"
)

// CachedTaskService caches folder and task listings in front of the folder
// and task services. Every write drops the affected listings. A failing
// cache is logged and otherwise ignored.
type CachedTaskService struct {
	folders   FolderService
	tasks     TaskService
	cache     cache.Cache
	taskTTL   time.Duration
	folderTTL time.Duration
	log       logging.Logger
}

func NewCachedTaskService(
	folders FolderService,
	tasks TaskService,
	cacheInstance cache.Cache,
	taskTTL, folderTTL time.Duration,
	log logging.Logger,
) *CachedTaskService {
	return &CachedTaskService{
		folders:   folders,
		tasks:     tasks,
		cache:     cacheInstance,
		taskTTL:   taskTTL,
		folderTTL: folderTTL,
		log:       log,
	}
}

func (s *CachedTaskService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	var cached []models.Folder
	if s.lookup(ctx, foldersAllKey, &cached) {
		return cached, nil
	}

	folders, err := s.folders.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, foldersAllKey, folders, s.folderTTL)
	return folders, nil
}

func (s *CachedTaskService) CreateFolder(ctx context.Context, input models.CreateFolderInput) (models.Folder, error) {
	folder, err := s.folders.CreateFolder(ctx, input)
	if err != nil {
		return folder, err
	}
	s.invalidate(ctx, foldersPattern)
	return folder, nil
}

// DeleteFolder also drops task listings since the folder's tasks become
// unassigned.
func (s *CachedTaskService) DeleteFolder(ctx context.Context, id uint) error {
	if err := s.folders.DeleteFolder(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, foldersPattern, tasksPattern)
	return nil
}

func (s *CachedTaskService) ListTasks(ctx context.Context, filter repositories.TaskFilter) ([]models.Task, error) {
	key := taskListKey(filter)

	var cached []models.Task
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	tasks, err := s.tasks.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, tasks, s.taskTTL)
	return tasks, nil
}

func (s *CachedTaskService) GetTask(ctx context.Context, id uint) (models.Task, error) {
	return s.tasks.GetTask(ctx, id)
}

func (s *CachedTaskService) CreateTask(ctx context.Context, input models.CreateTaskInput) (models.Task, error) {
	task, err := s.tasks.CreateTask(ctx, input)
	if err != nil {
		return task, err
	}
	s.invalidate(ctx, tasksPattern)
	return task, nil
}

func (s *CachedTaskService) UpdateTask(ctx context.Context, id uint, patch models.TaskPatch) (models.Task, error) {
	task, err := s.tasks.UpdateTask(ctx, id, patch)
	if err != nil {
		return task, err
	}
	s.invalidate(ctx, tasksPattern)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(ctx context.Context, id uint) error {
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, tasksPattern)
	return nil
}

func taskListKey(filter repositories.TaskFilter) string {
	switch {
	case filter.Unassigned:
		return tasksUnassignedKey
	case filter.FolderID != nil:
		return fmt.Sprintf(tasksByFolderKeyFmt, *filter.FolderID)
	default:
		return tasksAllKey
	}
}

func (s *CachedTaskService) lookup(ctx context.Context, key string, dest interface{}) bool {
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn(ctx, "cache read failed", "key", key, "error", err)
	}
	return false
}

func (s *CachedTaskService) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.log.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
}

func (s *CachedTaskService) invalidate(ctx context.Context, patterns ...string) {
	for _, pattern := range patterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			s.log.Warn(ctx, "cache invalidation failed", "pattern", pattern, "error", err)
		}
	}
}
