package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"go-do-list/backend/internal/apperrors"
	"go-do-list/backend/internal/indexing"
	"go-do-list/backend/internal/logging"
	"go-do-list/backend/internal/models"
	"go-do-list/backend/internal/repositories"
)

type ProcessingService interface {
	ProcessTask(ctx context.Context, input models.ProcessTaskInput) (models.ProcessResult, error)
}

type ProcessingServiceImpl struct {
	tasks   *repositories.TaskRepository
	files   *repositories.TaskFileRepository
	ingest  FileService
	indexer indexing.Indexer
	log     logging.Logger
}

func NewProcessingService(
	tasks *repositories.TaskRepository,
	files *repositories.TaskFileRepository,
	ingest FileService,
	indexer indexing.Indexer,
	log logging.Logger,
) *ProcessingServiceImpl {
	return &ProcessingServiceImpl{
		tasks:   tasks,
		files:   files,
		ingest:  ingest,
		indexer: indexer,
		log:     log,
	}
}

// ProcessTask ingests any pending attachments of a task and asks the
// indexer a question over all of them.
func (s *ProcessingServiceImpl) ProcessTask(ctx context.Context, input models.ProcessTaskInput) (models.ProcessResult, error) {
	taskID, err := parseTaskID(input.TaskID)
	if err != nil {
		return models.ProcessResult{}, err
	}

	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return models.ProcessResult{}, notFoundOr(err, "process task", "task %d not found", taskID)
	}

	files, err := s.files.ListByTask(ctx, taskID)
	if err != nil {
		return models.ProcessResult{}, apperrors.Processing(err, "failed to load task files")
	}
	if len(files) == 0 {
		return models.ProcessResult{}, apperrors.Processing(nil, "no files attached to task")
	}

	contextIDs := make([]string, 0, len(files))
	seen := make(map[string]bool, len(files))
	for i := range files {
		if err := s.ingest.EnsureIngested(ctx, &files[i]); err != nil {
			return models.ProcessResult{}, err
		}
		id := *files[i].EmbeddingID
		if !seen[id] {
			seen[id] = true
			contextIDs = append(contextIDs, id)
		}
	}
	if len(contextIDs) == 0 {
		return models.ProcessResult{}, apperrors.Processing(nil, "no ingested files available for task")
	}

	description := describeTask(task)
	instructions := instructionsFor(input.TaskType)
	instructions = append(instructions, "Task Description: "+description)
	for _, f := range files {
		instructions = append(instructions, "Document to review: "+f.Filename)
	}

	question := strings.TrimSpace(input.Query)
	if question == "" {
		question = description
	}

	s.log.Info(ctx, "processing task",
		"task_id", taskID,
		"task_type", input.TaskType,
		"files", len(files),
	)

	answer, err := s.indexer.Query(ctx, indexing.Query{
		Instructions: instructions,
		ContextIDs:   contextIDs,
		Question:     question,
	})
	if err != nil {
		s.log.Error(ctx, "task processing failed", "task_id", taskID, "error", err)
		return models.ProcessResult{}, apperrors.Processing(err, "failed to process task")
	}

	return models.ProcessResult{Success: true, Response: answer}, nil
}

func parseTaskID(raw json.Number) (uint, error) {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return 0, apperrors.Validation("task_id is required")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, apperrors.Validation("invalid task_id %q", s)
	}
	return uint(n), nil
}

func describeTask(task models.Task) string {
	if notes := strings.TrimSpace(task.Notes); notes != "" {
		return task.Title + "\n\n" + notes
	}
	return task.Title
}
