package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-do-list/backend/internal/apperrors"
	"go-do-list/backend/internal/indexing"
	"go-do-list/backend/internal/logging"
	"go-do-list/backend/internal/models"
	"go-do-list/backend/internal/repositories"
	"go-do-list/backend/internal/storage"

	"gorm.io/gorm"
)

type FileService interface {
	UploadFile(ctx context.Context, taskID uint, filename string, body io.Reader) (models.TaskFile, error)
	ListFiles(ctx context.Context, taskID uint) ([]models.TaskFile, error)
	DownloadFile(ctx context.Context, fileID uint) (*Download, error)
	DeleteFile(ctx context.Context, fileID uint) error
	EnsureIngested(ctx context.Context, file *models.TaskFile) error
}

// Download is an open attachment. Callers must close Body.
type Download struct {
	File models.TaskFile
	Size int64
	Body io.ReadCloser
}

type FileServiceImpl struct {
	files    *repositories.TaskFileRepository
	tasks    *repositories.TaskRepository
	store    storage.FileStore
	indexer  indexing.Indexer
	maxBytes int64
	log      logging.Logger
}

func NewFileService(
	files *repositories.TaskFileRepository,
	tasks *repositories.TaskRepository,
	store storage.FileStore,
	indexer indexing.Indexer,
	maxBytes int64,
	log logging.Logger,
) *FileServiceImpl {
	return &FileServiceImpl{
		files:    files,
		tasks:    tasks,
		store:    store,
		indexer:  indexer,
		maxBytes: maxBytes,
		log:      log,
	}
}

// UploadFile stores a PDF attachment and ingests it. The row is inserted
// before the bytes are written so the (task_id, filename) unique index
// decides concurrent duplicate uploads. Any failure after the insert removes
// both the row and the bytes.
func (s *FileServiceImpl) UploadFile(ctx context.Context, taskID uint, filename string, body io.Reader) (models.TaskFile, error) {
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		return models.TaskFile{}, notFoundOr(err, "upload file", "task %d not found", taskID)
	}

	if strings.TrimSpace(filename) == "" {
		return models.TaskFile{}, apperrors.Validation("no file selected")
	}
	if !storage.HasPDFExtension(filename) {
		return models.TaskFile{}, apperrors.Validation("file type not allowed")
	}
	name := storage.SanitizeFilename(filename)
	if name == "" || !storage.HasPDFExtension(name) {
		return models.TaskFile{}, apperrors.Validation("invalid filename %q", filename)
	}

	content, isPDF, err := storage.SniffPDF(body)
	if err != nil {
		return models.TaskFile{}, s.readError(err)
	}
	if !isPDF {
		return models.TaskFile{}, apperrors.Validation("file content is not a PDF")
	}

	exists, err := s.files.ExistsByName(ctx, taskID, name)
	if err != nil {
		return models.TaskFile{}, fmt.Errorf("check duplicate file: %w", err)
	}
	if exists {
		return models.TaskFile{}, apperrors.Conflict("file %s already exists for this task", name)
	}

	file := models.TaskFile{
		TaskID:   taskID,
		Filename: name,
		FilePath: storage.Key(taskID, name),
	}
	if err := s.files.Create(ctx, &file); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.TaskFile{}, apperrors.Conflict("file %s already exists for this task", name)
		}
		return models.TaskFile{}, fmt.Errorf("create file record: %w", err)
	}

	n, err := s.store.Save(ctx, file.FilePath, io.LimitReader(content, s.maxBytes+1))
	switch {
	case err != nil:
		s.discard(ctx, file)
		if errors.Is(err, context.Canceled) {
			return models.TaskFile{}, err
		}
		return models.TaskFile{}, s.readError(err)
	case n > s.maxBytes:
		s.discard(ctx, file)
		return models.TaskFile{}, apperrors.Validation("file exceeds the %d byte upload limit", s.maxBytes)
	}

	if err := s.EnsureIngested(ctx, &file); err != nil {
		s.discard(ctx, file)
		return models.TaskFile{}, err
	}

	s.log.Info(ctx, "file uploaded", "task_id", taskID, "file_id", file.ID, "filename", name, "bytes", n)
	return file, nil
}

// EnsureIngested gives file an embedding id. A file whose path was already
// ingested reuses that id without calling the indexer.
func (s *FileServiceImpl) EnsureIngested(ctx context.Context, file *models.TaskFile) error {
	if file.Ingested() {
		return nil
	}

	existing, err := s.files.FindIngestedByPath(ctx, file.FilePath)
	if err != nil {
		return apperrors.Processing(err, "failed to look up ingestion state for %s", file.Filename)
	}

	var embeddingID string
	if existing != nil {
		embeddingID = *existing.EmbeddingID
	} else {
		embeddingID, err = s.ingest(ctx, *file)
		if err != nil {
			return err
		}
	}

	if err := s.files.SetEmbeddingID(ctx, file.ID, embeddingID); err != nil {
		return apperrors.Processing(err, "failed to record ingestion of %s", file.Filename)
	}
	file.EmbeddingID = &embeddingID
	return nil
}

func (s *FileServiceImpl) ingest(ctx context.Context, file models.TaskFile) (string, error) {
	body, _, err := s.store.Open(ctx, file.FilePath)
	if err != nil {
		return "", apperrors.Processing(err, "failed to read %s", file.Filename)
	}
	defer body.Close()

	id, err := s.indexer.Ingest(ctx, indexing.Document{
		Path:     file.FilePath,
		Filename: file.Filename,
		TaskID:   file.TaskID,
		Body:     body,
	})
	if err != nil {
		s.log.Error(ctx, "document ingestion failed", "task_id", file.TaskID, "file_id", file.ID, "error", err)
		return "", apperrors.Processing(err, "failed to ingest %s", file.Filename)
	}
	return id, nil
}

func (s *FileServiceImpl) ListFiles(ctx context.Context, taskID uint) ([]models.TaskFile, error) {
	files, err := s.files.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (s *FileServiceImpl) DownloadFile(ctx context.Context, fileID uint) (*Download, error) {
	file, err := s.files.Get(ctx, fileID)
	if err != nil {
		return nil, notFoundOr(err, "download file", "file %d not found", fileID)
	}

	body, size, err := s.store.Open(ctx, file.FilePath)
	if errors.Is(err, storage.ErrNotExist) {
		s.log.Warn(ctx, "attachment bytes missing", "file_id", fileID, "path", file.FilePath)
		return nil, apperrors.NotFound("file %d not found", fileID)
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return &Download{File: file, Size: size, Body: body}, nil
}

// DeleteFile removes the row, then the bytes. Missing bytes are tolerated.
func (s *FileServiceImpl) DeleteFile(ctx context.Context, fileID uint) error {
	file, err := s.files.Get(ctx, fileID)
	if err != nil {
		return notFoundOr(err, "delete file", "file %d not found", fileID)
	}

	if err := s.files.Delete(ctx, fileID); err != nil {
		return notFoundOr(err, "delete file", "file %d not found", fileID)
	}

	if err := s.store.Remove(context.WithoutCancel(ctx), file.FilePath); err != nil {
		s.log.Warn(ctx, "failed to remove attachment bytes", "file_id", fileID, "path", file.FilePath, "error", err)
	}
	return nil
}

// discard undoes a partially completed upload. It runs even when the
// request context is already cancelled.
func (s *FileServiceImpl) discard(ctx context.Context, file models.TaskFile) {
	cleanupCtx := context.WithoutCancel(ctx)
	if err := s.files.Delete(cleanupCtx, file.ID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Error(ctx, "failed to remove file record", "file_id", file.ID, "error", err)
	}
	if err := s.store.Remove(cleanupCtx, file.FilePath); err != nil {
		s.log.Error(ctx, "failed to remove attachment bytes", "file_id", file.ID, "path", file.FilePath, "error", err)
	}
}

func (s *FileServiceImpl) readError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.Validation("file exceeds the %d byte upload limit", maxErr.Limit)
	}
	return fmt.Errorf("read upload: %w", err)
}
