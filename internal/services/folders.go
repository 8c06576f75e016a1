package services

import (
	"context"
	"fmt"
	"strings"

	"go-do-list/backend/internal/apperrors"
	"go-do-list/backend/internal/models"
	"go-do-list/backend/internal/repositories"
)

type FolderService interface {
	ListFolders(ctx context.Context) ([]models.Folder, error)
	CreateFolder(ctx context.Context, input models.CreateFolderInput) (models.Folder, error)
	DeleteFolder(ctx context.Context, id uint) error
}

type FolderServiceImpl struct {
	folders *repositories.FolderRepository
}

func NewFolderService(folders *repositories.FolderRepository) *FolderServiceImpl {
	return &FolderServiceImpl{folders: folders}
}

func (s *FolderServiceImpl) ListFolders(ctx context.Context) ([]models.Folder, error) {
	folders, err := s.folders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

func (s *FolderServiceImpl) CreateFolder(ctx context.Context, input models.CreateFolderInput) (models.Folder, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Folder{}, apperrors.Validation("name is required")
	}

	folder := models.Folder{Name: name}
	if err := s.folders.Create(ctx, &folder); err != nil {
		return models.Folder{}, fmt.Errorf("create folder: %w", err)
	}
	return folder, nil
}

// DeleteFolder removes the folder. Its tasks are kept and become unassigned.
func (s *FolderServiceImpl) DeleteFolder(ctx context.Context, id uint) error {
	if err := s.folders.Delete(ctx, id); err != nil {
		return notFoundOr(err, "delete folder", "folder %d not found", id)
	}
	return nil
}
