package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
)

var ErrEmptyFolderName = errors.New("folder name required")

type FolderService interface {
	List(ctx context.Context, parentID string) ([]models.Folder, error)
	Create(ctx context.Context, name, parentID string) (*models.Folder, error)
	Delete(ctx context.Context, id string) error
}

type folderService struct {
	client client.Client
}

func NewFolderService(c client.Client) FolderService {
	return &folderService{client: c}
}

func (s *folderService) List(ctx context.Context, parentID string) ([]models.Folder, error) {
	return s.client.ListFolders(ctx, parentID)
}

func (s *folderService) Create(ctx context.Context, name, parentID string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyFolderName
	}
	return s.client.CreateFolder(ctx, name, parentID)
}

func (s *folderService) Delete(ctx context.Context, id string) error {
	return s.client.DeleteFolder(ctx, id)
}
