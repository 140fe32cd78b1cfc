package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/client/repositories/uploads"
)

type HistoryService interface {
	Record(ctx context.Context, rec *models.UploadRecord) error
	Recent(ctx context.Context, limit int) ([]*models.UploadRecord, error)
	Clear(ctx context.Context) error
}

type historyService struct {
	repo uploads.Repository
	now  func() time.Time
}

func NewHistoryService(repo uploads.Repository) HistoryService {
	return &historyService{repo: repo, now: time.Now}
}

func (s *historyService) Record(ctx context.Context, rec *models.UploadRecord) error {
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = s.now()
	}
	return s.repo.Add(ctx, rec)
}

func (s *historyService) Recent(ctx context.Context, limit int) ([]*models.UploadRecord, error) {
	return s.repo.Recent(ctx, limit)
}

func (s *historyService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
