// Package uploads keeps a local history of finished uploads so the shell
// can show what happened after tasks left the queue.
package uploads

import (
	"context"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
)

type Repository interface {
	// Add records a finished upload. Re-adding the same ID overwrites it.
	Add(ctx context.Context, rec *models.UploadRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*models.UploadRecord, error)

	Clear(ctx context.Context) error
}
