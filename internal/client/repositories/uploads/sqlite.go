package uploads

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *SQLiteRepository) Add(ctx context.Context, rec *models.UploadRecord) error {
	query := `INSERT INTO upload_history (id, filename, size, folder_id, status, message, remote_id, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET filename = excluded.filename,
				size = excluded.size,
				folder_id = excluded.folder_id,
				status = excluded.status,
				message = excluded.message,
				remote_id = excluded.remote_id,
				finished_at = excluded.finished_at
	`
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.Filename, rec.Size,
		nullable(rec.FolderID), rec.Status, nullable(rec.Message), nullable(rec.RemoteID), rec.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to add upload record: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]*models.UploadRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, filename, size, folder_id, status, message, remote_id, finished_at
			FROM upload_history ORDER BY finished_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error selecting upload history: %w", err)
	}
	defer rows.Close()

	var result []*models.UploadRecord
	for rows.Next() {
		var (
			rec                         models.UploadRecord
			folderID, message, remoteID sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Size, &folderID, &rec.Status, &message, &remoteID, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload record: %w", err)
		}
		rec.FolderID = folderID.String
		rec.Message = message.String
		rec.RemoteID = remoteID.String
		result = append(result, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM upload_history`); err != nil {
		return fmt.Errorf("failed to clear upload history: %w", err)
	}
	return nil
}
