package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adeshpande/finbook/internal/database"
	"github.com/adeshpande/finbook/internal/models"
)

// AttachmentRepository handles attachment (file blob) database operations.
type AttachmentRepository struct {
	db database.DBTX
}

// NewAttachmentRepository creates a new AttachmentRepository.
func NewAttachmentRepository(db database.DBTX) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Insert stores a new attachment. The store assigns the ID.
func (r *AttachmentRepository) Insert(ctx context.Context, att *models.Attachment) error {
	if att.UploadedAt.IsZero() {
		att.UploadedAt = time.Now().UTC()
	}
	att.Size = int64(len(att.Content))

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO files (owner_id, owner_kind, name, content, size, content_type, uploaded_at, is_deleted, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, NULL)
	`, att.OwnerID, att.OwnerKind, att.Name, att.Content, att.Size, att.ContentType, att.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to insert attachment: %w", err)
	}

	att.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new attachment id: %w", err)
	}
	return nil
}

// GetByID retrieves an attachment including its content.
func (r *AttachmentRepository) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	var att models.Attachment
	var deletedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, owner_kind, name, content, size, content_type, uploaded_at, is_deleted, deleted_at
		FROM files WHERE id = ?
	`, id).Scan(&att.ID, &att.OwnerID, &att.OwnerKind, &att.Name, &att.Content,
		&att.Size, &att.ContentType, &att.UploadedAt, &att.IsDeleted, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attachment %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}

	if deletedAt.Valid {
		t := deletedAt.Time
		att.DeletedAt = &t
	}
	return &att, nil
}

// ListActiveByOwner retrieves non-deleted attachment metadata (no content)
// for one owning record.
func (r *AttachmentRepository) ListActiveByOwner(
	ctx context.Context,
	ownerID int64,
	ownerKind models.RecordKind,
) ([]models.Attachment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, owner_kind, name, size, content_type, uploaded_at, is_deleted, deleted_at
		FROM files
		WHERE owner_id = ? AND owner_kind = ? AND is_deleted = 0
	`, ownerID, ownerKind)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	return scanAttachmentMeta(rows)
}

// ListBin retrieves metadata for all soft-deleted attachments, newest
// deletion first.
func (r *AttachmentRepository) ListBin(ctx context.Context) ([]models.Attachment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, owner_kind, name, size, content_type, uploaded_at, is_deleted, deleted_at
		FROM files
		WHERE is_deleted = 1
		ORDER BY deleted_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bin: %w", err)
	}
	defer rows.Close()

	return scanAttachmentMeta(rows)
}

// MarkDeleted sets the tombstone on an attachment.
func (r *AttachmentRepository) MarkDeleted(ctx context.Context, id int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE files SET is_deleted = 1, deleted_at = ? WHERE id = ?
	`, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark attachment deleted: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("attachment %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// ClearDeleted removes the tombstone from an attachment.
func (r *AttachmentRepository) ClearDeleted(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE files SET is_deleted = 0, deleted_at = NULL WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to clear attachment tombstone: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("attachment %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Rename updates the display name of an attachment.
func (r *AttachmentRepository) Rename(ctx context.Context, id int64, name string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE files SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename attachment: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("attachment %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Delete removes an attachment row entirely.
func (r *AttachmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("attachment %d: %w", id, models.ErrNotFound)
	}
	return nil
}

func scanAttachmentMeta(rows *sql.Rows) ([]models.Attachment, error) {
	var attachments []models.Attachment
	for rows.Next() {
		var att models.Attachment
		var deletedAt sql.NullTime
		if err := rows.Scan(
			&att.ID, &att.OwnerID, &att.OwnerKind, &att.Name, &att.Size,
			&att.ContentType, &att.UploadedAt, &att.IsDeleted, &deletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			att.DeletedAt = &t
		}
		attachments = append(attachments, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}
	return attachments, nil
}
