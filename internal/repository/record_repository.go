// Package repository provides database access for domain entities.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/adeshpande/finbook/internal/database"
	"github.com/adeshpande/finbook/internal/models"
)

// RecordRepository handles financial record database operations.
type RecordRepository struct {
	db database.DBTX
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(db database.DBTX) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create adds a new record. The store assigns the ID.
func (r *RecordRepository) Create(ctx context.Context, rec *models.Record) error {
	if !rec.Kind.Valid() {
		return fmt.Errorf("unknown record kind %q: %w", rec.Kind, models.ErrValidation)
	}
	if rec.EntryCurrency == "" {
		rec.EntryCurrency = models.BaseCurrency
	}

	now := time.Now().UTC()
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = now
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now

	ids, err := marshalAttachmentIDs(rec.AttachmentIDs)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO records (kind, amount, entry_currency, category, subcategory, description, occurred_at, due_at, attachment_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Kind, rec.Amount, rec.EntryCurrency, rec.Category, rec.Subcategory,
		rec.Description, rec.OccurredAt, rec.DueAt, ids, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}

	rec.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new record id: %w", err)
	}
	return nil
}

// GetByID retrieves a record by ID.
func (r *RecordRepository) GetByID(ctx context.Context, id int64) (*models.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, kind, amount, entry_currency, category, subcategory, description, occurred_at, due_at, attachment_ids, created_at, updated_at
		FROM records WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// ListByKind retrieves all records of one kind, newest occurrence first.
func (r *RecordRepository) ListByKind(ctx context.Context, kind models.RecordKind) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, amount, entry_currency, category, subcategory, description, occurred_at, due_at, attachment_ids, created_at, updated_at
		FROM records WHERE kind = ?
		ORDER BY occurred_at DESC, id DESC
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

// Update modifies an existing record.
func (r *RecordRepository) Update(ctx context.Context, rec *models.Record) error {
	ids, err := marshalAttachmentIDs(rec.AttachmentIDs)
	if err != nil {
		return err
	}

	rec.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE records SET
			amount = ?,
			entry_currency = ?,
			category = ?,
			subcategory = ?,
			description = ?,
			occurred_at = ?,
			due_at = ?,
			attachment_ids = ?,
			updated_at = ?
		WHERE id = ?
	`, rec.Amount, rec.EntryCurrency, rec.Category, rec.Subcategory, rec.Description,
		rec.OccurredAt, rec.DueAt, ids, rec.UpdatedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %d: %w", rec.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes a record by ID.
func (r *RecordRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// AttachmentIDs returns the record's ordered attachment reference list.
func (r *RecordRepository) AttachmentIDs(ctx context.Context, id int64) ([]int64, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT attachment_ids FROM records WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment ids: %w", err)
	}
	return unmarshalAttachmentIDs(raw)
}

// SetAttachmentIDs replaces the record's attachment reference list.
func (r *RecordRepository) SetAttachmentIDs(ctx context.Context, id int64, ids []int64) error {
	raw, err := marshalAttachmentIDs(ids)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE records SET attachment_ids = ?, updated_at = ? WHERE id = ?
	`, raw, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set attachment ids: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %d: %w", id, models.ErrNotFound)
	}
	return nil
}

func marshalAttachmentIDs(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to marshal attachment ids: %w", err)
	}
	return string(raw), nil
}

func unmarshalAttachmentIDs(raw string) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attachment ids: %w", err)
	}
	return ids, nil
}

// scanRecord scans one record row from either *sql.Row or *sql.Rows.
func scanRecord(row interface{ Scan(dest ...any) error }) (*models.Record, error) {
	var rec models.Record
	var dueAt sql.NullTime
	var rawIDs string

	if err := row.Scan(
		&rec.ID, &rec.Kind, &rec.Amount, &rec.EntryCurrency, &rec.Category,
		&rec.Subcategory, &rec.Description, &rec.OccurredAt, &dueAt, &rawIDs,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if dueAt.Valid {
		t := dueAt.Time
		rec.DueAt = &t
	}

	ids, err := unmarshalAttachmentIDs(rawIDs)
	if err != nil {
		return nil, err
	}
	rec.AttachmentIDs = ids
	return &rec, nil
}
