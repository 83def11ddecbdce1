// Package bin manages the attachment lifecycle: active attachments, the
// soft-delete bin, restore, and permanent purge.
//
// An attachment's tombstone (IsDeleted + DeletedAt) and its presence in
// the owning record's reference list must always agree: an attachment is
// referenced by its owner exactly when it is not deleted. Every lifecycle
// transition here runs both writes in one transaction so partial failure
// cannot desynchronize them.
package bin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/adeshpande/finbook/internal/database"
	"github.com/adeshpande/finbook/internal/logger"
	"github.com/adeshpande/finbook/internal/models"
	"github.com/adeshpande/finbook/internal/repository"
)

// DefaultMaxSize is the attachment size ceiling when none is configured.
const DefaultMaxSize = 10 << 20

// Upload carries the raw bytes and metadata of a file being attached.
type Upload struct {
	Name        string
	ContentType string
	Content     []byte
}

// PreAttachHook lets callers enforce their own accept rules (content-type
// allow-lists and the like) before an upload is stored. The subsystem
// itself is allow-list-agnostic.
type PreAttachHook func(name, contentType string, size int64) error

// Service implements the attachment lifecycle operations.
type Service struct {
	db      *sql.DB
	maxSize int64
	now     func() time.Time
}

// NewService creates a bin service. maxSize <= 0 selects DefaultMaxSize.
func NewService(db *sql.DB, maxSize int64) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{
		db:      db,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Attach stores an upload as an active attachment of the given record and
// appends its new ID to the record's reference list.
func (s *Service) Attach(
	ctx context.Context,
	up Upload,
	ownerID int64,
	ownerKind models.RecordKind,
	hook PreAttachHook,
) (*models.Attachment, error) {
	name := strings.TrimSpace(up.Name)
	if name == "" {
		return nil, fmt.Errorf("attachment name is required: %w", models.ErrValidation)
	}
	if size := int64(len(up.Content)); size > s.maxSize {
		return nil, fmt.Errorf("attachment %q is %d bytes, limit is %d: %w",
			name, size, s.maxSize, models.ErrStorage)
	}
	if hook != nil {
		if err := hook(name, up.ContentType, int64(len(up.Content))); err != nil {
			return nil, err
		}
	}

	att := &models.Attachment{
		OwnerID:     ownerID,
		OwnerKind:   ownerKind,
		Name:        name,
		Content:     up.Content,
		ContentType: up.ContentType,
		UploadedAt:  s.now().UTC(),
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		records := repository.NewRecordRepository(tx)
		attachments := repository.NewAttachmentRepository(tx)

		owner, err := records.GetByID(ctx, ownerID)
		if err != nil {
			return err
		}
		if owner.Kind != ownerKind {
			return fmt.Errorf("record %d is a %s, not a %s: %w",
				ownerID, owner.Kind, ownerKind, models.ErrNotFound)
		}

		if err := attachments.Insert(ctx, att); err != nil {
			return err
		}
		return records.SetAttachmentIDs(ctx, ownerID, append(owner.AttachmentIDs, att.ID))
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Debug().
		Int64("attachment_id", att.ID).
		Int64("owner_id", ownerID).
		Str("owner_kind", string(ownerKind)).
		Msg("Attachment stored")
	return att, nil
}

// SoftDelete moves an attachment to the bin: sets the tombstone and drops
// the owner's reference. Calling it on an attachment already in the bin is
// a no-op success.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		records := repository.NewRecordRepository(tx)
		attachments := repository.NewAttachmentRepository(tx)

		att, err := attachments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if att.IsDeleted {
			return nil
		}

		if err := attachments.MarkDeleted(ctx, id, s.now().UTC()); err != nil {
			return err
		}
		return removeOwnerReference(ctx, records, att.OwnerID, id)
	})
}

// Restore moves an attachment out of the bin: clears the tombstone and
// re-appends the owner's reference if absent. Fails with NotFound when the
// owning record no longer exists.
func (s *Service) Restore(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		records := repository.NewRecordRepository(tx)
		attachments := repository.NewAttachmentRepository(tx)

		att, err := attachments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !att.IsDeleted {
			return nil
		}

		ids, err := records.AttachmentIDs(ctx, att.OwnerID)
		if err != nil {
			return fmt.Errorf("cannot restore attachment %d: %w", id, err)
		}

		if err := attachments.ClearDeleted(ctx, id); err != nil {
			return err
		}
		if slices.Contains(ids, id) {
			return nil
		}
		return records.SetAttachmentIDs(ctx, att.OwnerID, append(ids, id))
	})
}

// Purge permanently removes an attachment. Irreversible. A still-active
// attachment loses its owner reference in the same transaction.
func (s *Service) Purge(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		records := repository.NewRecordRepository(tx)
		attachments := repository.NewAttachmentRepository(tx)

		att, err := attachments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !att.IsDeleted {
			if err := removeOwnerReference(ctx, records, att.OwnerID, id); err != nil {
				return err
			}
		}
		return attachments.Delete(ctx, id)
	})
}

// Rename updates an attachment's display name. Available from both the
// active and binned states.
func (s *Service) Rename(ctx context.Context, id int64, newName string) error {
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" {
		return fmt.Errorf("attachment name is required: %w", models.ErrValidation)
	}
	return repository.NewAttachmentRepository(s.db).Rename(ctx, id, trimmed)
}

// ListBin returns metadata for everything in the bin, newest deletion first.
func (s *Service) ListBin(ctx context.Context) ([]models.Attachment, error) {
	return repository.NewAttachmentRepository(s.db).ListBin(ctx)
}

// ListForOwner returns active attachment metadata for one record, in
// reference-list order.
func (s *Service) ListForOwner(
	ctx context.Context,
	ownerID int64,
	ownerKind models.RecordKind,
) ([]models.Attachment, error) {
	ids, err := repository.NewRecordRepository(s.db).AttachmentIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	active, err := repository.NewAttachmentRepository(s.db).ListActiveByOwner(ctx, ownerID, ownerKind)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Attachment, len(active))
	for _, att := range active {
		byID[att.ID] = att
	}

	ordered := make([]models.Attachment, 0, len(ids))
	for _, id := range ids {
		if att, ok := byID[id]; ok {
			ordered = append(ordered, att)
		}
	}
	return ordered, nil
}

// Get returns one attachment including its content.
func (s *Service) Get(ctx context.Context, id int64) (*models.Attachment, error) {
	return repository.NewAttachmentRepository(s.db).GetByID(ctx, id)
}

// DeleteRecord deletes a financial record after moving all of its active
// attachments to the bin. The files stay recoverable; only the record
// itself is removed. Attachments are binned first so a crash in between
// leaves binned files rather than active orphans.
func (s *Service) DeleteRecord(ctx context.Context, recordID int64) error {
	records := repository.NewRecordRepository(s.db)

	rec, err := records.GetByID(ctx, recordID)
	if err != nil {
		return err
	}

	for _, attID := range rec.AttachmentIDs {
		if err := s.SoftDelete(ctx, attID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("failed to bin attachment %d of record %d: %w", attID, recordID, err)
		}
	}

	return records.Delete(ctx, recordID)
}

// removeOwnerReference drops id from the owner's reference list. A missing
// owner record is tolerated: the tombstone is then the only fact left.
func removeOwnerReference(
	ctx context.Context,
	records *repository.RecordRepository,
	ownerID int64,
	id int64,
) error {
	ids, err := records.AttachmentIDs(ctx, ownerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}

	filtered := slices.DeleteFunc(slices.Clone(ids), func(v int64) bool { return v == id })
	if len(filtered) == len(ids) {
		return nil
	}
	return records.SetAttachmentIDs(ctx, ownerID, filtered)
}
