package repository

import (
	"context"
	"testing"
	"time"

	"github.com/adeshpande/finbook/internal/database"
	"github.com/adeshpande/finbook/internal/models"
	"github.com/stretchr/testify/require"
)

func setupAttachmentTest(t *testing.T) (*AttachmentRepository, context.Context) {
	t.Helper()
	return NewAttachmentRepository(database.TestDB(t)), context.Background()
}

func newTestAttachment(owner int64) *models.Attachment {
	return &models.Attachment{
		OwnerID:     owner,
		OwnerKind:   models.KindExpense,
		Name:        "receipt.pdf",
		Content:     []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
	}
}

func TestAttachmentRepository_InsertAndGet(t *testing.T) {
	repo, ctx := setupAttachmentTest(t)

	att := newTestAttachment(1)
	require.NoError(t, repo.Insert(ctx, att))
	require.NotZero(t, att.ID)
	require.EqualValues(t, len(att.Content), att.Size)
	require.False(t, att.UploadedAt.IsZero())

	fetched, err := repo.GetByID(ctx, att.ID)
	require.NoError(t, err)
	require.Equal(t, att.Name, fetched.Name)
	require.Equal(t, att.Content, fetched.Content)
	require.False(t, fetched.IsDeleted)
	require.Nil(t, fetched.DeletedAt)

	_, err = repo.GetByID(ctx, 99999)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestAttachmentRepository_Tombstone(t *testing.T) {
	repo, ctx := setupAttachmentTest(t)

	att := newTestAttachment(2)
	require.NoError(t, repo.Insert(ctx, att))

	deletedAt := time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.MarkDeleted(ctx, att.ID, deletedAt))

	fetched, err := repo.GetByID(ctx, att.ID)
	require.NoError(t, err)
	require.True(t, fetched.IsDeleted)
	require.NotNil(t, fetched.DeletedAt)
	require.True(t, fetched.DeletedAt.Equal(deletedAt))

	require.NoError(t, repo.ClearDeleted(ctx, att.ID))
	fetched, err = repo.GetByID(ctx, att.ID)
	require.NoError(t, err)
	require.False(t, fetched.IsDeleted)
	require.Nil(t, fetched.DeletedAt)

	require.ErrorIs(t, repo.MarkDeleted(ctx, 99999, deletedAt), models.ErrNotFound)
	require.ErrorIs(t, repo.ClearDeleted(ctx, 99999), models.ErrNotFound)
}

func TestAttachmentRepository_Listing(t *testing.T) {
	repo, ctx := setupAttachmentTest(t)

	active := newTestAttachment(3)
	require.NoError(t, repo.Insert(ctx, active))

	binnedOld := newTestAttachment(3)
	binnedOld.Name = "old.pdf"
	require.NoError(t, repo.Insert(ctx, binnedOld))
	require.NoError(t, repo.MarkDeleted(ctx, binnedOld.ID, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	binnedNew := newTestAttachment(3)
	binnedNew.Name = "new.pdf"
	require.NoError(t, repo.Insert(ctx, binnedNew))
	require.NoError(t, repo.MarkDeleted(ctx, binnedNew.ID, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))

	t.Run("active listing skips binned and content", func(t *testing.T) {
		listed, err := repo.ListActiveByOwner(ctx, 3, models.KindExpense)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.Equal(t, active.ID, listed[0].ID)
		require.Nil(t, listed[0].Content)
		require.EqualValues(t, len(active.Content), listed[0].Size)
	})

	t.Run("bin listing is newest deletion first", func(t *testing.T) {
		listed, err := repo.ListBin(ctx)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		require.Equal(t, binnedNew.ID, listed[0].ID)
		require.Equal(t, binnedOld.ID, listed[1].ID)
	})
}

func TestAttachmentRepository_RenameAndDelete(t *testing.T) {
	repo, ctx := setupAttachmentTest(t)

	att := newTestAttachment(4)
	require.NoError(t, repo.Insert(ctx, att))

	require.NoError(t, repo.Rename(ctx, att.ID, "renamed.pdf"))
	fetched, err := repo.GetByID(ctx, att.ID)
	require.NoError(t, err)
	require.Equal(t, "renamed.pdf", fetched.Name)

	require.NoError(t, repo.Delete(ctx, att.ID))
	_, err = repo.GetByID(ctx, att.ID)
	require.ErrorIs(t, err, models.ErrNotFound)

	require.ErrorIs(t, repo.Rename(ctx, att.ID, "x"), models.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, att.ID), models.ErrNotFound)
}
