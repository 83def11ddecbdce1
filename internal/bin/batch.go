package bin

import (
	"context"

	"github.com/adeshpande/finbook/internal/logger"
)

// BatchFailure records one ID that a bulk operation could not process.
type BatchFailure struct {
	ID  int64
	Err error
}

// BatchResult summarizes a bulk restore or purge. Bulk operations apply
// sequentially and keep going past per-item failures; the summary reports
// how many succeeded and which IDs failed.
type BatchResult struct {
	Succeeded int
	Failed    []BatchFailure
}

// AllOK reports whether every item in the batch succeeded.
func (r BatchResult) AllOK() bool {
	return len(r.Failed) == 0
}

// RestoreMany restores a set of binned attachments.
func (s *Service) RestoreMany(ctx context.Context, ids []int64) BatchResult {
	return s.applyEach(ctx, ids, "restore", s.Restore)
}

// PurgeMany permanently removes a set of attachments.
func (s *Service) PurgeMany(ctx context.Context, ids []int64) BatchResult {
	return s.applyEach(ctx, ids, "purge", s.Purge)
}

func (s *Service) applyEach(
	ctx context.Context,
	ids []int64,
	op string,
	fn func(context.Context, int64) error,
) BatchResult {
	var result BatchResult
	for _, id := range ids {
		if err := fn(ctx, id); err != nil {
			logger.Log.Warn().
				Err(err).
				Int64("attachment_id", id).
				Str("op", op).
				Msg("Bulk attachment operation item failed")
			result.Failed = append(result.Failed, BatchFailure{ID: id, Err: err})
			continue
		}
		result.Succeeded++
	}
	return result
}
