package sync

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adeshpande/finbook/internal/logger"
	"github.com/adeshpande/finbook/internal/models"
	"github.com/adeshpande/finbook/internal/repository"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// pushedTTL is how long a pushed record ID is remembered. The remote store
// does no dedup of its own, so forgetting too early re-creates rows; this
// only narrows the duplication window, it does not close it.
const pushedTTL = 24 * time.Hour

// syncedKinds are the record kinds mirrored to the remote store. Reminders
// stay local.
var syncedKinds = []models.RecordKind{
	models.KindTransaction,
	models.KindExpense,
	models.KindSaving,
	models.KindGoal,
}

// Syncer periodically pushes local records to the remote store. It is
// fire-and-forget: a failed tick is logged and retried at the next one.
type Syncer struct {
	client   *Client
	records  *repository.RecordRepository
	interval time.Duration
	pushed   *cache.Cache

	// now is the clock; replaced in tests.
	now func() time.Time
}

// NewSyncer creates a background syncer over the given database.
func NewSyncer(client *Client, db *sql.DB, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Syncer{
		client:   client,
		records:  repository.NewRecordRepository(db),
		interval: interval,
		pushed:   cache.New(pushedTTL, time.Hour),
		now:      time.Now,
	}
}

// Start runs the sync loop until ctx is cancelled. One tick runs
// immediately so a short-lived session still syncs once.
func (s *Syncer) Start(ctx context.Context) {
	logger.Log.Info().
		Dur("interval", s.interval).
		Msg("Background sync started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Background sync stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sync tick and returns how many records were
// pushed. Failures are logged, never fatal. Exported so tests and manual
// triggers can run a deterministic tick.
func (s *Syncer) RunOnce(ctx context.Context) int {
	batchID := uuid.NewString()
	started := s.now()

	var rows []RemoteTransaction
	for _, kind := range syncedKinds {
		records, err := s.records.ListByKind(ctx, kind)
		if err != nil {
			logger.Log.Error().Err(err).Str("kind", string(kind)).Str("batch_id", batchID).
				Msg("Sync tick failed to read local records")
			continue
		}
		for i := range records {
			key := pushedKey(kind, records[i].ID)
			if _, done := s.pushed.Get(key); done {
				continue
			}
			rows = append(rows, toRemote(&records[i]))
		}
	}

	var pushedRows []RemoteTransaction
	for _, row := range rows {
		if err := s.client.CreateTransaction(ctx, row); err != nil {
			logger.Log.Warn().Err(err).
				Int64("local_id", row.LocalID).
				Str("kind", row.Kind).
				Str("batch_id", batchID).
				Msg("Failed to push record, will retry next tick")
			continue
		}
		s.pushed.SetDefault(pushedKey(models.RecordKind(row.Kind), row.LocalID), struct{}{})
		pushedRows = append(pushedRows, row)
	}
	pushedCount := len(pushedRows)

	if pushedCount > 0 {
		if err := s.client.PushSheet(ctx, batchID, pushedRows); err != nil {
			logger.Log.Warn().Err(err).Str("batch_id", batchID).
				Msg("Failed to push sheet batch")
		}
	}

	logger.Log.Debug().
		Str("batch_id", batchID).
		Int("pushed", pushedCount).
		Dur("elapsed", s.now().Sub(started)).
		Msg("Sync tick finished")
	return pushedCount
}

func pushedKey(kind models.RecordKind, id int64) string {
	return fmt.Sprintf("%s/%d", kind, id)
}

func toRemote(rec *models.Record) RemoteTransaction {
	return RemoteTransaction{
		LocalID:    rec.ID,
		Kind:       string(rec.Kind),
		Amount:     rec.Amount.String(),
		Currency:   models.BaseCurrency,
		Category:   rec.Category,
		Desc:       rec.Description,
		OccurredAt: rec.OccurredAt,
	}
}
