package repository

import (
	"context"
	"fmt"

	"github.com/adeshpande/finbook/internal/database"
	"github.com/adeshpande/finbook/internal/models"
	"github.com/shopspring/decimal"
)

// Settings row keys. The pair is always read and written together.
const (
	SettingsKeyCurrency = "currency"
	SettingsKeyRate     = "eurToInrRate"
)

// SettingsRepository handles the persisted display-currency preference.
type SettingsRepository struct {
	db database.DBTX
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db database.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get reads the currency/rate pair. found is false when either row is
// missing, in which case callers apply documented defaults.
func (r *SettingsRepository) Get(ctx context.Context) (settings models.CurrencySettings, found bool, err error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, value FROM settings WHERE key IN (?, ?)
	`, SettingsKeyCurrency, SettingsKeyRate)
	if err != nil {
		return models.CurrencySettings{}, false, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, 2)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.CurrencySettings{}, false, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.CurrencySettings{}, false, fmt.Errorf("error iterating settings: %w", err)
	}

	currency, hasCurrency := values[SettingsKeyCurrency]
	rateStr, hasRate := values[SettingsKeyRate]
	if !hasCurrency || !hasRate {
		return models.CurrencySettings{}, false, nil
	}

	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return models.CurrencySettings{}, false, fmt.Errorf("failed to parse stored rate %q: %w", rateStr, err)
	}

	return models.CurrencySettings{Currency: currency, Rate: rate}, true, nil
}

// Put upserts a single settings row. Used inside a transaction by the
// currency settings service so the pair is written atomically.
func (r *SettingsRepository) Put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to put setting %s: %w", key, err)
	}
	return nil
}
