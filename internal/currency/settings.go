package currency

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/adeshpande/finbook/internal/database"
	"github.com/adeshpande/finbook/internal/logger"
	"github.com/adeshpande/finbook/internal/models"
	"github.com/adeshpande/finbook/internal/repository"
	"github.com/shopspring/decimal"
)

// SettingsService holds the process-wide display-currency preference.
// It is loaded once at startup, held in memory for the session, and only
// changes through Update. Inject the instance instead of reading settings
// ambiently.
type SettingsService struct {
	db *sql.DB

	mu      sync.RWMutex
	current models.CurrencySettings
}

// NewSettingsService creates a settings service with documented defaults
// applied until Reload or Update runs.
func NewSettingsService(db *sql.DB) *SettingsService {
	return &SettingsService{
		db:      db,
		current: defaultSettings(),
	}
}

func defaultSettings() models.CurrencySettings {
	return models.CurrencySettings{
		Currency: models.BaseCurrency,
		Rate:     models.DefaultConversionRate,
	}
}

// Reload re-reads the persisted pair, falling back to defaults when unset.
func (s *SettingsService) Reload(ctx context.Context) error {
	settings, found, err := repository.NewSettingsRepository(s.db).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load currency settings: %w", err)
	}
	if !found {
		settings = defaultSettings()
		logger.Log.Debug().Msg("No stored currency settings, using defaults")
	}

	s.mu.Lock()
	s.current = settings
	s.mu.Unlock()
	return nil
}

// Get returns the current display currency and conversion rate.
func (s *SettingsService) Get() models.CurrencySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates and persists the currency/rate pair atomically, then
// swaps the in-memory copy. Propagating the change to already-rendered
// output is the caller's concern.
func (s *SettingsService) Update(ctx context.Context, currencyCode string, rate decimal.Decimal) error {
	code := Normalize(currencyCode)
	if !Supported(code) {
		return fmt.Errorf("unsupported currency %q: %w", currencyCode, models.ErrValidation)
	}
	if !rate.IsPositive() {
		return fmt.Errorf("rate %s: %w", rate, models.ErrInvalidRate)
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := repository.NewSettingsRepository(tx)
		if err := repo.Put(ctx, repository.SettingsKeyCurrency, code); err != nil {
			return err
		}
		return repo.Put(ctx, repository.SettingsKeyRate, rate.String())
	})
	if err != nil {
		return fmt.Errorf("failed to persist currency settings: %w", err)
	}

	s.mu.Lock()
	s.current = models.CurrencySettings{Currency: code, Rate: rate}
	s.mu.Unlock()

	logger.Log.Info().
		Str("currency", code).
		Str("rate", rate.String()).
		Msg("Currency settings updated")
	return nil
}

// Format renders a stored base-currency amount using the current display
// settings. Settings are validated on the way in, so formatting only
// fails if the stored pair was corrupted; that case renders as zero.
func (s *SettingsService) Format(baseAmount decimal.Decimal) string {
	settings := s.Get()
	formatted, err := FormatForDisplay(baseAmount, settings.Currency, settings.Rate)
	if err != nil {
		return Symbol(settings.Currency) + "0.00"
	}
	return formatted
}
