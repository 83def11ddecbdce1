// Package models defines the domain entities for the finance tracker.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency every amount is persisted in.
const BaseCurrency = "EUR"

// SecondaryCurrency is the alternate entry/display currency.
const SecondaryCurrency = "INR"

// DefaultConversionRate is the INR-per-EUR rate used until the user sets one.
var DefaultConversionRate = decimal.NewFromInt(105)

// CurrencySymbols maps supported currency codes to their display symbols.
var CurrencySymbols = map[string]string{
	BaseCurrency:      "€",
	SecondaryCurrency: "₹",
}

// RecordKind identifies one of the financial record collections.
type RecordKind string

// Record kinds.
const (
	KindTransaction RecordKind = "transaction"
	KindExpense     RecordKind = "expense"
	KindSaving      RecordKind = "saving"
	KindGoal        RecordKind = "goal"
	KindReminder    RecordKind = "reminder"
)

// RecordKinds lists all record kinds in canonical order.
var RecordKinds = []RecordKind{KindTransaction, KindExpense, KindSaving, KindGoal, KindReminder}

// Valid reports whether k is a known record kind.
func (k RecordKind) Valid() bool {
	switch k {
	case KindTransaction, KindExpense, KindSaving, KindGoal, KindReminder:
		return true
	}
	return false
}

// Record is a single financial record. Amount is always stored in the base
// currency; EntryCurrency remembers what the user originally typed it in.
type Record struct {
	ID            int64
	Kind          RecordKind
	Amount        decimal.Decimal
	EntryCurrency string
	Category      string
	Subcategory   string
	Description   string
	OccurredAt    time.Time
	DueAt         *time.Time
	AttachmentIDs []int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Attachment is a file uploaded against a record. IsDeleted/DeletedAt form
// the bin tombstone; the owning record's AttachmentIDs list only ever holds
// attachments with IsDeleted == false.
type Attachment struct {
	ID          int64
	OwnerID     int64
	OwnerKind   RecordKind
	Name        string
	Content     []byte
	Size        int64
	ContentType string
	UploadedAt  time.Time
	IsDeleted   bool
	DeletedAt   *time.Time
}

// CurrencySettings is the process-wide display currency preference.
type CurrencySettings struct {
	Currency string
	Rate     decimal.Decimal
}
