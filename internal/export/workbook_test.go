package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/adeshpande/finbook/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func readSheet(t *testing.T, reader *zip.Reader, name string) [][]string {
	t.Helper()
	for _, f := range reader.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()

		raw, err := io.ReadAll(rc)
		require.NoError(t, err)

		rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
		require.NoError(t, err)
		return rows
	}
	t.Fatalf("sheet %s missing from workbook", name)
	return nil
}

func TestGenerateWorkbook(t *testing.T) {
	eurSettings := models.CurrencySettings{Currency: models.BaseCurrency, Rate: models.DefaultConversionRate}

	recordsByKind := map[models.RecordKind][]models.Record{
		models.KindExpense: {
			{
				ID:            1,
				Kind:          models.KindExpense,
				Amount:        decimal.RequireFromString("12.50"),
				EntryCurrency: "EUR",
				Category:      "Food",
				Subcategory:   "Groceries",
				Description:   "weekly shop",
				OccurredAt:    time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
				AttachmentIDs: []int64{4, 5},
			},
			{
				ID:         2,
				Kind:       models.KindExpense,
				Amount:     decimal.RequireFromString("7.50"),
				Category:   "Transport",
				OccurredAt: time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC),
			},
		},
		models.KindSaving: {
			{ID: 3, Kind: models.KindSaving, Amount: decimal.NewFromInt(100), OccurredAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	data, err := GenerateWorkbook(recordsByKind, eurSettings)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	t.Run("contains one sheet per kind plus a summary", func(t *testing.T) {
		names := make(map[string]bool, len(reader.File))
		for _, f := range reader.File {
			names[f.Name] = true
		}
		for _, kind := range models.RecordKinds {
			require.True(t, names[string(kind)+"s.csv"], "missing sheet for %s", kind)
		}
		require.True(t, names["summary.csv"])
	})

	t.Run("expense sheet has header and formatted amounts", func(t *testing.T) {
		rows := readSheet(t, reader, "expenses.csv")
		require.Len(t, rows, 3)
		require.Equal(t, "Amount", rows[0][2])
		require.Equal(t, "1", rows[1][0])
		require.Equal(t, "€12.50", rows[1][2])
		require.Equal(t, "2", rows[1][7])
		require.Equal(t, "€7.50", rows[2][2])
	})

	t.Run("empty kinds still get a header-only sheet", func(t *testing.T) {
		rows := readSheet(t, reader, "goals.csv")
		require.Len(t, rows, 1)
	})

	t.Run("summary totals per kind", func(t *testing.T) {
		rows := readSheet(t, reader, "summary.csv")
		require.Len(t, rows, 1+len(models.RecordKinds))

		byKind := make(map[string][]string, len(rows)-1)
		for _, row := range rows[1:] {
			byKind[row[0]] = row
		}
		require.Equal(t, []string{"expense", "2", "€20.00"}, byKind["expense"])
		require.Equal(t, []string{"saving", "1", "€100.00"}, byKind["saving"])
		require.Equal(t, []string{"goal", "0", "€0.00"}, byKind["goal"])
	})
}

func TestGenerateWorkbook_SecondaryCurrency(t *testing.T) {
	settings := models.CurrencySettings{
		Currency: models.SecondaryCurrency,
		Rate:     decimal.NewFromInt(100),
	}
	recordsByKind := map[models.RecordKind][]models.Record{
		models.KindExpense: {
			{ID: 1, Kind: models.KindExpense, Amount: decimal.NewFromInt(15), OccurredAt: time.Now()},
			{ID: 2, Kind: models.KindExpense, Amount: decimal.RequireFromString("-2.5"), OccurredAt: time.Now()},
		},
	}

	data, err := GenerateWorkbook(recordsByKind, settings)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	rows := readSheet(t, reader, "expenses.csv")
	require.Equal(t, "₹1,500.00", rows[1][2])
	require.Equal(t, "-₹250.00", rows[2][2])

	summary := readSheet(t, reader, "summary.csv")
	for _, row := range summary[1:] {
		if row[0] == "expense" {
			require.Equal(t, "₹1,250.00", row[2])
		}
	}
}

func TestWorkbookFilename(t *testing.T) {
	now := time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC)
	require.Equal(t, "finbook_export_2026-08-28.zip", WorkbookFilename(now))
}
