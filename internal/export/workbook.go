// Package export renders records as a spreadsheet-style workbook: one CSV
// sheet per record kind plus a summary sheet, zipped into one archive.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/adeshpande/finbook/internal/currency"
	"github.com/adeshpande/finbook/internal/models"
	"github.com/shopspring/decimal"
)

// GenerateWorkbook builds the workbook archive. Amounts are rendered in
// the display currency from settings; column order is a presentation
// detail, not a contract.
func GenerateWorkbook(
	recordsByKind map[models.RecordKind][]models.Record,
	settings models.CurrencySettings,
) ([]byte, error) {
	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)

	for _, kind := range models.RecordKinds {
		sheet, err := generateSheet(recordsByKind[kind], settings)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s sheet: %w", kind, err)
		}
		if err := addSheet(archive, string(kind)+"s.csv", sheet); err != nil {
			return nil, err
		}
	}

	summary, err := generateSummary(recordsByKind, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary sheet: %w", err)
	}
	if err := addSheet(archive, "summary.csv", summary); err != nil {
		return nil, err
	}

	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WorkbookFilename creates a descriptive filename for an export.
func WorkbookFilename(now time.Time) string {
	return fmt.Sprintf("finbook_export_%s.zip", now.Format("2006-01-02"))
}

func generateSheet(records []models.Record, settings models.CurrencySettings) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"ID", "Date", "Amount", "Entry Currency", "Category", "Subcategory", "Description", "Attachments"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range records {
		amount, err := currency.FormatForDisplay(records[i].Amount, settings.Currency, settings.Rate)
		if err != nil {
			return nil, err
		}
		if records[i].Amount.IsNegative() {
			amount = "-" + amount
		}

		row := []string{
			strconv.FormatInt(records[i].ID, 10),
			records[i].OccurredAt.Format("2006-01-02 15:04:05"),
			amount,
			records[i].EntryCurrency,
			records[i].Category,
			records[i].Subcategory,
			records[i].Description,
			strconv.Itoa(len(records[i].AttachmentIDs)),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func generateSummary(
	recordsByKind map[models.RecordKind][]models.Record,
	settings models.CurrencySettings,
) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Kind", "Count", "Total"}); err != nil {
		return nil, fmt.Errorf("failed to write summary header: %w", err)
	}

	for _, kind := range models.RecordKinds {
		records := recordsByKind[kind]
		total := decimal.Zero
		for i := range records {
			total = total.Add(records[i].Amount)
		}

		formatted, err := currency.FormatForDisplay(total, settings.Currency, settings.Rate)
		if err != nil {
			return nil, err
		}
		if total.IsNegative() {
			formatted = "-" + formatted
		}

		row := []string{string(kind), strconv.Itoa(len(records)), formatted}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func addSheet(archive *zip.Writer, name string, content []byte) error {
	w, err := archive.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("failed to write sheet %s: %w", name, err)
	}
	return nil
}
