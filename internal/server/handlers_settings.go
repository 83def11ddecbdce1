package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adeshpande/finbook/internal/export"
	"github.com/adeshpande/finbook/internal/models"
	"github.com/adeshpande/finbook/internal/repository"
	"github.com/shopspring/decimal"
)

type settingsResponse struct {
	Currency string `json:"currency"`
	Rate     string `json:"rate"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	settings := s.settings.Get()
	writeJSON(w, http.StatusOK, settingsResponse{
		Currency: settings.Currency,
		Rate:     settings.Rate.String(),
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", models.ErrValidation))
		return
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		writeError(w, fmt.Errorf("invalid rate %q: %w", req.Rate, models.ErrValidation))
		return
	}

	if err := s.settings.Update(r.Context(), req.Currency, rate); err != nil {
		writeError(w, err)
		return
	}
	s.handleGetSettings(w, r)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records := repository.NewRecordRepository(s.db)

	byKind := make(map[models.RecordKind][]models.Record, len(models.RecordKinds))
	for _, kind := range models.RecordKinds {
		list, err := records.ListByKind(r.Context(), kind)
		if err != nil {
			writeError(w, err)
			return
		}
		byKind[kind] = list
	}

	workbook, err := export.GenerateWorkbook(byKind, s.settings.Get())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.WorkbookFilename(time.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}
