package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/adeshpande/finbook/internal/currency"
	"github.com/adeshpande/finbook/internal/models"
	"github.com/adeshpande/finbook/internal/repository"
	"github.com/go-chi/chi/v5"
)

type recordRequest struct {
	Amount        string     `json:"amount"`
	EntryCurrency string     `json:"entryCurrency"`
	Category      string     `json:"category"`
	Subcategory   string     `json:"subcategory"`
	Description   string     `json:"description"`
	OccurredAt    *time.Time `json:"occurredAt"`
	DueAt         *time.Time `json:"dueAt"`
}

type recordResponse struct {
	ID            int64      `json:"id"`
	Kind          string     `json:"kind"`
	Amount        string     `json:"amount"`
	EntryCurrency string     `json:"entryCurrency"`
	Display       string     `json:"display"`
	Category      string     `json:"category"`
	Subcategory   string     `json:"subcategory,omitempty"`
	Description   string     `json:"description,omitempty"`
	OccurredAt    time.Time  `json:"occurredAt"`
	DueAt         *time.Time `json:"dueAt,omitempty"`
	AttachmentIDs []int64    `json:"attachmentIds"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (s *Server) toRecordResponse(rec *models.Record) recordResponse {
	return recordResponse{
		ID:            rec.ID,
		Kind:          string(rec.Kind),
		Amount:        rec.Amount.String(),
		EntryCurrency: rec.EntryCurrency,
		Display:       s.settings.Format(rec.Amount),
		Category:      rec.Category,
		Subcategory:   rec.Subcategory,
		Description:   rec.Description,
		OccurredAt:    rec.OccurredAt,
		DueAt:         rec.DueAt,
		AttachmentIDs: rec.AttachmentIDs,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func parseKind(r *http.Request) (models.RecordKind, error) {
	kind := models.RecordKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown record kind %q: %w", kind, models.ErrValidation)
	}
	return kind, nil
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, models.ErrValidation)
	}
	return id, nil
}

// getRecordOfKind loads a record and checks it belongs to the collection
// named in the URL.
func (s *Server) getRecordOfKind(ctx context.Context, id int64, kind models.RecordKind) (*models.Record, error) {
	rec, err := repository.NewRecordRepository(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Kind != kind {
		return nil, fmt.Errorf("record %d is not a %s: %w", id, kind, models.ErrNotFound)
	}
	return rec, nil
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := repository.NewRecordRepository(s.db).ListByKind(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]recordResponse, 0, len(records))
	for i := range records {
		out = append(out, s.toRecordResponse(&records[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", models.ErrValidation))
		return
	}

	rec, err := s.recordFromRequest(kind, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := repository.NewRecordRepository(s.db).Create(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toRecordResponse(rec))
}

// recordFromRequest normalizes the typed amount to the base currency.
// This is the single entry-time conversion; the stored amount is never
// re-derived afterwards.
func (s *Server) recordFromRequest(kind models.RecordKind, req *recordRequest) (*models.Record, error) {
	entryCurrency := currency.Normalize(req.EntryCurrency)
	if entryCurrency == "" {
		entryCurrency = models.BaseCurrency
	}

	typed := currency.ParseAmount(req.Amount)
	base, err := currency.ConvertToBase(typed, entryCurrency, s.settings.Get().Rate)
	if err != nil {
		return nil, err
	}

	rec := &models.Record{
		Kind:          kind,
		Amount:        base,
		EntryCurrency: entryCurrency,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Description:   req.Description,
		DueAt:         req.DueAt,
	}
	if req.OccurredAt != nil {
		rec.OccurredAt = *req.OccurredAt
	}
	return rec, nil
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := s.getRecordOfKind(r.Context(), id, kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toRecordResponse(rec))
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", models.ErrValidation))
		return
	}

	existing, err := s.getRecordOfKind(r.Context(), id, kind)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.recordFromRequest(kind, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	updated.ID = existing.ID
	updated.AttachmentIDs = existing.AttachmentIDs
	updated.CreatedAt = existing.CreatedAt
	if req.OccurredAt == nil {
		updated.OccurredAt = existing.OccurredAt
	}

	if err := repository.NewRecordRepository(s.db).Update(r.Context(), updated); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toRecordResponse(updated))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := s.getRecordOfKind(r.Context(), id, kind); err != nil {
		writeError(w, err)
		return
	}

	// Bins the record's attachments before removing the record itself.
	if err := s.bin.DeleteRecord(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
