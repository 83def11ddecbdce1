package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adeshpande/finbook/internal/bin"
	"github.com/adeshpande/finbook/internal/models"
)

// uploadAllowedTypes is this caller's accept rule for attachment uploads.
// The bin subsystem itself takes no position on content types.
var uploadAllowedTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

func uploadAllowList(name, contentType string, _ int64) error {
	if !uploadAllowedTypes[contentType] {
		return fmt.Errorf("file %q has unsupported type %q: %w", name, contentType, models.ErrValidation)
	}
	return nil
}

type attachmentResponse struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"ownerId"`
	OwnerKind   string     `json:"ownerKind"`
	Name        string     `json:"name"`
	Size        int64      `json:"size"`
	ContentType string     `json:"contentType"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	IsDeleted   bool       `json:"isDeleted"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

func toAttachmentResponse(att *models.Attachment) attachmentResponse {
	return attachmentResponse{
		ID:          att.ID,
		OwnerID:     att.OwnerID,
		OwnerKind:   string(att.OwnerKind),
		Name:        att.Name,
		Size:        att.Size,
		ContentType: att.ContentType,
		UploadedAt:  att.UploadedAt,
		IsDeleted:   att.IsDeleted,
		DeletedAt:   att.DeletedAt,
	}
}

func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
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

	attachments, err := s.bin.ListForOwner(r.Context(), id, kind)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]attachmentResponse, 0, len(attachments))
	for i := range attachments {
		out = append(out, toAttachmentResponse(&attachments[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
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

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("multipart field 'file' is required: %w", models.ErrValidation))
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("failed to read upload: %w", models.ErrStorage))
		return
	}

	att, err := s.bin.Attach(r.Context(), bin.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, id, kind, uploadAllowList)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttachmentResponse(att))
}

func (s *Server) handleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	att, err := s.bin.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(att.Content)
}

func (s *Server) handleRenameAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", models.ErrValidation))
		return
	}

	if err := s.bin.Rename(r.Context(), id, req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleBinAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.bin.SoftDelete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListBin(w http.ResponseWriter, r *http.Request) {
	attachments, err := s.bin.ListBin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]attachmentResponse, 0, len(attachments))
	for i := range attachments {
		out = append(out, toAttachmentResponse(&attachments[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type batchRequest struct {
	IDs []int64 `json:"ids"`
}

type batchResponse struct {
	Succeeded int                `json:"succeeded"`
	Failed    []batchFailureItem `json:"failed"`
}

type batchFailureItem struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

func toBatchResponse(result bin.BatchResult) batchResponse {
	out := batchResponse{Succeeded: result.Succeeded, Failed: []batchFailureItem{}}
	for _, f := range result.Failed {
		out.Failed = append(out.Failed, batchFailureItem{ID: f.ID, Error: f.Err.Error()})
	}
	return out
}

func (s *Server) handleBulkRestore(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", models.ErrValidation))
		return
	}
	writeJSON(w, http.StatusOK, toBatchResponse(s.bin.RestoreMany(r.Context(), req.IDs)))
}

func (s *Server) handleBulkPurge(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", models.ErrValidation))
		return
	}
	writeJSON(w, http.StatusOK, toBatchResponse(s.bin.PurgeMany(r.Context(), req.IDs)))
}
