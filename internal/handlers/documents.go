package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
	"github.com/BerylCAtieno/loan-document-verifier/internal/services"
	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
)

const (
	DefaultMaxFileSize = services.DefaultMaxFileSize

	// MaxBatchFiles bounds a single batch upload.
	MaxBatchFiles = 10
)

type DocumentHandler struct {
	service     services.DocumentService
	logger      *utils.Logger
	maxFileSize int64
}

func NewDocumentHandler(service services.DocumentService, logger *utils.Logger, maxFileSize int64) *DocumentHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &DocumentHandler{
		service:     service,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

func (h *DocumentHandler) sizeLimitError() error {
	return utils.NewBadRequestError(fmt.Sprintf("File size exceeds %dMB limit", h.maxFileSize>>20))
}

// parseForm parses a multipart body of at most limit bytes.
func (h *DocumentHandler) parseForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	// Reject oversized requests before reading the body
	if r.ContentLength > limit {
		return h.sizeLimitError()
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return h.sizeLimitError()
		}
		return utils.NewBadRequestError("Invalid form data")
	}
	return nil
}

// readFile loads one uploaded part, enforcing the per-file limit.
func (h *DocumentHandler) readFile(header *multipart.FileHeader) ([]byte, error) {
	if header.Size > h.maxFileSize {
		return nil, h.sizeLimitError()
	}

	file, err := header.Open()
	if err != nil {
		return nil, utils.WrapInternalError("Failed to read file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		return nil, utils.WrapInternalError("Failed to read file", err)
	}
	if int64(len(data)) > h.maxFileSize {
		return nil, h.sizeLimitError()
	}
	if len(data) == 0 {
		return nil, utils.NewBadRequestError("Uploaded file is empty")
	}
	return data, nil
}

func formRequirements(form *multipart.Form) []string {
	var reqs []string
	for _, key := range []string{"requirements", "requirements[]"} {
		for _, v := range form.Value[key] {
			if v = strings.TrimSpace(v); v != "" {
				reqs = append(reqs, v)
			}
		}
	}
	return reqs
}

func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r, h.maxFileSize+1<<20); err != nil {
		h.respondError(w, err)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		h.respondError(w, utils.NewBadRequestError("No file provided"))
		return
	}
	header := files[0]

	h.logger.Info("File upload attempt",
		"filename", header.Filename,
		"reported_content_type", header.Header.Get("Content-Type"),
		"size", header.Size)

	data, err := h.readFile(header)
	if err != nil {
		h.respondError(w, err)
		return
	}

	req := &models.UploadRequest{
		DocumentID:    r.FormValue("documentId"),
		File:          data,
		Filename:      header.Filename,
		ContentType:   header.Header.Get("Content-Type"),
		ApplicationID: r.FormValue("applicationId"),
		DocTypeHint:   r.FormValue("docTypeHint"),
		Requirements:  formRequirements(r.MultipartForm),
	}

	resp, err := h.service.UploadDocument(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, resp)
}

func (h *DocumentHandler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r, MaxBatchFiles*h.maxFileSize+1<<20); err != nil {
		h.respondError(w, err)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		h.respondError(w, utils.NewBadRequestError("No files provided"))
		return
	}
	if len(files) > MaxBatchFiles {
		h.respondError(w, utils.NewBadRequestError(fmt.Sprintf("At most %d files per batch", MaxBatchFiles)))
		return
	}

	applicationID := r.FormValue("applicationId")
	hint := r.FormValue("docTypeHint")
	reqs := formRequirements(r.MultipartForm)

	uploads := make([]*models.UploadRequest, 0, len(files))
	for _, header := range files {
		data, err := h.readFile(header)
		if err != nil {
			h.respondError(w, err)
			return
		}
		uploads = append(uploads, &models.UploadRequest{
			File:          data,
			Filename:      header.Filename,
			ContentType:   header.Header.Get("Content-Type"),
			ApplicationID: applicationID,
			DocTypeHint:   hint,
			Requirements:  reqs,
		})
	}

	results, err := h.service.UploadBatch(r.Context(), uploads)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{"documents": results})
}

func (h *DocumentHandler) ImportDocument(w http.ResponseWriter, r *http.Request) {
	var req models.ImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.ImportDocument(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, resp)
}

func (h *DocumentHandler) MatchDocuments(w http.ResponseWriter, r *http.Request) {
	var req models.MatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	scores, err := h.service.MatchDocuments(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"matches": scores})
}

func (h *DocumentHandler) VerifyText(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, h.service.VerifyText(&req))
}

func (h *DocumentHandler) ExtractFields(w http.ResponseWriter, r *http.Request) {
	var req models.ExtractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, h.service.ExtractFields(&req))
}

func (h *DocumentHandler) ReverifyDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.ReverifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	doc, err := h.service.ReverifyDocument(r.Context(), id, req.Requirements)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, err := h.service.GetDocument(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) ListApplicationDocuments(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	docs, err := h.service.ListApplicationDocuments(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"applicationId": id,
		"documents":     docs,
	})
}

func (h *DocumentHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	pct, err := h.service.Progress(id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "progress": pct})
}

func (h *DocumentHandler) CancelProcessing(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.CancelProcessing(id); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(h.logger, w, status, data)
}

func (h *DocumentHandler) respondError(w http.ResponseWriter, err error) {
	respondError(h.logger, w, err)
}
