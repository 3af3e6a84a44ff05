package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/BerylCAtieno/loan-document-verifier/internal/extractor"
	"github.com/BerylCAtieno/loan-document-verifier/internal/matcher"
	"github.com/BerylCAtieno/loan-document-verifier/internal/metrics"
	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
	"github.com/BerylCAtieno/loan-document-verifier/internal/ocr"
	"github.com/BerylCAtieno/loan-document-verifier/internal/pipeline"
	"github.com/BerylCAtieno/loan-document-verifier/internal/providers"
	"github.com/BerylCAtieno/loan-document-verifier/internal/repository"
	"github.com/BerylCAtieno/loan-document-verifier/internal/storage"
	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
	"github.com/BerylCAtieno/loan-document-verifier/internal/verifier"
)

// DefaultMaxFileSize bounds files fetched from providers when no limit is configured.
const DefaultMaxFileSize = 5 << 20

type DocumentService interface {
	UploadDocument(ctx context.Context, req *models.UploadRequest) (*models.ProcessedDocument, error)
	UploadBatch(ctx context.Context, reqs []*models.UploadRequest) ([]*models.ProcessedDocument, error)
	ImportDocument(ctx context.Context, req *models.ImportRequest) (*models.ProcessedDocument, error)
	MatchDocuments(ctx context.Context, req *models.MatchRequest) ([]matcher.MatchScore, error)
	VerifyText(req *models.VerifyRequest) models.VerificationResult
	ExtractFields(req *models.ExtractRequest) models.ExtractedFields
	ReverifyDocument(ctx context.Context, id string, requirements []string) (*models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListApplicationDocuments(ctx context.Context, applicationID string) ([]*models.Document, error)
	Progress(id string) (int, error)
	CancelProcessing(id string) error
}

type documentService struct {
	repo        repository.Repository
	processor   *pipeline.Processor
	providers   *providers.Registry
	metrics     *metrics.Metrics
	logger      *utils.Logger
	maxFileSize int64
}

func NewDocumentService(
	repo repository.Repository,
	processor *pipeline.Processor,
	registry *providers.Registry,
	m *metrics.Metrics,
	logger *utils.Logger,
	maxFileSize int64,
) DocumentService {
	if registry == nil {
		registry = providers.NewRegistry()
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &documentService{
		repo:        repo,
		processor:   processor,
		providers:   registry,
		metrics:     m,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

func (s *documentService) UploadDocument(ctx context.Context, req *models.UploadRequest) (*models.ProcessedDocument, error) {
	item, err := toItem(req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Processing document upload",
		"doc_id", item.ID,
		"application_id", item.ApplicationID,
		"filename", item.File.Name,
		"size", len(item.File.Data))

	outcome := s.processor.Process(ctx, item)
	if errors.Is(outcome.Err, pipeline.ErrDocumentInProgress) {
		return nil, utils.NewConflictError(fmt.Sprintf("Document %q is already being processed", item.ID))
	}
	if outcome.Err != nil {
		s.logger.Error("Failed to store processed document", "error", outcome.Err, "doc_id", item.ID)
		return nil, utils.WrapInternalError("Failed to store document", outcome.Err)
	}

	return toProcessed(outcome), nil
}

// UploadBatch processes every file concurrently. Per-document storage
// failures are reported on that document rather than failing the batch.
func (s *documentService) UploadBatch(ctx context.Context, reqs []*models.UploadRequest) ([]*models.ProcessedDocument, error) {
	if len(reqs) == 0 {
		return nil, utils.NewBadRequestError("No files provided")
	}

	items := make([]pipeline.Item, 0, len(reqs))
	for _, req := range reqs {
		item, err := toItem(req)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	outcomes, err := s.processor.ProcessBatch(ctx, items)
	if errors.Is(err, pipeline.ErrDuplicateDocumentID) {
		return nil, utils.NewBadRequestError(err.Error())
	}
	if err != nil {
		return nil, utils.WrapInternalError("Batch processing was interrupted", err)
	}

	results := make([]*models.ProcessedDocument, 0, len(outcomes))
	for _, outcome := range outcomes {
		processed := toProcessed(outcome)
		if errors.Is(outcome.Err, pipeline.ErrDocumentInProgress) {
			processed.Error = "Document is already being processed"
		} else if outcome.Err != nil {
			s.logger.Error("Failed to store processed document", "error", outcome.Err, "doc_id", outcome.Document.ID)
			processed.Error = "Failed to store document"
		}
		results = append(results, processed)
	}

	s.logger.Info("Batch processed", "documents", len(results))
	return results, nil
}

func (s *documentService) ImportDocument(ctx context.Context, req *models.ImportRequest) (*models.ProcessedDocument, error) {
	if strings.TrimSpace(req.FileID) == "" {
		return nil, utils.NewBadRequestError("fileId is required")
	}

	provider, err := s.provider(req.Provider)
	if err != nil {
		return nil, err
	}

	file, err := provider.Fetch(ctx, req.FileID)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil, utils.NewNotFoundError(fmt.Sprintf("File %q not found in provider %q", req.FileID, req.Provider))
	}
	if errors.Is(err, providers.ErrInvalidFileID) {
		return nil, utils.NewBadRequestError(fmt.Sprintf("Invalid fileId %q", req.FileID))
	}
	if err != nil {
		s.logger.Error("Failed to fetch file", "error", err, "provider", req.Provider, "file_id", req.FileID)
		return nil, utils.WrapInternalError("Failed to fetch file from provider", err)
	}
	if int64(len(file.Data)) > s.maxFileSize {
		return nil, utils.NewBadRequestError(fmt.Sprintf("File size exceeds %dMB limit", s.maxFileSize>>20))
	}

	return s.UploadDocument(ctx, &models.UploadRequest{
		File:          file.Data,
		Filename:      file.Name,
		ContentType:   file.ContentType,
		ApplicationID: req.ApplicationID,
		DocTypeHint:   req.DocTypeHint,
		Requirements:  req.Requirements,
	})
}

func (s *documentService) MatchDocuments(ctx context.Context, req *models.MatchRequest) ([]matcher.MatchScore, error) {
	candidates := req.Candidates
	if req.Provider != "" {
		provider, err := s.provider(req.Provider)
		if err != nil {
			return nil, err
		}
		candidates, err = provider.ListFiles(ctx)
		if err != nil {
			s.logger.Error("Failed to list provider files", "error", err, "provider", req.Provider)
			return nil, utils.WrapInternalError("Failed to list provider files", err)
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = matcher.DefaultLimit
	}

	scores := matcher.Top(matcher.Match(candidates, req.Requirements, matcher.ParseDocTypeHint(req.DocTypeHint)), limit)
	s.metrics.AddMatchResults(len(scores))

	s.logger.Debug("Matched candidates",
		"provider", req.Provider,
		"candidates", len(candidates),
		"matches", len(scores))

	return scores, nil
}

func (s *documentService) VerifyText(req *models.VerifyRequest) models.VerificationResult {
	result := verifier.Verify(req.Text, req.Requirements)
	s.metrics.ObserveConfidence(result.Confidence)
	return result
}

func (s *documentService) ExtractFields(req *models.ExtractRequest) models.ExtractedFields {
	return extractor.ExtractFields(req.Text)
}

// ReverifyDocument scores a stored document's recognized text against a new
// requirement list.
func (s *documentService) ReverifyDocument(ctx context.Context, id string, reqs []string) (*models.Document, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.RecognizedText) == "" {
		return nil, utils.NewBadRequestError("Document has no recognized text to verify")
	}

	result := verifier.Verify(doc.RecognizedText, reqs)
	status := models.StatusRejected
	if result.Matches {
		status = models.StatusVerified
	}

	if err := s.repo.UpdateVerification(ctx, id, status, &result); err != nil {
		s.logger.Error("Failed to update verification", "error", err, "doc_id", id)
		return nil, utils.WrapInternalError("Failed to save verification result", err)
	}
	s.metrics.ObserveConfidence(result.Confidence)

	now := time.Now()
	doc.Status = status
	doc.Verification = &result
	doc.VerifiedAt = &now
	doc.UpdatedAt = now

	s.logger.Info("Document re-verified", "doc_id", id, "status", status, "confidence", result.Confidence)
	return doc, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get document", "error", err, "id", id)
		return nil, utils.WrapInternalError("Failed to retrieve document", err)
	}
	if doc == nil {
		return nil, utils.NewNotFoundError("Document not found")
	}

	return doc, nil
}

func (s *documentService) ListApplicationDocuments(ctx context.Context, applicationID string) ([]*models.Document, error) {
	docs, err := s.repo.ListByApplication(ctx, applicationID)
	if err != nil {
		s.logger.Error("Failed to list documents", "error", err, "application_id", applicationID)
		return nil, utils.WrapInternalError("Failed to list documents", err)
	}
	return docs, nil
}

func (s *documentService) Progress(id string) (int, error) {
	pct, ok := s.processor.Tracker().Get(id)
	if !ok {
		return 0, utils.NewNotFoundError("No progress recorded for document")
	}
	return pct, nil
}

func (s *documentService) CancelProcessing(id string) error {
	if !s.processor.Cancel(id) {
		return utils.NewNotFoundError("Document is not being processed")
	}
	s.logger.Info("Document processing cancelled", "doc_id", id)
	return nil
}

func (s *documentService) provider(name string) (providers.Provider, error) {
	p, err := s.providers.Get(name)
	if err != nil {
		return nil, utils.NewBadRequestError(fmt.Sprintf("Unknown provider %q", name))
	}
	return p, nil
}

func toItem(req *models.UploadRequest) (pipeline.Item, error) {
	if !matcher.AllowedExtension(req.Filename) {
		return pipeline.Item{}, utils.NewBadRequestError(
			fmt.Sprintf("Unsupported file type for %q. Allowed: pdf, doc, docx, jpg, jpeg, png", req.Filename))
	}
	if len(req.File) == 0 {
		return pipeline.Item{}, utils.NewBadRequestError("Uploaded file is empty")
	}

	contentType := req.ContentType
	if format := ocr.DetectFormat(req.Filename, req.ContentType); format != ocr.FormatImage && format != ocr.FormatUnknown {
		contentType = format.ContentType()
	}

	requirements := req.Requirements
	if requirements == nil {
		requirements = []string{}
	}

	return pipeline.Item{
		ID:            req.DocumentID,
		ApplicationID: req.ApplicationID,
		File: models.File{
			Name:        req.Filename,
			ContentType: contentType,
			Data:        req.File,
		},
		DocTypeHint:  string(matcher.ParseDocTypeHint(req.DocTypeHint)),
		Requirements: requirements,
	}, nil
}

func toProcessed(outcome pipeline.Outcome) *models.ProcessedDocument {
	doc := outcome.Document
	return &models.ProcessedDocument{
		ID:            doc.ID,
		ApplicationID: doc.ApplicationID,
		Filename:      doc.Filename,
		FileSize:      doc.FileSize,
		ContentType:   doc.ContentType,
		Status:        doc.Status,
		Fields:        doc.Fields,
		Verification:  doc.Verification,
		Receipt:       outcome.Receipt,
		Error:         doc.Error,
		CreatedAt:     doc.CreatedAt,
	}
}
