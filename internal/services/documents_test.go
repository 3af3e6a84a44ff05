package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/BerylCAtieno/loan-document-verifier/internal/db"
	"github.com/BerylCAtieno/loan-document-verifier/internal/metrics"
	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
	"github.com/BerylCAtieno/loan-document-verifier/internal/ocr"
	"github.com/BerylCAtieno/loan-document-verifier/internal/pipeline"
	"github.com/BerylCAtieno/loan-document-verifier/internal/providers"
	"github.com/BerylCAtieno/loan-document-verifier/internal/repository"
	"github.com/BerylCAtieno/loan-document-verifier/internal/storage"
	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
)

const testMaxFileSize = 1024

// textByName recognizes a file as the text stored under its name.
type textByName map[string]string

func (e textByName) Recognize(ctx context.Context, file ocr.File, progress ocr.ProgressFunc) (string, error) {
	progress(50)
	text, ok := e[file.Name]
	if !ok {
		return "", ocr.ErrUnsupportedFormat
	}
	return text, nil
}

type DocumentServiceSuite struct {
	suite.Suite
	ctx     context.Context
	service DocumentService
	repo    repository.Repository
	metrics *metrics.Metrics
	dir     string
}

func TestDocumentServiceSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceSuite))
}

func (s *DocumentServiceSuite) SetupTest() {
	s.ctx = context.Background()

	conn, err := db.NewSQLiteDB(":memory:")
	s.Require().NoError(err)
	s.Require().NoError(db.RunMigrations(conn))
	s.T().Cleanup(func() { conn.Close() })

	s.dir = s.T().TempDir()
	s.writeFile("articles_of_incorporation.pdf", "pdf bytes")
	s.writeFile("bank_statement.pdf", "statement bytes")

	logger := utils.NewDiscardLogger()
	s.repo = repository.NewRepository(conn)
	s.metrics = metrics.New(prometheus.NewRegistry())

	engine := textByName{
		"articles.pdf":                  "Articles of Incorporation\nEIN: 98-7654321",
		"invoice.pdf":                   "Invoice 1001",
		"articles_of_incorporation.pdf": "Articles of Incorporation of Acme Corp",
	}
	processor := pipeline.NewProcessor(pipeline.Options{
		Engine:  engine,
		Ledger:  storage.NewLedger(storage.NewMemoryStorage(), logger),
		Store:   s.repo,
		Metrics: s.metrics,
		Logger:  logger,
		Workers: 2,
	})
	registry := providers.NewRegistry(providers.NewDirectoryProvider("local", s.dir))

	s.service = NewDocumentService(s.repo, processor, registry, s.metrics, logger, testMaxFileSize)
}

func (s *DocumentServiceSuite) writeFile(name, content string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0o644))
}

func upload(name string) *models.UploadRequest {
	return &models.UploadRequest{
		File:          []byte("content of " + name),
		Filename:      name,
		ContentType:   "application/pdf",
		ApplicationID: "app-1",
		Requirements:  []string{"Articles of Incorporation"},
	}
}

func (s *DocumentServiceSuite) TestUploadDocument() {
	s.Run("verified upload is persisted with a ledger receipt", func() {
		processed, err := s.service.UploadDocument(s.ctx, upload("articles.pdf"))
		s.Require().NoError(err)

		s.Equal(models.StatusVerified, processed.Status)
		s.Equal("987654321", processed.Fields["taxId"])
		s.Require().NotNil(processed.Receipt)
		s.Equal(storage.HashContent([]byte("content of articles.pdf")), processed.Receipt.Hash)

		stored, err := s.service.GetDocument(s.ctx, processed.ID)
		s.Require().NoError(err)
		s.Equal(processed.Receipt.Hash, stored.LedgerHash)
		s.Equal(models.StatusVerified, stored.Status)
	})

	s.Run("recognition failure leaves the document unverified", func() {
		processed, err := s.service.UploadDocument(s.ctx, upload("scan.png"))
		s.Require().NoError(err)

		s.Equal(models.StatusUnverified, processed.Status)
		s.Nil(processed.Verification)
		s.NotEmpty(processed.Error)
	})

	s.Run("rejects disallowed extensions", func() {
		_, err := s.service.UploadDocument(s.ctx, upload("notes.txt"))
		s.Require().Error(err)
		s.Equal(400, utils.StatusCode(err))
	})

	s.Run("rejects empty files", func() {
		req := upload("empty.pdf")
		req.File = nil
		_, err := s.service.UploadDocument(s.ctx, req)
		s.Equal(400, utils.StatusCode(err))
	})

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.DocumentsProcessed.WithLabelValues("verified")))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.DocumentsProcessed.WithLabelValues("unverified")))
}

func (s *DocumentServiceSuite) TestUploadBatch() {
	results, err := s.service.UploadBatch(s.ctx, []*models.UploadRequest{
		upload("articles.pdf"),
		upload("invoice.pdf"),
		upload("scan.jpg"),
	})
	s.Require().NoError(err)
	s.Require().Len(results, 3)

	s.Equal("articles.pdf", results[0].Filename)
	s.Equal(models.StatusVerified, results[0].Status)
	s.Equal(models.StatusRejected, results[1].Status)
	s.Equal(models.StatusUnverified, results[2].Status)

	docs, err := s.service.ListApplicationDocuments(s.ctx, "app-1")
	s.Require().NoError(err)
	s.Len(docs, 3)

	s.Run("duplicate ids are a bad request", func() {
		a, b := upload("articles.pdf"), upload("invoice.pdf")
		a.DocumentID, b.DocumentID = "same", "same"
		_, err := s.service.UploadBatch(s.ctx, []*models.UploadRequest{a, b})
		s.Equal(400, utils.StatusCode(err))
	})

	s.Run("empty batch is a bad request", func() {
		_, err := s.service.UploadBatch(s.ctx, nil)
		s.Equal(400, utils.StatusCode(err))
	})
}

func (s *DocumentServiceSuite) TestImportDocument() {
	processed, err := s.service.ImportDocument(s.ctx, &models.ImportRequest{
		Provider:      "local",
		FileID:        "articles_of_incorporation.pdf",
		ApplicationID: "app-2",
		Requirements:  []string{"Articles of Incorporation"},
	})
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, processed.Status)
	s.Equal(int64(len("pdf bytes")), processed.FileSize)

	_, err = s.service.ImportDocument(s.ctx, &models.ImportRequest{Provider: "local", FileID: "missing.pdf"})
	s.Equal(404, utils.StatusCode(err))

	_, err = s.service.ImportDocument(s.ctx, &models.ImportRequest{Provider: "drive", FileID: "x.pdf"})
	s.Equal(400, utils.StatusCode(err))
}

func (s *DocumentServiceSuite) TestImportRejectsInvalidFiles() {
	s.writeFile("large_articles.pdf", strings.Repeat("x", testMaxFileSize+1))

	_, err := s.service.ImportDocument(s.ctx, &models.ImportRequest{Provider: "local", FileID: "large_articles.pdf"})
	s.Equal(400, utils.StatusCode(err))
	s.Contains(err.Error(), "exceeds")

	_, err = s.service.ImportDocument(s.ctx, &models.ImportRequest{Provider: "local", FileID: "../outside.pdf"})
	s.Equal(400, utils.StatusCode(err))

	docs, err := s.repo.ListByApplication(s.ctx, "")
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *DocumentServiceSuite) TestMatchDocuments() {
	s.Run("explicit candidates", func() {
		scores, err := s.service.MatchDocuments(s.ctx, &models.MatchRequest{
			Candidates: []models.CandidateDocument{
				{ID: "1", Name: "articles_of_incorporation.pdf"},
				{ID: "2", Name: "photo.gif"},
				{ID: "3", Name: "random.pdf"},
			},
			Requirements: []string{"Articles of Incorporation"},
			DocTypeHint:  "primary",
		})
		s.Require().NoError(err)
		s.Require().Len(scores, 1)
		s.Equal("1", scores[0].DocumentID)
		s.Equal(35, scores[0].Score)
	})

	s.Run("provider listing", func() {
		scores, err := s.service.MatchDocuments(s.ctx, &models.MatchRequest{
			Provider:     "local",
			Requirements: []string{"Bank Statement"},
		})
		s.Require().NoError(err)
		s.Require().Len(scores, 1)
		s.Equal("bank_statement.pdf", scores[0].DocumentID)
	})

	s.Run("limit", func() {
		candidates := make([]models.CandidateDocument, 0, 8)
		for i := 0; i < 8; i++ {
			candidates = append(candidates, models.CandidateDocument{ID: string(rune('a' + i)), Name: "statement.pdf"})
		}
		scores, err := s.service.MatchDocuments(s.ctx, &models.MatchRequest{
			Candidates:   candidates,
			Requirements: []string{"Statement"},
		})
		s.Require().NoError(err)
		s.Len(scores, 5)
	})

	s.Run("unknown provider", func() {
		_, err := s.service.MatchDocuments(s.ctx, &models.MatchRequest{Provider: "drive"})
		s.Equal(400, utils.StatusCode(err))
	})
}

func (s *DocumentServiceSuite) TestReverifyDocument() {
	processed, err := s.service.UploadDocument(s.ctx, upload("invoice.pdf"))
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, processed.Status)

	doc, err := s.service.ReverifyDocument(s.ctx, processed.ID, []string{"Invoice"})
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, doc.Status)

	stored, err := s.service.GetDocument(s.ctx, processed.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, stored.Status)
	s.Equal([]string{"invoice"}, stored.Verification.MatchedKeywords)

	unverified, err := s.service.UploadDocument(s.ctx, upload("scan.jpg"))
	s.Require().NoError(err)
	_, err = s.service.ReverifyDocument(s.ctx, unverified.ID, []string{"Invoice"})
	s.Equal(400, utils.StatusCode(err))

	_, err = s.service.ReverifyDocument(s.ctx, "missing", []string{"Invoice"})
	s.Equal(404, utils.StatusCode(err))
}

func (s *DocumentServiceSuite) TestProgressAndCancel() {
	processed, err := s.service.UploadDocument(s.ctx, upload("articles.pdf"))
	s.Require().NoError(err)

	pct, err := s.service.Progress(processed.ID)
	s.Require().NoError(err)
	s.Equal(100, pct)

	_, err = s.service.Progress("unknown")
	s.Equal(404, utils.StatusCode(err))

	err = s.service.CancelProcessing(processed.ID)
	s.Equal(404, utils.StatusCode(err))
}

func (s *DocumentServiceSuite) TestVerifyAndExtract() {
	result := s.service.VerifyText(&models.VerifyRequest{
		Text:         "This Operating Agreement of Acme LLC",
		Requirements: []string{"Operating Agreement"},
	})
	s.True(result.Matches)

	empty := s.service.VerifyText(&models.VerifyRequest{Requirements: []string{"Operating Agreement"}})
	s.False(empty.Matches)
	s.Empty(empty.MatchedKeywords)

	fields := s.service.ExtractFields(&models.ExtractRequest{Text: "Tax ID: 12-3456789"})
	s.Equal(models.ExtractedFields{"taxId": "123456789"}, fields)
}

func TestGetDocumentRepositoryFailure(t *testing.T) {
	service := NewDocumentService(failingRepo{}, nil, nil, nil, utils.NewDiscardLogger(), 0)

	_, err := service.GetDocument(context.Background(), "doc-1")
	if utils.StatusCode(err) != 500 {
		t.Fatalf("expected 500, got %d", utils.StatusCode(err))
	}
}

type failingRepo struct{ repository.Repository }

func (failingRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	return nil, errors.New("database is locked")
}

// gatedEngine holds recognition until release is closed.
type gatedEngine struct {
	started chan struct{}
	release chan struct{}
}

func (e gatedEngine) Recognize(ctx context.Context, file ocr.File, progress ocr.ProgressFunc) (string, error) {
	close(e.started)
	select {
	case <-e.release:
		return "Articles of Incorporation", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestUploadWithRunningDocumentIDConflicts(t *testing.T) {
	engine := gatedEngine{started: make(chan struct{}), release: make(chan struct{})}
	processor := pipeline.NewProcessor(pipeline.Options{Engine: engine})
	service := NewDocumentService(failingRepo{}, processor, nil, nil, utils.NewDiscardLogger(), 0)

	first := upload("articles.pdf")
	first.DocumentID = "doc-1"

	done := make(chan *models.ProcessedDocument, 1)
	go func() {
		processed, _ := service.UploadDocument(context.Background(), first)
		done <- processed
	}()
	<-engine.started

	second := upload("articles.pdf")
	second.DocumentID = "doc-1"
	_, err := service.UploadDocument(context.Background(), second)
	require.Error(t, err)
	assert.Equal(t, 409, utils.StatusCode(err))

	close(engine.release)
	processed := <-done
	require.NotNil(t, processed)
	assert.Equal(t, models.StatusVerified, processed.Status)
}
