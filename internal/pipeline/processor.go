// Package pipeline runs uploaded documents through recognition, field
// extraction, verification, the ledger and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/loan-document-verifier/internal/extractor"
	"github.com/BerylCAtieno/loan-document-verifier/internal/metrics"
	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
	"github.com/BerylCAtieno/loan-document-verifier/internal/ocr"
	"github.com/BerylCAtieno/loan-document-verifier/internal/progress"
	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
	"github.com/BerylCAtieno/loan-document-verifier/internal/verifier"
)

const DefaultWorkers = 4

var (
	ErrDuplicateDocumentID = errors.New("duplicate document id in batch")
	ErrDocumentInProgress  = errors.New("document is already being processed")
)

type Ledger interface {
	Store(ctx context.Context, file models.File, metadata map[string]string) (models.LedgerReceipt, error)
}

type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
}

// Item is one document submitted for processing. An empty ID is filled in.
type Item struct {
	ID            string
	ApplicationID string
	File          models.File
	DocTypeHint   string
	Requirements  []string
}

// Outcome is the per-document result. Err is set when the ledger or the
// database failed, or when the id was already running; recognition failures
// only mark the document unverified.
type Outcome struct {
	Document *models.Document
	Receipt  *models.LedgerReceipt
	Err      error
}

type Processor struct {
	engine  ocr.Engine
	ledger  Ledger
	store   DocumentStore
	tracker *progress.Tracker
	metrics *metrics.Metrics
	logger  *utils.Logger
	workers int
	now     func() time.Time

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

type Options struct {
	Engine  ocr.Engine
	Ledger  Ledger
	Store   DocumentStore
	Tracker *progress.Tracker
	Metrics *metrics.Metrics
	Logger  *utils.Logger
	Workers int
}

func NewProcessor(opts Options) *Processor {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = progress.NewTracker()
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewDiscardLogger()
	}

	return &Processor{
		engine:  opts.Engine,
		ledger:  opts.Ledger,
		store:   opts.Store,
		tracker: tracker,
		metrics: opts.Metrics,
		logger:  logger,
		workers: workers,
		now:     time.Now,
		cancels: make(map[string]context.CancelFunc),
	}
}

func (p *Processor) Tracker() *progress.Tracker {
	return p.tracker
}

// ProcessBatch processes items on a bounded pool and returns outcomes in
// input order. A failing document never stops the others; the returned error
// is only set for an invalid batch or a cancelled ctx.
func (p *Processor) ProcessBatch(ctx context.Context, items []Item) ([]Outcome, error) {
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = utils.GenerateID()
		}
		if _, dup := seen[items[i].ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDocumentID, items[i].ID)
		}
		seen[items[i].ID] = struct{}{}
	}

	outcomes := make([]Outcome, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, item := range items {
		g.Go(func() error {
			outcomes[i] = p.Process(gctx, item)
			return nil
		})
	}

	_ = g.Wait()
	return outcomes, ctx.Err()
}

// Process runs a single document through the pipeline.
func (p *Processor) Process(ctx context.Context, item Item) Outcome {
	if item.ID == "" {
		item.ID = utils.GenerateID()
	}
	log := p.logger.With("doc_id", item.ID, "filename", item.File.Name)

	now := p.now()
	doc := &models.Document{
		ID:            item.ID,
		ApplicationID: item.ApplicationID,
		Filename:      item.File.Name,
		FileSize:      int64(len(item.File.Data)),
		ContentType:   item.File.ContentType,
		DocTypeHint:   item.DocTypeHint,
		Requirements:  item.Requirements,
		Status:        models.StatusUnverified,
		Fields:        models.ExtractedFields{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if doc.Requirements == nil {
		doc.Requirements = []string{}
	}

	docCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !p.register(item.ID, cancel) {
		log.Warn("Document is already being processed")
		return Outcome{Document: doc, Err: fmt.Errorf("%w: %s", ErrDocumentInProgress, item.ID)}
	}
	defer p.unregister(item.ID)
	p.tracker.Reset(item.ID)

	start := time.Now()
	text, err := p.engine.Recognize(docCtx, item.File, p.tracker.Reporter(item.ID))
	if err != nil {
		p.metrics.ObserveOCRLatency("error", time.Since(start))
		log.Warn("Recognition failed; document left unverified", "error", err)
		doc.Error = err.Error()
	} else {
		p.metrics.ObserveOCRLatency("success", time.Since(start))
		p.tracker.Set(item.ID, 100)

		result := verifier.Verify(text, item.Requirements)
		doc.RecognizedText = text
		doc.Fields = extractor.ExtractFields(text)
		doc.Verification = &result
		doc.VerifiedAt = &now
		doc.Status = models.StatusRejected
		if result.Matches {
			doc.Status = models.StatusVerified
		}
		p.metrics.ObserveConfidence(result.Confidence)
	}

	outcome := Outcome{Document: doc}

	// Storage and persistence run on ctx so a cancelled recognition still
	// leaves a record behind.
	if p.ledger != nil {
		receipt, err := p.ledger.Store(ctx, item.File, map[string]string{
			"documentId":    doc.ID,
			"applicationId": doc.ApplicationID,
			"status":        string(doc.Status),
		})
		if err != nil {
			log.Error("Failed to store document in ledger", "error", err)
			outcome.Err = fmt.Errorf("ledger: %w", err)
			p.metrics.IncrementProcessed(string(doc.Status))
			return outcome
		}
		doc.LedgerHash = receipt.Hash
		doc.LedgerURL = receipt.URL
		outcome.Receipt = &receipt
	}

	if p.store != nil {
		if err := p.store.Create(ctx, doc); err != nil {
			log.Error("Failed to save document", "error", err)
			outcome.Err = fmt.Errorf("persist: %w", err)
		}
	}

	p.metrics.IncrementProcessed(string(doc.Status))
	log.Info("Document processed", "status", doc.Status)

	return outcome
}

// Cancel stops recognition of one in-flight document. It reports whether the
// document was running.
func (p *Processor) Cancel(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	cancel, ok := p.cancels[id]
	if ok {
		cancel()
	}
	return ok
}

// register claims id for one run. It fails when another run holds the id.
func (p *Processor) register(id string, cancel context.CancelFunc) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, running := p.cancels[id]; running {
		return false
	}
	p.cancels[id] = cancel
	return true
}

func (p *Processor) unregister(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cancels, id)
}
