package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BerylCAtieno/loan-document-verifier/internal/handlers"
	"github.com/BerylCAtieno/loan-document-verifier/internal/middleware"
	"github.com/BerylCAtieno/loan-document-verifier/internal/services"
	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
)

type Options struct {
	Documents    services.DocumentService
	Requirements services.RequirementService
	Logger       *utils.Logger
	// Gatherer backs GET /metrics; nil serves the default registry.
	Gatherer    prometheus.Gatherer
	MaxFileSize int64
}

func NewRouter(opts Options) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(opts.Logger))

	docHandler := handlers.NewDocumentHandler(opts.Documents, opts.Logger, opts.MaxFileSize)
	reqHandler := handlers.NewRequirementHandler(opts.Requirements, opts.Logger)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Requirement endpoints
	api.HandleFunc("/requirements/entity", reqHandler.EntityRequirements).Methods(http.MethodPost)
	api.HandleFunc("/requirements/tax", reqHandler.TaxRequirements).Methods(http.MethodPost)
	api.HandleFunc("/requirements/identity/{status}", reqHandler.IdentityDocuments).Methods(http.MethodGet)
	api.HandleFunc("/requirements/resolve", reqHandler.Resolve).Methods(http.MethodPost)

	// Document endpoints
	api.HandleFunc("/documents/match", docHandler.MatchDocuments).Methods(http.MethodPost)
	api.HandleFunc("/documents/upload", docHandler.UploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents/batch", docHandler.UploadBatch).Methods(http.MethodPost)
	api.HandleFunc("/documents/import", docHandler.ImportDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents/verify", docHandler.VerifyText).Methods(http.MethodPost)
	api.HandleFunc("/documents/extract", docHandler.ExtractFields).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}", docHandler.GetDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/verify", docHandler.ReverifyDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}/progress", docHandler.GetProgress).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/processing", docHandler.CancelProcessing).Methods(http.MethodDelete)
	api.HandleFunc("/applications/{id}/documents", docHandler.ListApplicationDocuments).Methods(http.MethodGet)

	return r
}
