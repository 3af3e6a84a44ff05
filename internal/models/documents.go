package models

import (
	"time"
)

type DocumentStatus string

const (
	StatusVerified   DocumentStatus = "verified"
	StatusRejected   DocumentStatus = "rejected"
	StatusUnverified DocumentStatus = "unverified"
)

// CandidateDocument is a file offered for a requirement, either listed by a
// provider or uploaded directly. RecognizedText is filled once after OCR.
type CandidateDocument struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	MimeType       string    `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Size           int64     `json:"size" yaml:"size"`
	LastModified   time.Time `json:"lastModified" yaml:"lastModified"`
	WebViewLink    string    `json:"webViewLink,omitempty" yaml:"webViewLink,omitempty"`
	RecognizedText *string   `json:"recognizedText,omitempty" yaml:"recognizedText,omitempty"`
}

// ExtractedFields maps a field name (see extractor.Field*) to its value.
// A missing key means the field was not found.
type ExtractedFields map[string]string

type VerificationResult struct {
	Matches         bool     `json:"matches" yaml:"matches"`
	Confidence      float64  `json:"confidence" yaml:"confidence"`
	MatchedKeywords []string `json:"matchedKeywords" yaml:"matchedKeywords"`
}

type LedgerReceipt struct {
	Hash string `json:"hash" yaml:"hash"`
	URL  string `json:"url" yaml:"url"`
}

// Document is the persisted record of one processed upload.
type Document struct {
	ID             string              `json:"id" db:"id"`
	ApplicationID  string              `json:"application_id" db:"application_id"`
	Filename       string              `json:"filename" db:"filename"`
	FileSize       int64               `json:"file_size" db:"file_size"`
	ContentType    string              `json:"content_type" db:"content_type"`
	DocTypeHint    string              `json:"doc_type_hint,omitempty" db:"doc_type_hint"`
	LedgerHash     string              `json:"ledger_hash,omitempty" db:"ledger_hash"`
	LedgerURL      string              `json:"ledger_url,omitempty" db:"ledger_url"`
	Status         DocumentStatus      `json:"status" db:"status"`
	RecognizedText string              `json:"recognized_text,omitempty" db:"recognized_text"`
	Requirements   []string            `json:"requirements" db:"-"`
	Fields         ExtractedFields     `json:"extracted_fields" db:"-"`
	Verification   *VerificationResult `json:"verification_result,omitempty" db:"-"`
	Error          string              `json:"error,omitempty" db:"error"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" db:"updated_at"`
	VerifiedAt     *time.Time          `json:"verified_at,omitempty" db:"verified_at"`
}

// UploadRequest is one file submitted for processing. DocumentID is optional;
// a client that supplies it can poll progress or cancel while it runs.
type UploadRequest struct {
	DocumentID    string
	File          []byte
	Filename      string
	ContentType   string
	ApplicationID string
	DocTypeHint   string
	Requirements  []string
}

// ProcessedDocument is returned after an upload has gone through recognition,
// extraction, verification and the ledger.
type ProcessedDocument struct {
	ID            string              `json:"id"`
	ApplicationID string              `json:"application_id"`
	Filename      string              `json:"filename"`
	FileSize      int64               `json:"file_size"`
	ContentType   string              `json:"content_type"`
	Status        DocumentStatus      `json:"status"`
	Fields        ExtractedFields     `json:"extracted_fields"`
	Verification  *VerificationResult `json:"verification_result,omitempty"`
	Receipt       *LedgerReceipt      `json:"ledger_receipt,omitempty"`
	Error         string              `json:"error,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type MatchRequest struct {
	Provider     string              `json:"provider,omitempty"`
	Candidates   []CandidateDocument `json:"candidates,omitempty"`
	Requirements []string            `json:"requirements"`
	DocTypeHint  string              `json:"docTypeHint,omitempty"`
	Limit        int                 `json:"limit,omitempty"`
}

// ImportRequest processes a file held by a named provider.
type ImportRequest struct {
	Provider      string   `json:"provider"`
	FileID        string   `json:"fileId"`
	ApplicationID string   `json:"applicationId"`
	DocTypeHint   string   `json:"docTypeHint,omitempty"`
	Requirements  []string `json:"requirements"`
}

type VerifyRequest struct {
	Text         string   `json:"text"`
	Requirements []string `json:"requirements"`
}

type ReverifyRequest struct {
	Requirements []string `json:"requirements"`
}

type ExtractRequest struct {
	Text string `json:"text"`
}

// File is an in-memory upload handed to recognition and the ledger.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}
