package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

type Repository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListByApplication(ctx context.Context, applicationID string) ([]*models.Document, error)
	UpdateVerification(ctx context.Context, id string, status models.DocumentStatus, result *models.VerificationResult) error
}

type repository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, now: time.Now}
}

// documentRow is the column layout of the documents table. Slices, maps and
// the verification result are stored as JSON text.
type documentRow struct {
	ID               string         `db:"id"`
	ApplicationID    string         `db:"application_id"`
	Filename         string         `db:"filename"`
	FileSize         int64          `db:"file_size"`
	ContentType      string         `db:"content_type"`
	DocTypeHint      string         `db:"doc_type_hint"`
	LedgerHash       string         `db:"ledger_hash"`
	LedgerURL        string         `db:"ledger_url"`
	Status           string         `db:"status"`
	RecognizedText   string         `db:"recognized_text"`
	RequirementsJSON string         `db:"requirements"`
	FieldsJSON       string         `db:"extracted_fields"`
	VerificationJSON sql.NullString `db:"verification_result"`
	Error            string         `db:"error"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	VerifiedAt       sql.NullTime   `db:"verified_at"`
}

const selectColumns = `
	SELECT id, application_id, filename, file_size, content_type, doc_type_hint,
	       ledger_hash, ledger_url, status, recognized_text, requirements,
	       extracted_fields, verification_result, error, created_at, updated_at, verified_at
	FROM documents`

func toRow(doc *models.Document) (*documentRow, error) {
	requirements := doc.Requirements
	if requirements == nil {
		requirements = []string{}
	}
	reqJSON, err := json.Marshal(requirements)
	if err != nil {
		return nil, fmt.Errorf("failed to encode requirements: %w", err)
	}

	fields := doc.Fields
	if fields == nil {
		fields = models.ExtractedFields{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode extracted fields: %w", err)
	}

	row := &documentRow{
		ID:               doc.ID,
		ApplicationID:    doc.ApplicationID,
		Filename:         doc.Filename,
		FileSize:         doc.FileSize,
		ContentType:      doc.ContentType,
		DocTypeHint:      doc.DocTypeHint,
		LedgerHash:       doc.LedgerHash,
		LedgerURL:        doc.LedgerURL,
		Status:           string(doc.Status),
		RecognizedText:   doc.RecognizedText,
		RequirementsJSON: string(reqJSON),
		FieldsJSON:       string(fieldsJSON),
		Error:            doc.Error,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
	if doc.Verification != nil {
		verJSON, err := json.Marshal(doc.Verification)
		if err != nil {
			return nil, fmt.Errorf("failed to encode verification result: %w", err)
		}
		row.VerificationJSON = sql.NullString{String: string(verJSON), Valid: true}
	}
	if doc.VerifiedAt != nil {
		row.VerifiedAt = sql.NullTime{Time: *doc.VerifiedAt, Valid: true}
	}
	return row, nil
}

func (row *documentRow) toDocument() (*models.Document, error) {
	doc := &models.Document{
		ID:             row.ID,
		ApplicationID:  row.ApplicationID,
		Filename:       row.Filename,
		FileSize:       row.FileSize,
		ContentType:    row.ContentType,
		DocTypeHint:    row.DocTypeHint,
		LedgerHash:     row.LedgerHash,
		LedgerURL:      row.LedgerURL,
		Status:         models.DocumentStatus(row.Status),
		RecognizedText: row.RecognizedText,
		Error:          row.Error,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.VerifiedAt.Valid {
		verifiedAt := row.VerifiedAt.Time
		doc.VerifiedAt = &verifiedAt
	}

	if err := json.Unmarshal([]byte(row.RequirementsJSON), &doc.Requirements); err != nil {
		return nil, fmt.Errorf("failed to decode requirements: %w", err)
	}
	if err := json.Unmarshal([]byte(row.FieldsJSON), &doc.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode extracted fields: %w", err)
	}
	if row.VerificationJSON.Valid && row.VerificationJSON.String != "" {
		var result models.VerificationResult
		if err := json.Unmarshal([]byte(row.VerificationJSON.String), &result); err != nil {
			return nil, fmt.Errorf("failed to decode verification result: %w", err)
		}
		doc.Verification = &result
	}
	return doc, nil
}

func (r *repository) Create(ctx context.Context, doc *models.Document) error {
	row, err := toRow(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (id, application_id, filename, file_size, content_type, doc_type_hint,
		                       ledger_hash, ledger_url, status, recognized_text, requirements,
		                       extracted_fields, verification_result, error, created_at, updated_at, verified_at)
		VALUES (:id, :application_id, :filename, :file_size, :content_type, :doc_type_hint,
		        :ledger_hash, :ledger_url, :status, :recognized_text, :requirements,
		        :extracted_fields, :verification_result, :error, :created_at, :updated_at, :verified_at)
	`

	_, err = r.db.NamedExecContext(ctx, query, row)
	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var row documentRow

	err := r.db.GetContext(ctx, &row, selectColumns+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return row.toDocument()
}

// ListByApplication returns an application's documents, oldest first.
func (r *repository) ListByApplication(ctx context.Context, applicationID string) ([]*models.Document, error) {
	var rows []documentRow

	err := r.db.SelectContext(ctx, &rows,
		selectColumns+` WHERE application_id = ? ORDER BY created_at, id`, applicationID)
	if err != nil {
		return nil, err
	}

	docs := make([]*models.Document, 0, len(rows))
	for i := range rows {
		doc, err := rows[i].toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// UpdateVerification records a new verification outcome. A nil result
// clears the stored verification.
func (r *repository) UpdateVerification(ctx context.Context, id string, status models.DocumentStatus, result *models.VerificationResult) error {
	var verJSON sql.NullString
	var verifiedAt sql.NullTime

	now := r.now()
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode verification result: %w", err)
		}
		verJSON = sql.NullString{String: string(data), Valid: true}
		verifiedAt = sql.NullTime{Time: now, Valid: true}
	}

	query := `
		UPDATE documents
		SET status = ?, verification_result = ?, verified_at = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := r.db.ExecContext(ctx, query, string(status), verJSON, verifiedAt, now, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
