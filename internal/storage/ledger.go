package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
)

const (
	ledgerPrefix     = "ledger"
	metadataFilename = "metadata.json"
)

// LedgerEntry is the JSON sidecar written next to every stored file.
type LedgerEntry struct {
	Hash        string            `json:"hash"`
	Key         string            `json:"key"`
	Filename    string            `json:"filename"`
	ContentType string            `json:"contentType"`
	Size        int64             `json:"size"`
	StoredAt    time.Time         `json:"storedAt"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Ledger is an append-only, content-addressed document store. Files are keyed
// by their SHA-256 hash and an entry is never overwritten once written.
type Ledger struct {
	store  Storage
	logger *utils.Logger
	now    func() time.Time

	// serialises the check-then-write on a hash
	mu sync.Mutex
}

func NewLedger(store Storage, logger *utils.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// HashContent returns the hex SHA-256 digest used as a ledger address.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Store writes file and its metadata under the content hash. Storing content
// that is already in the ledger returns the original receipt untouched.
func (l *Ledger) Store(ctx context.Context, file models.File, metadata map[string]string) (models.LedgerReceipt, error) {
	hash := HashContent(file.Data)

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.Lookup(ctx, hash)
	if err == nil {
		l.logger.Info("Ledger entry already exists", "hash", hash, "filename", existing.Filename)
		return models.LedgerReceipt{Hash: hash, URL: l.store.URL(existing.Key)}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.LedgerReceipt{}, err
	}

	key := path.Join(ledgerPrefix, hash, sanitizeFilename(file.Name))
	if err := l.store.Upload(ctx, key, file.Data, file.ContentType); err != nil {
		return models.LedgerReceipt{}, fmt.Errorf("failed to store ledger content: %w", err)
	}

	entry := LedgerEntry{
		Hash:        hash,
		Key:         key,
		Filename:    file.Name,
		ContentType: file.ContentType,
		Size:        int64(len(file.Data)),
		StoredAt:    l.now().UTC(),
		Metadata:    metadata,
	}
	sidecar, err := json.Marshal(entry)
	if err != nil {
		return models.LedgerReceipt{}, fmt.Errorf("failed to marshal ledger metadata: %w", err)
	}

	// The sidecar marks the entry as committed, so it is written last.
	if err := l.store.Upload(ctx, metadataKey(hash), sidecar, "application/json"); err != nil {
		_ = l.store.Delete(ctx, key)
		return models.LedgerReceipt{}, fmt.Errorf("failed to store ledger metadata: %w", err)
	}

	l.logger.Info("Stored document in ledger", "hash", hash, "key", key, "size", entry.Size)

	return models.LedgerReceipt{Hash: hash, URL: l.store.URL(key)}, nil
}

// Lookup returns the entry for a hash, or ErrNotFound.
func (l *Ledger) Lookup(ctx context.Context, hash string) (LedgerEntry, error) {
	exists, err := l.store.Exists(ctx, metadataKey(hash))
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("failed to check ledger entry: %w", err)
	}
	if !exists {
		return LedgerEntry{}, fmt.Errorf("%w: ledger entry %s", ErrNotFound, hash)
	}

	data, err := l.store.Download(ctx, metadataKey(hash))
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("failed to read ledger metadata: %w", err)
	}

	var entry LedgerEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return LedgerEntry{}, fmt.Errorf("failed to decode ledger metadata: %w", err)
	}
	return entry, nil
}

// Verify re-hashes the stored content and reports whether it still matches
// its address.
func (l *Ledger) Verify(ctx context.Context, hash string) (bool, error) {
	entry, err := l.Lookup(ctx, hash)
	if err != nil {
		return false, err
	}
	data, err := l.store.Download(ctx, entry.Key)
	if err != nil {
		return false, fmt.Errorf("failed to read ledger content: %w", err)
	}
	return HashContent(data) == hash, nil
}

func metadataKey(hash string) string {
	return path.Join(ledgerPrefix, hash, metadataFilename)
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == "" || name == metadataFilename {
		return "document"
	}
	return name
}
