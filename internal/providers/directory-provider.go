package providers

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
)

// DirectoryProvider lists regular files below a local folder. Hidden files
// and directories are skipped. IDs are slash-separated paths relative to the root.
type DirectoryProvider struct {
	name string
	root string
}

func NewDirectoryProvider(name, root string) *DirectoryProvider {
	return &DirectoryProvider{name: name, root: root}
}

func (p *DirectoryProvider) Name() string {
	return p.name
}

func (p *DirectoryProvider) ListFiles(ctx context.Context) ([]models.CandidateDocument, error) {
	var docs []models.CandidateDocument

	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != p.root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(p.root, path)
		if err != nil {
			return err
		}

		docs = append(docs, models.CandidateDocument{
			ID:           filepath.ToSlash(rel),
			Name:         d.Name(),
			MimeType:     mimeTypeFor(d.Name()),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("provider %s: failed to list %s: %w", p.name, p.root, err)
	}

	if docs == nil {
		docs = []models.CandidateDocument{}
	}
	return docs, nil
}

func (p *DirectoryProvider) Fetch(ctx context.Context, id string) (models.File, error) {
	rel := filepath.FromSlash(id)
	if !filepath.IsLocal(rel) {
		return models.File{}, fmt.Errorf("provider %s: %w: %q", p.name, ErrInvalidFileID, id)
	}

	data, err := os.ReadFile(filepath.Join(p.root, rel))
	if err != nil {
		return models.File{}, fmt.Errorf("provider %s: %w", p.name, err)
	}

	name := filepath.Base(rel)
	return models.File{Name: name, ContentType: mimeTypeFor(name), Data: data}, nil
}
