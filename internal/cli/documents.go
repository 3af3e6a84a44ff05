package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/loan-document-verifier/internal/extractor"
	"github.com/BerylCAtieno/loan-document-verifier/internal/matcher"
	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
	"github.com/BerylCAtieno/loan-document-verifier/internal/ocr"
	"github.com/BerylCAtieno/loan-document-verifier/internal/providers"
	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
	"github.com/BerylCAtieno/loan-document-verifier/internal/verifier"
)

type verifyReport struct {
	File         string                    `json:"file" yaml:"file"`
	Requirements []string                  `json:"requirements" yaml:"requirements"`
	Verification models.VerificationResult `json:"verification" yaml:"verification"`
	Fields       models.ExtractedFields    `json:"fields" yaml:"fields"`
}

func (a *app) newMatchCommand() *cobra.Command {
	var (
		reqs  []string
		hint  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "match <dir>",
		Short: "Rank the files in a folder against a requirement list",
		Long: `Match scores every file in a folder by requirement keywords found in its
name, plus a bonus when the name fits the document type hint.

Example:
  docreq match ./uploads --requirement "Articles of Incorporation" --hint primary`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := providers.NewDirectoryProvider("local", args[0])
			candidates, err := provider.ListFiles(cmd.Context())
			if err != nil {
				return err
			}

			scores := matcher.Top(matcher.Match(candidates, reqs, matcher.ParseDocTypeHint(hint)), limit)
			return a.render(cmd.OutOrStdout(), map[string]interface{}{"matches": scores})
		},
	}

	cmd.Flags().StringArrayVarP(&reqs, "requirement", "r", nil, "required document name (repeatable)")
	cmd.Flags().StringVar(&hint, "hint", "", "document type hint (primary, tax, identity)")
	cmd.Flags().IntVar(&limit, "limit", matcher.DefaultLimit, "maximum matches to show (0 for all)")

	return cmd
}

func (a *app) newVerifyCommand() *cobra.Command {
	var (
		reqs    []string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Recognize a document and verify it against a requirement list",
		Long: `Verify reads the text of a PDF, DOCX or TXT file (or sends images to the
remote OCR service when one is configured), extracts business fields and
scores the text against the requirements.

Example:
  docreq verify ./articles.pdf --requirement "Articles of Incorporation" -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			name := filepath.Base(path)
			file := models.File{Name: name, ContentType: ocr.DetectFormat(name, "").ContentType(), Data: data}
			text, err := a.engine(timeout).Recognize(ctx, file, func(int) {})
			if err != nil {
				return fmt.Errorf("failed to recognize %s: %w", name, err)
			}

			if reqs == nil {
				reqs = []string{}
			}
			return a.render(cmd.OutOrStdout(), verifyReport{
				File:         name,
				Requirements: reqs,
				Verification: verifier.Verify(text, reqs),
				Fields:       extractor.ExtractFields(text),
			})
		},
	}

	cmd.Flags().StringArrayVarP(&reqs, "requirement", "r", nil, "required document name (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "recognition timeout")

	return cmd
}

func (a *app) engine(timeout time.Duration) ocr.Engine {
	var remote ocr.Engine
	if endpoint := a.v.GetString("ocr-endpoint"); endpoint != "" {
		remote = ocr.NewRemoteEngine(ocr.RemoteOptions{
			Endpoint: endpoint,
			APIKey:   a.v.GetString("ocr-api-key"),
			Timeout:  timeout,
		}, utils.NewDiscardLogger())
	}
	return ocr.Fallback(ocr.NewTextEngine(), remote)
}
