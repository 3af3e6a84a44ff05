package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
)

type remoteEngine struct {
	endpoint string
	apiKey   string
	limiter  *rate.Limiter
	logger   *utils.Logger
	client   *http.Client
}

type RemoteOptions struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	// RequestsPerSecond limits calls to the service; zero or less disables limiting.
	RequestsPerSecond float64
}

type RecognizeRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type RecognizeResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewRemoteEngine returns an Engine backed by an HTTP OCR service.
func NewRemoteEngine(opts RemoteOptions, logger *utils.Logger) Engine {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &remoteEngine{
		endpoint: opts.Endpoint,
		apiKey:   opts.APIKey,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *remoteEngine) Recognize(ctx context.Context, file File, progress ProgressFunc) (string, error) {
	report(progress, 0)

	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("ocr rate limiter: %w", err)
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(file.Name)))
	}
	if contentType == "" {
		contentType = DetectFormat(file.Name, "").ContentType()
	}

	jsonData, err := json.Marshal(RecognizeRequest{
		Filename:    file.Name,
		ContentType: contentType,
		Content:     base64.StdEncoding.EncodeToString(file.Data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	report(progress, 10)

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	report(progress, 90)

	if resp.StatusCode != http.StatusOK {
		e.logger.Error("OCR service error", "status", resp.StatusCode, "body", string(body), "filename", file.Name)
		return "", fmt.Errorf("OCR service returned status %d", resp.StatusCode)
	}

	var ocrResp RecognizeResponse
	if err := json.Unmarshal(body, &ocrResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if ocrResp.Error != nil {
		return "", fmt.Errorf("OCR service error: %s", ocrResp.Error.Message)
	}

	text := strings.TrimSpace(ocrResp.Text)
	if text == "" {
		return "", fmt.Errorf("ocr service: %w", ErrNoText)
	}

	e.logger.Debug("OCR recognition complete",
		"filename", file.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"text_length", len(text))

	report(progress, 100)
	return text, nil
}
