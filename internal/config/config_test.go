package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE_DRIVER", "OCR_ENDPOINT", "OCR_TIMEOUT", "PROVIDER_CACHE_TTL", "PROGRESS_TTL", "PIPELINE_WORKERS", "MAX_FILE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageDriverS3, cfg.StorageDriver)
	assert.Equal(t, 60*time.Second, cfg.OCRTimeout)
	assert.Equal(t, 5*time.Minute, cfg.ProviderCacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.ProgressTTL)
	assert.Equal(t, 4, cfg.PipelineWorkers)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxFileSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", StorageDriverMemory)
	t.Setenv("OCR_ENDPOINT", "https://ocr.internal/v1/recognize")
	t.Setenv("OCR_API_KEY", "secret")
	t.Setenv("OCR_TIMEOUT", "15s")
	t.Setenv("PIPELINE_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, 15*time.Second, cfg.OCRTimeout)
	assert.Equal(t, 8, cfg.PipelineWorkers)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown storage driver", env: map[string]string{"STORAGE_DRIVER": "ftp"}},
		{name: "ocr endpoint without key", env: map[string]string{"OCR_ENDPOINT": "https://ocr.internal", "OCR_API_KEY": ""}},
		{name: "non numeric workers", env: map[string]string{"PIPELINE_WORKERS": "many"}},
		{name: "zero workers", env: map[string]string{"PIPELINE_WORKERS": "0"}},
		{name: "bad duration", env: map[string]string{"OCR_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
