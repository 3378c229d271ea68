package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jamaah-data/internal/domain"
)

func TestExtractDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/documents/extract", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req visionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ktp.jpg", req.Filename)
		assert.NotEmpty(t, req.ImageBase64)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": 0,
			"msg": "",
			"data": {
				"document_type": "KTP",
				"fields": {"nama": "REBI SARIP", "no_identitas": "3204123456789012"}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 5*time.Second, zap.NewNop())

	extraction, err := client.ExtractDocument(context.Background(), "ktp.jpg", []byte("fake-image"))
	require.NoError(t, err)
	assert.Equal(t, domain.DocKTP, extraction.DocumentType)
	assert.Equal(t, "REBI SARIP", extraction.Fields.Nama)
	assert.Equal(t, "3204123456789012", extraction.Fields.NoIdentitas)
}

func TestExtractDocument_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": 1001, "msg": "unreadable image", "data": null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second, zap.NewNop())

	_, err := client.ExtractDocument(context.Background(), "blurry.jpg", []byte("fake"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable image")
}

func TestExtractDocument_DefaultsForPartialResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": 0, "msg": "", "data": {}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second, zap.NewNop())

	extraction, err := client.ExtractDocument(context.Background(), "x.jpg", []byte("fake"))
	require.NoError(t, err)
	assert.Equal(t, domain.DocUnknown, extraction.DocumentType)
	require.NotNil(t, extraction.Fields)
}
