package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/darthvader58/tansen/internal/models"
)

// Transcriber turns an audio file into notation for one instrument. The
// analysis model runs out of process.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, instrument string) (models.NotationData, error)
	Enabled() bool
}

// HTTPTranscriber posts audio to the analysis service and decodes the
// returned notation.
type HTTPTranscriber struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPTranscriber(baseURL string) *HTTPTranscriber {
	return &HTTPTranscriber{
		baseURL: baseURL,
		// Transcription of a full song takes minutes, not seconds.
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (t *HTTPTranscriber) Enabled() bool {
	return t.baseURL != ""
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, audioPath, instrument string) (models.NotationData, error) {
	var notation models.NotationData

	file, err := os.Open(audioPath)
	if err != nil {
		return notation, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return notation, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return notation, err
	}
	if err := writer.WriteField("instrument", instrument); err != nil {
		return notation, err
	}
	if err := writer.Close(); err != nil {
		return notation, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/transcribe", &body)
	if err != nil {
		return notation, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return notation, fmt.Errorf("transcriber request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return notation, fmt.Errorf("transcriber returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&notation); err != nil {
		return notation, fmt.Errorf("failed to decode transcriber response: %w", err)
	}
	return notation, nil
}
