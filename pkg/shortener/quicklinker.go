// Package shortener is a thin client for the QuickLinker URL-shortening
// service. One call per registration, no retry, no fallback: callers embed
// the returned value verbatim, so a failed call must fail the caller.
package shortener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// QuickLinker shortens URLs through an external service.
type QuickLinker struct {
	httpClient *http.Client
	baseURL    string
}

// NewQuickLinker creates a client for the shortening service at baseURL.
func NewQuickLinker(baseURL string) *QuickLinker {
	return &QuickLinker{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

type shortenRequest struct {
	OriginalURL string `json:"originalURL"`
}

// GetShortURL exchanges longURL for a short one. Any transport error or
// non-2xx response is a hard failure.
func (q *QuickLinker) GetShortURL(ctx context.Context, longURL string) (string, error) {
	body, err := json.Marshal(shortenRequest{OriginalURL: longURL})
	if err != nil {
		return "", fmt.Errorf("failed to marshal shorten request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build shorten request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("shortener request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("shortener returned status %d", resp.StatusCode)
	}

	// Response body is the short URL as plain text.
	shortURL, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read shortener response: %w", err)
	}
	return string(shortURL), nil
}
