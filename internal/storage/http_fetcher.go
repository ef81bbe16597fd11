package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ImageFetcher retrieves raw image bytes from a URL. The payload stays
// undecoded; the media type is taken from the response header or sniffed
// from the leading bytes when the header is missing.
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, string, error)
}

// HTTPImageFetcher implements ImageFetcher over plain HTTP(S) with a
// small retry budget for transient upstream failures.
type HTTPImageFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPImageFetcher creates an HTTP image fetcher. maxBytes bounds how
// much of a response body is read; the exact size ceiling is enforced by
// the attachment layer afterwards.
func NewHTTPImageFetcher(timeout time.Duration, maxBytes int64) ImageFetcher {
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
	}
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	var lastErr error

	// Three attempts: 5xx and transport errors are retryable, 4xx is not.
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		data, mediaType, err, retryable := h.fetchOnce(ctx, imageURL)
		if err == nil {
			return data, mediaType, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, "", fmt.Errorf("failed to fetch image: %w", lastErr)
}

func (h *HTTPImageFetcher) fetchOnce(ctx context.Context, imageURL string) (data []byte, mediaType string, err error, retryable bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err, false
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "go-image-translator/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, "", err, true
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, "", fmt.Errorf("server error: status code %d", resp.StatusCode), true
	case resp.StatusCode != http.StatusOK:
		return nil, "", fmt.Errorf("client error: status code %d", resp.StatusCode), false
	}

	// Read one byte past the cap so oversized payloads are still detected
	// downstream instead of being silently truncated at the cap.
	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image body: %w", err), true
	}

	mediaType = resp.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = http.DetectContentType(body)
	}
	return body, mediaType, nil, false
}
