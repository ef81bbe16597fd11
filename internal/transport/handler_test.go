package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-image-translator/internal/config"
	apperrors "go-image-translator/internal/errors"
	"go-image-translator/internal/observer"
	"go-image-translator/pkg/models"
)

type fakeService struct {
	resp      *models.TranslationResponse
	batchResp *models.BatchTranslationResponse
	err       error

	lastContentType  string
	lastExpectedText string
	lastText         string
	lastURL          string
}

func (f *fakeService) TranslateUpload(ctx context.Context, body []byte, contentType, expectedText string) (*models.TranslationResponse, error) {
	f.lastContentType = contentType
	f.lastExpectedText = expectedText
	return f.resp, f.err
}

func (f *fakeService) TranslateImageURL(ctx context.Context, imageURL, expectedText string) (*models.TranslationResponse, error) {
	f.lastURL = imageURL
	f.lastExpectedText = expectedText
	return f.resp, f.err
}

func (f *fakeService) TranslateText(ctx context.Context, text string) (*models.TranslationResponse, error) {
	f.lastText = text
	return f.resp, f.err
}

func (f *fakeService) TranslateBatch(ctx context.Context, body []byte, contentType string) (*models.BatchTranslationResponse, error) {
	f.lastContentType = contentType
	return f.batchResp, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout: 5 * time.Second,
		MaxUploadBytes: 1024,
		AllowedOrigins: []string{"*"},
	}
}

func newTestHandler(svc *fakeService) http.Handler {
	gin.SetMode(gin.TestMode)
	return NewHandler(svc, observer.NewMetricsObserver(), testConfig())
}

func multipartRequest(target string, body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	return req
}

func TestHealthCheck(t *testing.T) {
	handler := newTestHandler(&fakeService{})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "available") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(&fakeService{})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var metrics map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("invalid metrics JSON: %v", err)
	}
	if _, ok := metrics["total_translations"]; !ok {
		t.Errorf("missing counter: %v", metrics)
	}
}

func TestTranslateImage(t *testing.T) {
	svc := &fakeService{resp: &models.TranslationResponse{OriginalText: "안녕", TranslatedText: "Hello", HasText: true}}
	handler := newTestHandler(svc)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, multipartRequest("/translate/image?expected_text=hi", []byte("--b\r\n\r\n--b--")))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastExpectedText != "hi" {
		t.Errorf("expected_text not forwarded: %q", svc.lastExpectedText)
	}
	var resp models.TranslationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.TranslatedText != "Hello" {
		t.Errorf("got %q", resp.TranslatedText)
	}
	if resp.RequestID == "" {
		t.Error("request id not set")
	}
}

func TestTranslateImage_RequestIDPassthrough(t *testing.T) {
	svc := &fakeService{resp: &models.TranslationResponse{}}
	handler := newTestHandler(svc)

	req := multipartRequest("/translate/image", []byte("--b\r\n\r\n--b--"))
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp models.TranslationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.RequestID != "req-42" {
		t.Errorf("caller request id not echoed: %q", resp.RequestID)
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("header not echoed: %q", got)
	}
}

func TestTranslateImage_WrongContentType(t *testing.T) {
	handler := newTestHandler(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/translate/image", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
}

func TestTranslateImage_BodyOverLimit(t *testing.T) {
	handler := newTestHandler(&fakeService{})

	body := make([]byte, 1024+multipartOverhead+1)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, multipartRequest("/translate/image", body))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestTranslateImage_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Validation maps to 400", apperrors.NewValidationError("no image attachment in request", nil), http.StatusBadRequest},
		{"Oversized attachment maps to 413", apperrors.NewPayloadTooLargeError("image exceeds the size limit", nil), http.StatusRequestEntityTooLarge},
		{"Upstream failure maps to 502", apperrors.NewUpstreamError("generation call failed", fmt.Errorf("generation 429: quota")), http.StatusBadGateway},
		{"Timeout maps to 504", apperrors.NewTimeoutError("generation call timeout", nil), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(&fakeService{err: tt.err})
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, multipartRequest("/translate/image", []byte("--b\r\n\r\n--b--")))

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestTranslateURL(t *testing.T) {
	svc := &fakeService{resp: &models.TranslationResponse{TranslatedText: "water"}}
	handler := newTestHandler(svc)

	body := `{"url":"https://example.com/a.jpg","expected_text":"물"}`
	req := httptest.NewRequest(http.MethodPost, "/translate/url", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastURL != "https://example.com/a.jpg" || svc.lastExpectedText != "물" {
		t.Errorf("request not forwarded: %q %q", svc.lastURL, svc.lastExpectedText)
	}
}

func TestTranslateURL_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Not JSON", "not json"},
		{"Missing url", `{"expected_text":"x"}`},
		{"Malformed url", `{"url":"not a url"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(&fakeService{})
			req := httptest.NewRequest(http.MethodPost, "/translate/url", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestTranslateText(t *testing.T) {
	svc := &fakeService{resp: &models.TranslationResponse{TranslatedText: "안녕"}}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/translate/text", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastText != "hello" {
		t.Errorf("text not forwarded: %q", svc.lastText)
	}
}

func TestTranslateBatch(t *testing.T) {
	svc := &fakeService{batchResp: &models.BatchTranslationResponse{
		Count: 2,
		Results: []models.BatchItem{
			{Index: 0, Result: &models.TranslationResponse{TranslatedText: "one"}},
			{Index: 1, Error: "validation: image exceeds the size limit"},
		},
	}}
	handler := newTestHandler(svc)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, multipartRequest("/translate/batch", []byte("--b\r\n\r\n--b--")))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.BatchTranslationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Count != 2 || resp.RequestID == "" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(&fakeService{})

	req := httptest.NewRequest(http.MethodOptions, "/translate/text", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}
