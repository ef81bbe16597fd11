// Package service orchestrates the translation pipeline: decode the
// request, select the attachment, call the generation collaborator and
// parse its response into a typed result.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-image-translator/internal/attachment"
	apperrors "go-image-translator/internal/errors"
	"go-image-translator/internal/generation"
	"go-image-translator/internal/multipart"
	"go-image-translator/internal/observer"
	"go-image-translator/internal/parser"
	"go-image-translator/internal/repository"
	"go-image-translator/internal/script"
	"go-image-translator/internal/storage"
	"go-image-translator/pkg/models"
	"go-image-translator/pkg/validation"
)

// TranslationService is the application-facing API of the pipeline.
type TranslationService interface {
	// TranslateUpload decodes a raw multipart body, selects its first
	// image attachment and translates the text found in it.
	TranslateUpload(ctx context.Context, body []byte, contentType, expectedText string) (*models.TranslationResponse, error)

	// TranslateImageURL fetches an image by URL and translates it.
	TranslateImageURL(ctx context.Context, imageURL, expectedText string) (*models.TranslationResponse, error)

	// TranslateText translates plain text; its writing system picks the
	// direction.
	TranslateText(ctx context.Context, text string) (*models.TranslationResponse, error)

	// TranslateBatch translates every image part of a multipart body.
	TranslateBatch(ctx context.Context, body []byte, contentType string) (*models.BatchTranslationResponse, error)
}

type translationService struct {
	engine    generation.Engine
	imageRepo repository.ImageRepository
	archiver  storage.Archiver
	publisher observer.Subject
	pool      *WorkerPool
	maxBytes  int
}

// NewTranslationService wires the pipeline together. The worker pool is
// started lazily on the first batch request.
func NewTranslationService(
	engine generation.Engine,
	imageRepo repository.ImageRepository,
	archiver storage.Archiver,
	publisher observer.Subject,
	maxUploadBytes int64,
) TranslationService {
	return &translationService{
		engine:    engine,
		imageRepo: imageRepo,
		archiver:  archiver,
		publisher: publisher,
		pool:      NewWorkerPool(0),
		maxBytes:  int(maxUploadBytes),
	}
}

func (s *translationService) TranslateUpload(ctx context.Context, body []byte, contentType, expectedText string) (*models.TranslationResponse, error) {
	start := time.Now()
	s.notify(ctx, observer.TranslationEvent{EventType: observer.TranslationStarted, Source: "upload"})

	att, err := s.decodeUpload(body, contentType)
	if err != nil {
		s.fail(ctx, "upload", start, err)
		return nil, err
	}

	resp, err := s.translateAttachment(ctx, att, expectedText)
	if err != nil {
		s.fail(ctx, "upload", start, err)
		return nil, err
	}
	s.complete(ctx, "upload", start)
	resp.ProcessingTimeSec = time.Since(start).Seconds()
	return resp, nil
}

func (s *translationService) TranslateImageURL(ctx context.Context, imageURL, expectedText string) (*models.TranslationResponse, error) {
	start := time.Now()
	s.notify(ctx, observer.TranslationEvent{EventType: observer.TranslationStarted, Source: "url"})

	data, mediaType, err := s.imageRepo.FetchImage(ctx, imageURL)
	if err != nil {
		err = mapFetchError(err)
		s.fail(ctx, "url", start, err)
		return nil, err
	}

	att, err := attachment.New(mediaType, data, s.maxBytes)
	if err != nil {
		err = mapAttachmentError(err)
		s.fail(ctx, "url", start, err)
		return nil, err
	}

	resp, err := s.translateAttachment(ctx, att, expectedText)
	if err != nil {
		s.fail(ctx, "url", start, err)
		return nil, err
	}
	s.complete(ctx, "url", start)
	resp.ProcessingTimeSec = time.Since(start).Seconds()
	return resp, nil
}

func (s *translationService) TranslateText(ctx context.Context, text string) (*models.TranslationResponse, error) {
	start := time.Now()
	s.notify(ctx, observer.TranslationEvent{EventType: observer.TranslationStarted, Source: "text"})

	if strings.TrimSpace(text) == "" {
		err := apperrors.NewValidationError("text cannot be empty", nil)
		s.fail(ctx, "text", start, err)
		return nil, err
	}

	source := script.Classify(text)
	raw, err := s.engine.TranslateText(ctx, text, source)
	if err != nil {
		err = mapGenerationError(err)
		s.fail(ctx, "text", start, err)
		return nil, err
	}

	result := parser.Parse(raw)
	s.observeParse(ctx, result)
	s.complete(ctx, "text", start)

	resp := buildResponse(result, nil)
	resp.ProcessingTimeSec = time.Since(start).Seconds()
	return resp, nil
}

func (s *translationService) TranslateBatch(ctx context.Context, body []byte, contentType string) (*models.BatchTranslationResponse, error) {
	start := time.Now()
	s.notify(ctx, observer.TranslationEvent{EventType: observer.TranslationStarted, Source: "batch"})

	boundary, err := multipart.BoundaryFromHeader(contentType)
	if err != nil {
		err = apperrors.NewValidationError("missing multipart boundary", err)
		s.fail(ctx, "batch", start, err)
		return nil, err
	}

	parts := multipart.Decode(body, []byte(boundary))
	if len(parts) == 0 {
		err := apperrors.NewValidationError("no image attachment in request", attachment.ErrNoAttachment)
		s.fail(ctx, "batch", start, err)
		return nil, err
	}

	s.pool.Start()
	results := make([]models.BatchItem, len(parts))
	var wg sync.WaitGroup
	for i, part := range parts {
		i, part := i, part
		wg.Add(1)
		s.pool.Submit(func() {
			defer wg.Done()
			results[i] = s.translatePart(ctx, i, part)
		})
	}
	wg.Wait()

	s.complete(ctx, "batch", start)
	return &models.BatchTranslationResponse{
		Count:   len(results),
		Results: results,
	}, nil
}

func (s *translationService) translatePart(ctx context.Context, index int, part multipart.Part) models.BatchItem {
	att, err := attachment.New(attachment.MediaTypeFromHeader(part.HeaderText), part.Body, s.maxBytes)
	if err != nil {
		return models.BatchItem{Index: index, Error: mapAttachmentError(err).Error()}
	}
	resp, err := s.translateAttachment(ctx, att, "")
	if err != nil {
		return models.BatchItem{Index: index, Error: err.Error()}
	}
	return models.BatchItem{Index: index, Result: resp}
}

// decodeUpload runs the multipart decode and attachment selection steps,
// mapping their sentinel errors onto the transport taxonomy.
func (s *translationService) decodeUpload(body []byte, contentType string) (*attachment.DecodedAttachment, error) {
	boundary, err := multipart.BoundaryFromHeader(contentType)
	if err != nil {
		return nil, apperrors.NewValidationError("missing multipart boundary", err)
	}

	parts := multipart.Decode(body, []byte(boundary))
	att, err := attachment.Select(parts, s.maxBytes)
	if err != nil {
		return nil, mapAttachmentError(err)
	}
	return att, nil
}

// translateAttachment is the shared tail of every image path: archive,
// generate, parse, score.
func (s *translationService) translateAttachment(ctx context.Context, att *attachment.DecodedAttachment, expectedText string) (*models.TranslationResponse, error) {
	s.archive(ctx, att)

	raw, err := s.engine.TranscribeImage(ctx, att)
	if err != nil {
		return nil, mapGenerationError(err)
	}

	result := parser.Parse(raw)
	s.observeParse(ctx, result)

	resp := buildResponse(result, att)
	if expectedText != "" && result.HasText {
		resp.Match = validation.ScoreMatch(expectedText, result.OriginalText)
	}
	return resp, nil
}

// archive persists the attachment best-effort; failures are reported as
// events, never as request errors.
func (s *translationService) archive(ctx context.Context, att *attachment.DecodedAttachment) {
	name := fmt.Sprintf("%s-%s%s", time.Now().UTC().Format("20060102T150405"), uuid.NewString(), extensionFor(att.MediaType))
	if err := s.archiver.Store(ctx, name, att.MediaType, att.Bytes); err != nil {
		s.notify(ctx, observer.TranslationEvent{
			EventType:    observer.ArchiveFailed,
			ErrorMessage: err.Error(),
			Metadata:     map[string]interface{}{"blob_name": name},
		})
	}
}

func (s *translationService) observeParse(ctx context.Context, result parser.TranslationResult) {
	if result.Fallback {
		s.notify(ctx, observer.TranslationEvent{EventType: observer.ParseFallback})
	}
}

func (s *translationService) notify(ctx context.Context, event observer.TranslationEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}

func (s *translationService) complete(ctx context.Context, source string, start time.Time) {
	s.notify(ctx, observer.TranslationEvent{
		EventType:      observer.TranslationCompleted,
		Source:         source,
		ProcessingTime: time.Since(start),
		Success:        true,
	})
}

func (s *translationService) fail(ctx context.Context, source string, start time.Time, err error) {
	s.notify(ctx, observer.TranslationEvent{
		EventType:      observer.TranslationFailed,
		Source:         source,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
}

func buildResponse(result parser.TranslationResult, att *attachment.DecodedAttachment) *models.TranslationResponse {
	resp := &models.TranslationResponse{
		OriginalText:   result.OriginalText,
		TranslatedText: result.TranslatedText,
		HasText:        result.HasText,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
	if result.HasText {
		resp.SourceScript = string(result.SourceLabel)
		resp.TargetScript = string(result.TargetLabel)
	}
	if att != nil {
		resp.MediaType = att.MediaType
		resp.SizeBytes = att.Size
	}
	return resp
}

func mapAttachmentError(err error) error {
	switch {
	case errors.Is(err, attachment.ErrNoAttachment):
		return apperrors.NewValidationError("no image attachment in request", err)
	case errors.Is(err, attachment.ErrPayloadTooLarge):
		return apperrors.NewPayloadTooLargeError("image exceeds the size limit", err)
	default:
		return apperrors.NewInternalError("failed to decode attachment", err)
	}
}

func mapFetchError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timeout", err)
	case errors.Is(err, repository.ErrNotAnImage):
		return apperrors.NewValidationError("URL does not point to an image", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}

func mapGenerationError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("generation call timeout", err)
	}
	return apperrors.NewUpstreamError("generation call failed", err)
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
