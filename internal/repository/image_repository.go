// Package repository provides access to remotely hosted images behind a
// narrow interface so the service layer never touches HTTP directly.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-image-translator/internal/storage"
	"go-image-translator/pkg/validation"
)

var (
	// ErrNotAnImage indicates the URL resolved to a non-image payload.
	ErrNotAnImage = errors.New("URL does not point to an image")
)

// ImageRepository defines the interface for remote image access.
type ImageRepository interface {
	// FetchImage retrieves the raw bytes and media type of an image URL.
	FetchImage(ctx context.Context, imageURL string) ([]byte, string, error)

	// ValidateImageURL validates if the provided URL is acceptable.
	ValidateImageURL(imageURL string) error
}

type httpImageRepository struct {
	fetcher   storage.ImageFetcher
	validator *validation.URLValidator
}

// NewHTTPImageRepository creates a repository backed by an HTTP fetcher.
// A nil validator accepts http(s) URLs from any host.
func NewHTTPImageRepository(fetcher storage.ImageFetcher, validator *validation.URLValidator) ImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &httpImageRepository{
		fetcher:   fetcher,
		validator: validator,
	}
}

func (r *httpImageRepository) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, "", err
	}

	data, mediaType, err := r.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		return nil, "", err
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, "", fmt.Errorf("%w: got %q", ErrNotAnImage, mediaType)
	}
	return data, mediaType, nil
}

func (r *httpImageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}
