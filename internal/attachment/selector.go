// Package attachment turns decoded multipart parts into typed image
// attachments with an enforced size ceiling.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"

	"go-image-translator/internal/multipart"
)

// DefaultMaxBytes is the attachment size ceiling applied when the caller
// does not configure one.
const DefaultMaxBytes = 10 * 1024 * 1024

// fallbackMediaType is used when a part carries an image content type whose
// subtype cannot be captured. Lenient fallback, not a parse error.
const fallbackMediaType = "image/jpeg"

var (
	// ErrNoAttachment means decoding succeeded but produced zero image parts.
	ErrNoAttachment = errors.New("no image attachment found")

	// ErrPayloadTooLarge means the selected attachment exceeds the byte ceiling.
	ErrPayloadTooLarge = errors.New("attachment exceeds size limit")
)

var mediaTypePattern = regexp.MustCompile(`Content-Type:\s*(image/[A-Za-z0-9][A-Za-z0-9!#$&^_.+-]*)`)

// DecodedAttachment is a single image payload recovered from a request.
type DecodedAttachment struct {
	MediaType string
	Bytes     []byte
	Size      int
}

// Select picks the first part in sequence order and materializes it as an
// attachment. There is no ranking beyond position. The size check runs
// after the body is fully in memory; it bounds rejection, not peak memory.
func Select(parts []multipart.Part, maxBytes int) (*DecodedAttachment, error) {
	if len(parts) == 0 {
		return nil, ErrNoAttachment
	}
	first := parts[0]
	return New(MediaTypeFromHeader(first.HeaderText), first.Body, maxBytes)
}

// New wraps raw image bytes as an attachment, enforcing maxBytes.
func New(mediaType string, data []byte, maxBytes int) (*DecodedAttachment, error) {
	if len(data) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrPayloadTooLarge, len(data), maxBytes)
	}
	return &DecodedAttachment{
		MediaType: mediaType,
		Bytes:     data,
		Size:      len(data),
	}, nil
}

// MediaTypeFromHeader extracts the image media type from a part's header
// text, defaulting to image/jpeg when the subtype cannot be captured.
func MediaTypeFromHeader(headerText string) string {
	if m := mediaTypePattern.FindStringSubmatch(headerText); m != nil {
		return m[1]
	}
	return fallbackMediaType
}

// DataURL renders the attachment in the form the downstream generation
// service accepts: data:<mediaType>;base64,<payload> with standard RFC 4648
// alphabet and padding.
func (a *DecodedAttachment) DataURL() string {
	return "data:" + a.MediaType + ";base64," + base64.StdEncoding.EncodeToString(a.Bytes)
}
