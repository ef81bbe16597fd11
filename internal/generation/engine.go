// Package generation is the boundary to the external text-generation
// collaborator. The rest of the service only sees raw response text;
// nothing downstream depends on which provider produced it.
package generation

import (
	"context"

	"go-image-translator/internal/attachment"
	"go-image-translator/internal/script"
)

// Engine sends prompts to a generation service and returns the raw UTF-8
// response text with no additional framing.
type Engine interface {
	// TranscribeImage asks the service to extract the text in the
	// attachment and translate it, replying in the labeled line format.
	TranscribeImage(ctx context.Context, att *attachment.DecodedAttachment) (string, error)

	// TranslateText translates plain text; the source label picks the
	// direction (Hangul -> English, anything else -> Korean).
	TranslateText(ctx context.Context, text string, source script.Label) (string, error)
}
