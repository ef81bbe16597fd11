// Package parser extracts typed fields from the loosely structured,
// bilingual text the generation service returns. The prompt asks for
// labeled lines, but models drift, so the parser is tolerant: unknown
// lines are ignored and a response with no labels at all degrades to a
// whole-text fallback instead of an error.
package parser

import (
	"strings"

	"go-image-translator/internal/script"
)

// TranslationResult is the typed outcome of one response parse. Immutable
// after Parse returns.
type TranslationResult struct {
	OriginalText   string
	TranslatedText string
	SourceLabel    script.Label
	TargetLabel    script.Label
	HasText        bool

	// Fallback is set when no field label matched and both text fields
	// carry the raw response.
	Fallback bool
}

// Sentinel phrases the prompt asks for when the image holds no readable
// text. An exact (trimmed) match in either language, or the English phrase
// anywhere in the response, is a successful no-text outcome.
var noTextMarkers = []string{"텍스트 없음", "No text found"}

const noTextPhrase = "no text found"

type fieldName int

const (
	fieldOriginal fieldName = iota
	fieldTranslated
)

// labelTable maps bilingual field labels to result fields. Ordered;
// supporting another label is one more row.
var labelTable = []struct {
	label string
	field fieldName
}{
	{"원본 텍스트:", fieldOriginal},
	{"Original text:", fieldOriginal},
	{"번역:", fieldTranslated},
	{"Translation:", fieldTranslated},
}

// Parse extracts the original and translated text from a raw generation
// response. Field values run from the first colon of a matching line to
// its end, so colons inside the value survive. When a label repeats, the
// last occurrence wins.
func Parse(responseText string) TranslationResult {
	if isNoTextResponse(strings.TrimSpace(responseText)) {
		return TranslationResult{}
	}

	var original, translated string
	for _, line := range strings.Split(responseText, "\n") {
		for _, entry := range labelTable {
			if !strings.Contains(line, entry.label) {
				continue
			}
			fields := strings.SplitN(line, ":", 2)
			if len(fields) < 2 {
				continue
			}
			value := strings.TrimSpace(fields[1])
			switch entry.field {
			case fieldOriginal:
				original = value
			case fieldTranslated:
				translated = value
			}
		}
	}

	fallback := false
	if original == "" && translated == "" {
		// No label matched anywhere: hand the untouched response back in
		// both fields rather than failing the request.
		original = responseText
		translated = responseText
		fallback = true
	}

	source := script.Classify(original)
	return TranslationResult{
		OriginalText:   original,
		TranslatedText: translated,
		SourceLabel:    source,
		TargetLabel:    source.Flip(),
		HasText:        true,
		Fallback:       fallback,
	}
}

func isNoTextResponse(trimmed string) bool {
	for _, marker := range noTextMarkers {
		if trimmed == marker {
			return true
		}
	}
	return strings.Contains(strings.ToLower(trimmed), noTextPhrase)
}
