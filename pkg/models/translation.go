// Package models defines the transport-level request and response types.
package models

// TextTranslationRequest is the body of POST /translate/text.
type TextTranslationRequest struct {
	Text string `json:"text" binding:"required"`
}

// URLTranslationRequest is the body of POST /translate/url.
type URLTranslationRequest struct {
	URL          string `json:"url" binding:"required,url"`
	ExpectedText string `json:"expected_text,omitempty"`
}

// TranslationResponse is the result of one translation.
type TranslationResponse struct {
	RequestID      string `json:"request_id,omitempty"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceScript   string `json:"source_script,omitempty"`
	TargetScript   string `json:"target_script,omitempty"`
	HasText        bool   `json:"has_text"`

	MediaType string `json:"media_type,omitempty"`
	SizeBytes int    `json:"size_bytes,omitempty"`

	// Match is present when the caller supplied expected text.
	Match *TextMatch `json:"match,omitempty"`

	ProcessingTimeSec float64 `json:"processing_time_sec"`
	Timestamp         string  `json:"timestamp"`
}

// TextMatch scores extracted text against caller-supplied expected text.
type TextMatch struct {
	ExpectedText  string  `json:"expected_text"`
	CharErrorRate float64 `json:"char_error_rate"`
	WordErrorRate float64 `json:"word_error_rate"`
	MatchScore    float64 `json:"match_score"`
}

// BatchTranslationResponse is the result of POST /translate/batch: one
// entry per image part of the multipart body, in order of appearance.
type BatchTranslationResponse struct {
	RequestID string      `json:"request_id,omitempty"`
	Count     int         `json:"count"`
	Results   []BatchItem `json:"results"`
}

// BatchItem carries either a translation result or a per-part error.
type BatchItem struct {
	Index  int                  `json:"index"`
	Error  string               `json:"error,omitempty"`
	Result *TranslationResponse `json:"result,omitempty"`
}
