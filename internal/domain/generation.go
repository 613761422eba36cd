package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// Item count policy for generation requests.
const (
	DefaultItemCount = 5
	MaxItemCount     = 20
	DefaultLanguage  = "en"
)

// GenerationRequest asks for a lesson about Topic.
type GenerationRequest struct {
	Topic     string
	ItemCount *int
	Language  string
}

// Normalize validates the request in place. An omitted count becomes
// DefaultItemCount, zero is kept, counts above MaxItemCount are clamped and a
// language that is not a valid BCP 47 tag becomes DefaultLanguage.
func (r *GenerationRequest) Normalize() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		return ErrTopicRequired
	}

	count := DefaultItemCount
	if r.ItemCount != nil {
		count = *r.ItemCount
	}
	if count < 0 {
		return ErrInvalidItemCount
	}
	if count > MaxItemCount {
		count = MaxItemCount
	}
	r.ItemCount = &count

	r.Language = NormalizeLanguage(r.Language)
	return nil
}

// Count returns the normalized item count.
func (r GenerationRequest) Count() int {
	if r.ItemCount == nil {
		return DefaultItemCount
	}
	return *r.ItemCount
}

// NormalizeLanguage canonicalizes a BCP 47 tag, falling back to DefaultLanguage.
func NormalizeLanguage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return DefaultLanguage
	}
	return tag.String()
}

// ImageResult is the outcome of illustrating one item. An empty URL with a
// nil Err never occurs; failures carry the reason.
type ImageResult struct {
	URL string
	Err error
}

// OK reports whether the image was produced.
func (r ImageResult) OK() bool {
	return r.Err == nil && r.URL != ""
}

// ImageURLs flattens results into the index-aligned URL list, with "" for
// every failed item.
func ImageURLs(results []ImageResult) []string {
	urls := make([]string, len(results))
	for i, r := range results {
		if r.OK() {
			urls[i] = r.URL
		}
	}
	return urls
}

// GenerationResult is the single contract surfaced to callers of the
// generation pipeline. Exactly one of Lesson or Error is meaningful.
type GenerationResult struct {
	Success bool          `json:"success"`
	Lesson  *Lesson       `json:"lesson,omitempty"`
	Error   string        `json:"error,omitempty"`
	Images  []ImageResult `json:"-"`
}

// Failed builds an unsuccessful result.
func Failed(msg string) GenerationResult {
	return GenerationResult{Success: false, Error: msg}
}
