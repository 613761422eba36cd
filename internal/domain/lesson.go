package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item is one card of a lesson. Order inside a lesson is playback order.
type Item struct {
	Name       string `json:"name"`
	SpokenText string `json:"spokenText"`
	Image      string `json:"image"`
}

// Lesson is a persisted lesson. It is created once by a LessonRepository and
// never modified by the generation pipeline afterwards.
type Lesson struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CoverImage  string    `json:"coverImage"`
	Items       []Item    `json:"items"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LessonFormData is everything needed to create a Lesson except its identity.
type LessonFormData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
	Items       []Item `json:"items"`
}

// Validate checks the data a repository requires before persisting.
func (f LessonFormData) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	for i, item := range f.Items {
		if strings.TrimSpace(item.Name) == "" {
			return &ValidationError{Field: itemField(i, "name"), Reason: "is required"}
		}
	}
	return nil
}

// GeneratedContent is the output of a content generator: lesson text
// without images.
type GeneratedContent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
}

// ListParams filters and pages lesson listings.
type ListParams struct {
	Search string
	Limit  int
	Offset int
}

// Page limits for lesson listings.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Normalize applies default and maximum limits and drops negative offsets.
func (p *ListParams) Normalize() {
	p.Search = strings.TrimSpace(p.Search)
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
	if p.Limit > MaxListLimit {
		p.Limit = MaxListLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// LessonPage is one page of a listing.
type LessonPage struct {
	Lessons []Lesson `json:"lessons"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}
