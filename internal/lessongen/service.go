// Package lessongen sequences lesson generation: content, then images, then
// assembly and persistence, folding every failure into a GenerationResult.
package lessongen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"lessonserver/internal/domain"
	"lessonserver/internal/infra"
	"lessonserver/internal/metrics"
	"lessonserver/internal/providers/content"
	"lessonserver/internal/providers/image"
)

const (
	msgLessonFailed  = "Failed to generate lesson"
	msgContentFailed = "Failed to generate content"

	modeFull    = "full"
	modeContent = "content"
)

// Options wires a Service. Images and Metrics are optional.
type Options struct {
	Content    content.Generator
	Images     image.Generator
	Repository domain.LessonRepository
	Metrics    *metrics.Metrics
	Logger     *infra.Logger
}

// Service is the lesson generation pipeline. It is safe for concurrent use.
type Service struct {
	content content.Generator
	images  image.Generator
	repo    domain.LessonRepository
	metrics *metrics.Metrics
	logger  *infra.Logger
}

// NewService validates opts. A nil image generator leaves every item
// without an image; a nil logger discards output.
func NewService(opts Options) (*Service, error) {
	if opts.Content == nil {
		return nil, errors.New("lessongen: content generator is required")
	}
	if opts.Repository == nil {
		return nil, errors.New("lessongen: lesson repository is required")
	}
	images := opts.Images
	if images == nil {
		images = image.None{}
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		content: opts.Content,
		images:  images,
		repo:    opts.Repository,
		metrics: opts.Metrics,
		logger:  logger,
	}, nil
}

// ContentProvider names the configured content generator.
func (s *Service) ContentProvider() string { return s.content.Name() }

// GenerateLesson runs content generation, illustration and persistence. Image
// failures never fail the result; any other failure does, and nothing is
// persisted in that case.
func (s *Service) GenerateLesson(ctx context.Context, req domain.GenerationRequest) (result domain.GenerationResult) {
	defer s.recoverInto(&result, modeFull, msgLessonFailed)

	generated, err := s.generateContent(ctx, &req)
	if err != nil {
		return s.fail(modeFull, req, err, msgLessonFailed)
	}

	images := s.GenerateImages(ctx, req.Topic, generated.Items)
	lesson, err := s.persist(ctx, Assemble(generated, domain.ImageURLs(images)))
	if err != nil {
		return s.fail(modeFull, req, err, msgLessonFailed)
	}

	s.metrics.ObserveGeneration(modeFull, "success")
	s.logger.Info().Str("lesson_id", lesson.ID.String()).Str("topic", req.Topic).
		Int("items", len(lesson.Items)).Msg("lesson generated")
	return domain.GenerationResult{Success: true, Lesson: lesson, Images: images}
}

// GenerateContentOnly persists generated content with every image left empty.
func (s *Service) GenerateContentOnly(ctx context.Context, req domain.GenerationRequest) (result domain.GenerationResult) {
	defer s.recoverInto(&result, modeContent, msgContentFailed)

	generated, err := s.generateContent(ctx, &req)
	if err != nil {
		return s.fail(modeContent, req, err, msgContentFailed)
	}
	lesson, err := s.persist(ctx, Assemble(generated, nil))
	if err != nil {
		return s.fail(modeContent, req, err, msgContentFailed)
	}

	s.metrics.ObserveGeneration(modeContent, "success")
	return domain.GenerationResult{Success: true, Lesson: lesson}
}

// Preview generates content and images without persisting anything.
func (s *Service) Preview(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedContent, []domain.ImageResult, error) {
	generated, err := s.generateContent(ctx, &req)
	if err != nil {
		return nil, nil, err
	}
	return generated, s.GenerateImages(ctx, req.Topic, generated.Items), nil
}

// GenerateContent normalizes req and runs only the content step.
func (s *Service) GenerateContent(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedContent, error) {
	return s.generateContent(ctx, &req)
}

// GenerateImages illustrates items. The result is always index-aligned with
// items; an empty list makes no calls.
func (s *Service) GenerateImages(ctx context.Context, topic string, items []domain.Item) []domain.ImageResult {
	if len(items) == 0 {
		return []domain.ImageResult{}
	}
	start := time.Now()
	results := align(s.images.Generate(ctx, topic, items), len(items))
	s.metrics.ObserveStage("images", time.Since(start))

	ok := 0
	for _, r := range results {
		if r.OK() {
			ok++
		}
	}
	s.metrics.ObserveImages(ok, len(results)-ok)
	if ok < len(results) {
		s.logger.Warn().Str("topic", topic).Int("failed", len(results)-ok).Int("items", len(results)).
			Msg("some lesson images are unavailable")
	}
	return results
}

func (s *Service) generateContent(ctx context.Context, req *domain.GenerationRequest) (*domain.GeneratedContent, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	start := time.Now()
	generated, err := s.content.Generate(ctx, req.Topic, req.Count(), req.Language)
	s.metrics.ObserveStage("content", time.Since(start))
	if err != nil {
		return nil, err
	}
	if generated == nil {
		return nil, fmt.Errorf("%s returned no content", s.content.Name())
	}
	return generated, nil
}

func (s *Service) persist(ctx context.Context, form domain.LessonFormData) (*domain.Lesson, error) {
	start := time.Now()
	lesson, err := s.repo.Create(ctx, form)
	s.metrics.ObserveStage("persist", time.Since(start))
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveLessonCreated()
	return lesson, nil
}

func (s *Service) fail(mode string, req domain.GenerationRequest, err error, fallback string) domain.GenerationResult {
	s.metrics.ObserveGeneration(mode, "error")
	s.logger.Error().Err(err).Str("mode", mode).Str("topic", req.Topic).
		Str("provider", s.content.Name()).Msg("lesson generation failed")
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return domain.Failed(msg)
}

func (s *Service) recoverInto(result *domain.GenerationResult, mode, fallback string) {
	if r := recover(); r != nil {
		s.metrics.ObserveGeneration(mode, "panic")
		s.logger.Error().Interface("panic", r).Str("mode", mode).Msg("lesson generation panicked")
		*result = domain.Failed(fallback)
	}
}

// align pads or truncates results to n entries; padding is recorded missing.
func align(results []domain.ImageResult, n int) []domain.ImageResult {
	if len(results) == n {
		return results
	}
	out := make([]domain.ImageResult, n)
	copy(out, results)
	for i := len(results); i < n; i++ {
		out[i] = domain.ImageResult{Err: domain.ErrMissingAsset}
	}
	return out
}
