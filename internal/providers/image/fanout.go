package image

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"lessonserver/internal/domain"
	"lessonserver/internal/infra"
)

// DefaultConcurrency bounds the number of in-flight illustrations.
const DefaultConcurrency = 4

// FanOut runs an Illustrator over every item with bounded concurrency. A limit
// of 1 illustrates items one at a time in order.
type FanOut struct {
	illustrator Illustrator
	limit       int
	logger      *infra.Logger
}

func NewFanOut(illustrator Illustrator, limit int, logger *infra.Logger) *FanOut {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FanOut{illustrator: illustrator, limit: limit, logger: logger}
}

func (f *FanOut) Generate(ctx context.Context, topic string, items []domain.Item) []domain.ImageResult {
	results := make([]domain.ImageResult, len(items))
	if len(items) == 0 {
		return results
	}

	var g errgroup.Group
	g.SetLimit(f.limit)
	for i, item := range items {
		g.Go(func() error {
			results[i] = f.illustrate(ctx, topic, i, item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (f *FanOut) illustrate(ctx context.Context, topic string, index int, item domain.Item) (res domain.ImageResult) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.ImageResult{Err: fmt.Errorf("%w: panic: %v", domain.ErrMissingAsset, r)}
			f.logger.Error().Int("index", index).Str("item", item.Name).Interface("panic", r).Msg("image: illustrator panicked")
		}
	}()

	if err := ctx.Err(); err != nil {
		return domain.ImageResult{Err: fmt.Errorf("%w: %w", domain.ErrMissingAsset, err)}
	}
	url, err := f.illustrator.Illustrate(ctx, topic, item)
	if err == nil && url == "" {
		err = errors.New("no url returned")
	}
	if err != nil {
		f.logger.Warn().Err(err).Int("index", index).Str("item", item.Name).Msg("image: illustration failed")
		return domain.ImageResult{Err: fmt.Errorf("%w: %w", domain.ErrMissingAsset, err)}
	}
	f.logger.Debug().Int("index", index).Str("item", item.Name).Str("url", url).Msg("image: illustrated")
	return domain.ImageResult{URL: url}
}

var _ Generator = (*FanOut)(nil)

// None records every item as missing without any outbound call.
type None struct{}

func (None) Generate(_ context.Context, _ string, items []domain.Item) []domain.ImageResult {
	results := make([]domain.ImageResult, len(items))
	for i := range results {
		results[i] = domain.ImageResult{Err: domain.ErrMissingAsset}
	}
	return results
}

var _ Generator = None{}
