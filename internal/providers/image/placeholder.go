package image

import (
	"bytes"
	"context"
	"crypto/sha256"
	goimage "image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"lessonserver/internal/domain"
)

const placeholderSize = 256

// Placeholder renders a deterministic two-tone PNG per item. It stands in for
// a real model in development and when no API key is configured.
type Placeholder struct {
	store Publisher
	now   func() time.Time
}

func NewPlaceholder(store Publisher) *Placeholder {
	return &Placeholder{store: store, now: time.Now}
}

func (p *Placeholder) Illustrate(ctx context.Context, topic string, item domain.Item) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := RenderPlaceholder(topic, item.Name)
	if err != nil {
		return "", err
	}
	return publish(ctx, p.store, ImageKey(p.now(), item.Name), data, "image/png")
}

// RenderPlaceholder draws a square PNG whose colours derive from topic and name.
func RenderPlaceholder(topic, name string) ([]byte, error) {
	seed := sha256.Sum256([]byte(topic + "|" + name))
	base := color.RGBA{R: 128 | seed[0], G: 128 | seed[1], B: 128 | seed[2], A: 255}
	accent := color.RGBA{R: seed[3] >> 1, G: seed[4] >> 1, B: seed[5] >> 1, A: 255}

	img := goimage.NewRGBA(goimage.Rect(0, 0, placeholderSize, placeholderSize))
	draw.Draw(img, img.Bounds(), &goimage.Uniform{C: base}, goimage.Point{}, draw.Src)

	inset := placeholderSize / 4
	disc := goimage.Rect(inset, inset, placeholderSize-inset, placeholderSize-inset)
	center := placeholderSize / 2
	radius := (placeholderSize - 2*inset) / 2
	for y := disc.Min.Y; y < disc.Max.Y; y++ {
		for x := disc.Min.X; x < disc.Max.X; x++ {
			dx, dy := x-center, y-center
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, accent)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ Illustrator = (*Placeholder)(nil)
