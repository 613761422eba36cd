package image

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ImageKey names the object for an item image: {unixMillis}-{sanitized}.png,
// where sanitized is the lower-cased name with every rune outside [a-z0-9]
// replaced by "-".
func ImageKey(now time.Time, name string) string {
	return fmt.Sprintf("%d-%s.png", now.UnixMilli(), sanitizeName(name))
}

func sanitizeName(name string) string {
	lowered := cases.Lower(language.Und).String(strings.TrimSpace(name))
	if lowered == "" {
		return "image"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, lowered)
}

func publish(ctx context.Context, store Publisher, key string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image for %s", key)
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/png"
	}
	if err := store.Put(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return store.PublicURL(key), nil
}
