package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// LocaleKey stores the negotiated base language (for example "en") in the request context.
var LocaleKey = localeContextKey{}

// SupportedLanguages are the narration languages offered to clients. The
// first entry is the fallback when nothing matches.
var SupportedLanguages = []language.Tag{
	language.English,
	language.Indonesian,
	language.Spanish,
	language.French,
	language.German,
	language.Portuguese,
	language.Japanese,
	language.Chinese,
}

// I18N negotiates the request language from X-Locale, then Accept-Language,
// then defaultLocale.
func I18N(defaultLocale string) func(http.Handler) http.Handler {
	matcher := language.NewMatcher(SupportedLanguages)
	fallback := baseOf(parseTag(defaultLocale), "en")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, matcher, fallback)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, matcher language.Matcher, fallback string) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if tag, ok := match(matcher, parseTag(v)); ok {
			return tag
		}
	}
	if v := strings.TrimSpace(r.Header.Get("Accept-Language")); v != "" {
		tags, _, err := language.ParseAcceptLanguage(v)
		if err == nil {
			if tag, ok := match(matcher, tags...); ok {
				return tag
			}
		}
	}
	return fallback
}

func match(matcher language.Matcher, tags ...language.Tag) (string, bool) {
	var preferred []language.Tag
	for _, t := range tags {
		if t != language.Und {
			preferred = append(preferred, t)
		}
	}
	if len(preferred) == 0 {
		return "", false
	}
	tag, _, conf := matcher.Match(preferred...)
	if conf == language.No {
		return "", false
	}
	return baseOf(tag, ""), true
}

func parseTag(raw string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return language.Und
	}
	return tag
}

func baseOf(tag language.Tag, fallback string) string {
	if tag == language.Und {
		return fallback
	}
	base, conf := tag.Base()
	if conf == language.No {
		return fallback
	}
	return base.String()
}

// LocaleFromContext returns the negotiated language, "en" when unset.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok && v != "" {
		return v
	}
	return "en"
}
