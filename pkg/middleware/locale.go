package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

const localeKey contextKeyType = "locale"

// Locale negotiates the response locale from the ?locale= query parameter or
// the Accept-Language header against the supported list. The first entry of
// supported is the fallback. The chosen base language ("en", "ar") is stored
// in the context and echoed in Content-Language.
func Locale(supported []string) func(http.Handler) http.Handler {
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		if t, err := language.Parse(s); err == nil {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
	}
	matcher := language.NewMatcher(tags)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := NegotiateLocale(matcher, tags, r.URL.Query().Get("locale"), r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", loc)
			next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), loc)))
		})
	}
}

// NegotiateLocale picks the best supported base language for the explicit
// query value and the Accept-Language header, in that order of preference.
func NegotiateLocale(matcher language.Matcher, supported []language.Tag, query, acceptLanguage string) string {
	var desired []language.Tag
	if q := strings.TrimSpace(query); q != "" {
		if t, err := language.Parse(q); err == nil {
			desired = append(desired, t)
		}
	}
	if acceptLanguage != "" {
		if accepted, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			desired = append(desired, accepted...)
		}
	}

	chosen := supported[0]
	if len(desired) > 0 {
		if _, idx, conf := matcher.Match(desired...); conf != language.No {
			chosen = supported[idx]
		}
	}
	base, _ := chosen.Base()
	return base.String()
}

// WithLocale stores the negotiated locale in ctx.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}

// LocaleFromContext returns the locale chosen by Locale, or "".
func LocaleFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(localeKey).(string); ok {
		return l
	}
	return ""
}
