// Package locale negotiates the viewer locale and formats dates the way a browser's
// toLocaleDateString would for that locale.
package locale

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// Locale describes how dates are presented to a viewer.
type Locale struct {
	Tag    language.Tag
	short  string
	long   string
	monday monday.Locale
}

// String returns the BCP 47 tag, e.g. "en-US".
func (l Locale) String() string {
	return l.Tag.String()
}

// IsZero reports whether l is the zero Locale.
func (l Locale) IsZero() bool {
	return l.short == ""
}

// FormatShort renders t as a numeric date, e.g. "1/15/2024" for en-US.
func (l Locale) FormatShort(t time.Time) string {
	return t.Format(l.short)
}

// FormatLong renders t with the month spelled out in the locale's language.
func (l Locale) FormatLong(t time.Time) string {
	return monday.Format(t, l.long, l.monday)
}

var supported = []Locale{
	{Tag: language.AmericanEnglish, short: "1/2/2006", long: "January 2, 2006", monday: monday.LocaleEnUS},
	{Tag: language.BritishEnglish, short: "02/01/2006", long: "2 January 2006", monday: monday.LocaleEnGB},
	{Tag: language.MustParse("de-DE"), short: "2.1.2006", long: "2. January 2006", monday: monday.LocaleDeDE},
	{Tag: language.MustParse("fr-FR"), short: "02/01/2006", long: "2 January 2006", monday: monday.LocaleFrFR},
	{Tag: language.MustParse("es-ES"), short: "2/1/2006", long: "2 de January de 2006", monday: monday.LocaleEsES},
	{Tag: language.MustParse("it-IT"), short: "2/1/2006", long: "2 January 2006", monday: monday.LocaleItIT},
	{Tag: language.MustParse("nl-NL"), short: "2-1-2006", long: "2 January 2006", monday: monday.LocaleNlNL},
	{Tag: language.BrazilianPortuguese, short: "02/01/2006", long: "2 de January de 2006", monday: monday.LocalePtBR},
	{Tag: language.MustParse("ja-JP"), short: "2006/1/2", long: "2006年1月2日", monday: monday.LocaleJaJP},
}

var matcher = language.NewMatcher(tags())

func tags() []language.Tag {
	out := make([]language.Tag, len(supported))
	for i, l := range supported {
		out[i] = l.Tag
	}
	return out
}

// Default is the locale used when nothing better can be negotiated.
func Default() Locale {
	return supported[0]
}

// Supported lists every locale with a known date format.
func Supported() []Locale {
	return append([]Locale(nil), supported...)
}

// Negotiate picks the best supported locale for an Accept-Language header value.
// An empty or malformed header yields Default.
func Negotiate(acceptLanguage string) Locale {
	if strings.TrimSpace(acceptLanguage) == "" {
		return Default()
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return Default()
	}
	_, idx, confidence := matcher.Match(prefs...)
	if confidence == language.No {
		return Default()
	}
	return supported[idx]
}

// Lookup resolves an explicit tag such as "de" or "pt-BR". It reports false when the
// tag cannot be parsed or does not match a supported locale.
func Lookup(tag string) (Locale, bool) {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return Locale{}, false
	}
	_, idx, confidence := matcher.Match(parsed)
	if confidence == language.No {
		return Locale{}, false
	}
	return supported[idx], true
}
