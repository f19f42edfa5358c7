package flutterhost

import (
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/gogpu/flutterhost/engine"
)

// DefaultLocale is reported when the environment names no usable locale.
var DefaultLocale = engine.Locale{LanguageCode: "en", CountryCode: "US"}

// SystemLocales returns the user's preferred locales from the POSIX
// environment, most preferred first.
func SystemLocales() []engine.Locale {
	var tags []string
	if v := os.Getenv("LANGUAGE"); v != "" {
		tags = append(tags, strings.Split(v, ":")...)
	}
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(name); v != "" {
			tags = append(tags, v)
			break
		}
	}
	return ParseLocales(tags)
}

// ParseLocales converts BCP 47 or POSIX locale names to engine locales,
// dropping duplicates and names that do not parse. It never returns an
// empty list.
func ParseLocales(tags []string) []engine.Locale {
	var out []engine.Locale
	seen := make(map[engine.Locale]bool)
	for _, raw := range tags {
		l, ok := parseLocale(raw)
		if !ok || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		out = append(out, DefaultLocale)
	}
	return out
}

func parseLocale(raw string) (engine.Locale, bool) {
	s := raw
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	switch s {
	case "":
		return engine.Locale{}, false
	case "C", "POSIX":
		return DefaultLocale, true
	}
	tag, err := language.Parse(s)
	if err != nil {
		slogger().Debug("flutterhost: ignoring locale", "locale", raw, "err", err)
		return engine.Locale{}, false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return engine.Locale{}, false
	}
	l := engine.Locale{LanguageCode: base.String()}
	if script, conf := tag.Script(); conf == language.Exact {
		l.ScriptCode = script.String()
	}
	if region, conf := tag.Region(); conf == language.Exact {
		l.CountryCode = region.String()
	}
	if variants := tag.Variants(); len(variants) > 0 {
		l.VariantCode = variants[0].String()
	}
	return l, true
}
