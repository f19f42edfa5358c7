package flutterhost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/flutterhost/engine"
)

func TestParseLocales(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want []engine.Locale
	}{
		{"empty", nil, []engine.Locale{DefaultLocale}},
		{"posix", []string{"de_DE.UTF-8"}, []engine.Locale{{LanguageCode: "de", CountryCode: "DE"}}},
		{"modifier", []string{"sr_RS@latin"}, []engine.Locale{{LanguageCode: "sr", CountryCode: "RS"}}},
		{"bcp47 script", []string{"zh-Hant-TW"}, []engine.Locale{{LanguageCode: "zh", ScriptCode: "Hant", CountryCode: "TW"}}},
		{"language only", []string{"fr"}, []engine.Locale{{LanguageCode: "fr"}}},
		{"c locale", []string{"C"}, []engine.Locale{DefaultLocale}},
		{"garbage", []string{"!!", ""}, []engine.Locale{DefaultLocale}},
		{
			"dedup",
			[]string{"en_GB.UTF-8", "en-GB", "pt_BR"},
			[]engine.Locale{{LanguageCode: "en", CountryCode: "GB"}, {LanguageCode: "pt", CountryCode: "BR"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocales(tt.tags))
		})
	}
}

func TestSystemLocales(t *testing.T) {
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "ja_JP.UTF-8")
	t.Setenv("LANG", "en_US.UTF-8")
	assert.Equal(t, []engine.Locale{{LanguageCode: "ja", CountryCode: "JP"}}, SystemLocales())

	t.Setenv("LANGUAGE", "it:en")
	assert.Equal(t, []engine.Locale{
		{LanguageCode: "it"},
		{LanguageCode: "en"},
		{LanguageCode: "ja", CountryCode: "JP"},
	}, SystemLocales())
}
