// Package langtag resolves language codes to canonical BCP 47 form,
// native display names, flag emoji and placeholder markers.
//
// Name resolution is backed by golang.org/x/text instead of a hand-kept
// registry, so any code the Unicode CLDR knows about gets a proper native
// name ("ru" -> "русский") without maintenance here.
package langtag

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Canonicalize normalizes a language code to BCP 47 form:
// "pt_br" -> "pt-BR", "ZH-hant" -> "zh-Hant". Codes the tag parser does
// not recognize are normalized structurally (case and separators) and
// returned otherwise unchanged.
func Canonicalize(code string) string {
	cleaned := normalize(code)
	if cleaned == "" {
		return ""
	}
	if tag, err := language.Parse(cleaned); err == nil {
		return tag.String()
	}
	return canonicalizeParts(cleaned)
}

// Name returns the language's name in the language itself ("de" ->
// "Deutsch"). Unknown codes return "".
func Name(code string) string {
	tag, err := language.Parse(normalize(code))
	if err != nil {
		return ""
	}
	return display.Self.Name(tag)
}

// EnglishName returns the language's English name ("de" -> "German").
// Unknown codes return "".
func EnglishName(code string) string {
	tag, err := language.Parse(normalize(code))
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(tag)
}

// Flag returns the flag emoji for the code's region, inferring a likely
// region for bare codes ("ja" -> 🇯🇵). Codes without a usable region
// return "".
func Flag(code string) string {
	tag, err := language.Parse(normalize(code))
	if err != nil && tag == language.Und {
		return ""
	}

	region, conf := tag.Region()
	if conf == language.No || !region.IsCountry() {
		return ""
	}

	r := region.String()
	if len(r) != 2 || r[0] < 'A' || r[0] > 'Z' || r[1] < 'A' || r[1] > 'Z' {
		return ""
	}
	return string(rune(0x1F1E6+rune(r[0]-'A'))) + string(rune(0x1F1E6+rune(r[1]-'A')))
}

// IsCode reports whether s looks like a language code: a 2-3 letter base
// optionally followed by 2-4 letter/digit subtags ("en", "pt-BR",
// "zh-Hant"). The check is purely structural so uncommon but well-formed
// codes are not rejected.
func IsCode(s string) bool {
	parts := strings.Split(normalize(s), "-")
	if len(parts) == 0 || len(parts) > 3 {
		return false
	}

	base := parts[0]
	if len(base) < 2 || len(base) > 3 || !isAlpha(base) {
		return false
	}

	for _, sub := range parts[1:] {
		if len(sub) < 2 || len(sub) > 4 || !isAlnum(sub) {
			return false
		}
	}
	return true
}

// DefaultMarker returns the placeholder prefix used for a language when
// the project configures no override, e.g. "[needs-zh] ".
func DefaultMarker(code string) string {
	return "[needs-" + Canonicalize(code) + "] "
}

// normalize trims whitespace and converts underscores to hyphens.
func normalize(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
}

// canonicalizeParts fixes the case of each subtag by position: lowercase
// base, title-case 4-letter scripts, uppercase 2-letter regions.
func canonicalizeParts(code string) string {
	parts := strings.Split(code, "-")
	for i, p := range parts {
		switch {
		case i == 0:
			parts[i] = strings.ToLower(p)
		case len(p) == 4:
			parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
		case len(p) == 2:
			parts[i] = strings.ToUpper(p)
		default:
			parts[i] = strings.ToLower(p)
		}
	}
	return strings.Join(parts, "-")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) > 0
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(s) > 0
}
