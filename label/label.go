// Package label derives human-readable default labels from translation keys.
//
// Keys are camel-case identifiers, optionally dot-namespaced:
//
//	whatNeedsToBeDone  ->  "What needs to be done"
//	common.submit      ->  "Submit"
//	XMLParser          ->  "Xml parser"
//
// Labels seed the base language when no authored value exists for a key.
// Generation is deterministic and pure.
package label

import (
	"strings"
	"unicode"
)

// Generate derives a default label for key.
//
// The segment after the last "." is split into words at case-transition
// boundaries, lowercased, whitespace-collapsed and sentence-cased. If the
// segment yields no words (e.g. a key ending in "."), the whole key is
// used instead.
func Generate(key string) string {
	seg := key
	if idx := strings.LastIndexByte(key, '.'); idx >= 0 {
		seg = key[idx+1:]
	}

	words := splitWords(seg)
	if len(words) == 0 {
		words = splitWords(key)
	}
	if len(words) == 0 {
		return ""
	}

	lbl := strings.ToLower(strings.Join(words, " "))
	lbl = strings.Join(strings.Fields(lbl), " ")

	r := []rune(lbl)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// splitWords splits an identifier at case-transition boundaries.
// A run of uppercase letters is a single word, and an uppercase letter
// followed by a lowercase one starts a new word ("XMLParser" -> "XML",
// "Parser"). Underscores, hyphens, dots and whitespace also separate
// words and are dropped.
func splitWords(s string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
			continue
		case i > 0 && unicode.IsUpper(r):
			prev := runes[i-1]
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(prev) || nextIsLower {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return words
}
