// Package dict implements reading and writing of per-language translation
// dictionaries.
//
// A dictionary file is a flat JSON object mapping keys to strings:
//
//	{
//	    "addTodo": "Add todo",
//	    "common.submit": "Submit"
//	}
//
// Values that start with the language's placeholder marker (for example
// "[needs-zh] Add todo") are entries still waiting for a real translation.
// In memory every entry is a tagged Value so the rest of the program never
// does prefix matching; the marker only exists in the file format.
//
// Loading is deliberately forgiving: a missing file is an empty dictionary
// and unparsable content degrades to an empty dictionary with an error the
// caller can log. Writing is the opposite: output is normalized to sorted
// keys with stable 4-space indentation.
package dict

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// Value is a single dictionary entry. Text never contains the placeholder
// marker; Placeholder records whether the entry is tagged as still needing
// translation.
type Value struct {
	Text        string
	Placeholder bool
}

// Translated returns a value holding a real translation.
func Translated(text string) Value {
	return Value{Text: text}
}

// Pending returns a placeholder value: present in the file, but not yet a
// real translation.
func Pending(text string) Value {
	return Value{Text: text, Placeholder: true}
}

// FromWire converts a raw file string into a tagged Value by detecting the
// language's placeholder marker. An empty marker disables detection.
func FromWire(raw, marker string) Value {
	if marker != "" && strings.HasPrefix(raw, marker) {
		return Pending(strings.TrimPrefix(raw, marker))
	}
	return Translated(raw)
}

// Missing reports whether the value is blank after trimming whitespace.
func (v Value) Missing() bool {
	return strings.TrimSpace(v.Text) == ""
}

// Valid reports whether the value is a usable translation: non-blank and
// not a placeholder.
func (v Value) Valid() bool {
	return !v.Placeholder && !v.Missing()
}

// Wire renders the value in file form, re-attaching the marker for
// placeholder entries.
func (v Value) Wire(marker string) string {
	if v.Placeholder {
		return marker + v.Text
	}
	return v.Text
}

// ---------------------------------------------------------------------------
// Dictionary
// ---------------------------------------------------------------------------

// Dictionary holds all entries for one language.
type Dictionary struct {
	// Lang is the language code the dictionary belongs to (e.g. "zh").
	Lang string
	// Marker is the language's placeholder prefix.
	Marker string

	entries map[string]Value
}

// New returns an empty dictionary for the given language.
func New(lang, marker string) *Dictionary {
	return &Dictionary{
		Lang:    lang,
		Marker:  marker,
		entries: make(map[string]Value),
	}
}

// Get returns the entry for key.
func (d *Dictionary) Get(key string) (Value, bool) {
	v, ok := d.entries[key]
	return v, ok
}

// Set stores an entry for key (upsert).
func (d *Dictionary) Set(key string, v Value) {
	d.entries[key] = v
}

// Has reports whether key is present at all, valid or not.
func (d *Dictionary) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// Valid reports whether key holds a usable translation.
func (d *Dictionary) Valid(key string) bool {
	v, ok := d.entries[key]
	return ok && v.Valid()
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Keys returns all keys sorted alphabetically.
func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Counts returns how many entries are valid translations, placeholders,
// and blank.
func (d *Dictionary) Counts() (valid, pending, blank int) {
	for _, v := range d.entries {
		switch {
		case v.Valid():
			valid++
		case v.Placeholder:
			pending++
		default:
			blank++
		}
	}
	return
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses dictionary data: a flat JSON object of string values.
// Values are tagged against marker. Nested objects and non-string values
// are parse errors.
func Parse(data []byte, lang, marker string) (*Dictionary, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}

	d := New(lang, marker)
	for k, v := range raw {
		d.entries[k] = FromWire(v, marker)
	}
	return d, nil
}

// Load reads a dictionary file. It never fails hard: a missing file yields
// an empty dictionary with a nil error, and unreadable or unparsable
// content yields an empty dictionary together with the error so the caller
// can log it and carry on.
func Load(path, lang, marker string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(lang, marker), nil
		}
		return New(lang, marker), fmt.Errorf("reading %s: %w", path, err)
	}

	d, err := Parse(data, lang, marker)
	if err != nil {
		return New(lang, marker), fmt.Errorf("parsing %s: %w", path, err)
	}
	return d, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal serializes the dictionary as pretty-printed JSON with 4-space
// indentation and alphabetically sorted keys. Placeholder entries are
// written with their marker re-attached.
func (d *Dictionary) Marshal() ([]byte, error) {
	var b strings.Builder
	b.WriteString("{\n")

	keys := d.Keys()
	for i, k := range keys {
		b.WriteString("    ")
		b.WriteString(strconv.Quote(k))
		b.WriteString(": ")
		b.WriteString(strconv.Quote(d.entries[k].Wire(d.Marker)))
		if i < len(keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}

	b.WriteString("}\n")
	return []byte(b.String()), nil
}

// WriteFile serializes the dictionary and writes it to path, creating
// parent directories as needed.
func (d *Dictionary) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling %s dictionary: %w", d.Lang, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Canonical keys file
// ---------------------------------------------------------------------------

// LoadKeys reads the canonical keys file: a JSON array of strings. Unlike
// dictionary loading this is strict: content that is not an array of
// strings is a configuration error, not something to degrade from. The
// returned list preserves file order; duplicates and blank keys are
// dropped.
func LoadKeys(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keys file: %w", err)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("keys file %s: not a JSON array of strings: %w", path, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("keys file %s: not a JSON array of strings", path)
	}

	seen := make(map[string]bool, len(raw))
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys, nil
}

// SaveKeys writes the canonical keys file in the same pretty format as
// dictionaries: one quoted key per line, 4-space indented.
func SaveKeys(path string, keys []string) error {
	var b strings.Builder
	b.WriteString("[\n")
	for i, k := range keys {
		b.WriteString("    ")
		b.WriteString(strconv.Quote(k))
		if i < len(keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("]\n")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
