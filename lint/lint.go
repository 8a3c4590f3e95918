// Package lint validates translation files structurally and semantically.
//
// Structure is checked against embedded JSON Schemas: the canonical keys
// file must be an array of unique non-empty strings and a dictionary an
// object of string values. Semantic checks cover what a schema cannot
// see, like keys that collide after trimming or dictionary entries
// missing from the canonical key list.
package lint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/langsync/langsync/dict"
)

// Severity classifies an Issue. Errors make the check command fail,
// warnings do not.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
)

// Issue is a single finding, tied to a file and optionally a location
// inside it.
type Issue struct {
	File     string
	Path     string
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	loc := i.File
	if i.Path != "" {
		loc += ": " + i.Path
	}
	return fmt.Sprintf("%s: %s", loc, i.Message)
}

// Result collects the issues found across checked files.
type Result struct {
	Issues []Issue
}

// Errors counts error-severity issues.
func (r *Result) Errors() int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == Error {
			n++
		}
	}
	return n
}

// Warnings counts warning-severity issues.
func (r *Result) Warnings() int {
	return len(r.Issues) - r.Errors()
}

// OK reports whether the result contains no errors. Warnings alone do
// not fail a check.
func (r *Result) OK() bool {
	return r.Errors() == 0
}

// Merge appends another result's issues.
func (r *Result) Merge(other *Result) {
	r.Issues = append(r.Issues, other.Issues...)
}

func (r *Result) add(file, path string, sev Severity, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		File:     file,
		Path:     path,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

// ---------------------------------------------------------------------------
// Structural checks (JSON Schema)
// ---------------------------------------------------------------------------

const keysSchema = `{
    "$schema": "http://json-schema.org/draft-07/schema#",
    "title": "Translation keys",
    "type": "array",
    "items": {
        "type": "string",
        "minLength": 1
    },
    "uniqueItems": true
}`

const dictSchema = `{
    "$schema": "http://json-schema.org/draft-07/schema#",
    "title": "Translation dictionary",
    "type": "object",
    "additionalProperties": {
        "type": "string"
    }
}`

var (
	keysSchemaCompiled = jsonschema.MustCompileString("keys.schema.json", keysSchema)
	dictSchemaCompiled = jsonschema.MustCompileString("dict.schema.json", dictSchema)
)

// CheckKeys validates the raw content of a canonical keys file.
func CheckKeys(file string, data []byte) *Result {
	r := &Result{}

	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		r.add(file, "", Error, "not valid JSON: %v", err)
		return r
	}
	if err := keysSchemaCompiled.Validate(obj); err != nil {
		r.collectSchemaError(file, err)
		return r
	}

	// Collisions the schema cannot see: keys that only differ by
	// surrounding whitespace still collapse to the same key.
	keys, _ := obj.([]interface{})
	seen := make(map[string]int, len(keys))
	for i, k := range keys {
		s, _ := k.(string)
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			r.add(file, fmt.Sprintf("[%d]", i), Error, "blank key")
			continue
		}
		if first, ok := seen[trimmed]; ok {
			r.add(file, fmt.Sprintf("[%d]", i), Error, "duplicate of %q at [%d]", trimmed, first)
			continue
		}
		seen[trimmed] = i
	}
	return r
}

// CheckDict validates the raw content of a JSON dictionary file.
func CheckDict(file string, data []byte) *Result {
	r := &Result{}

	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		r.add(file, "", Error, "not valid JSON: %v", err)
		return r
	}
	if err := dictSchemaCompiled.Validate(obj); err != nil {
		r.collectSchemaError(file, err)
	}
	return r
}

// collectSchemaError flattens a jsonschema validation error tree into
// issues, one per leaf cause.
func (r *Result) collectSchemaError(file string, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		r.add(file, "", Error, "%v", err)
		return
	}
	r.walkSchemaError(file, ve)
}

func (r *Result) walkSchemaError(file string, ve *jsonschema.ValidationError) {
	if ve == nil {
		return
	}
	if len(ve.Causes) == 0 {
		r.add(file, pointerPath(ve.InstanceLocation), Error, "%s", ve.Message)
		return
	}
	for _, cause := range ve.Causes {
		r.walkSchemaError(file, cause)
	}
}

// pointerPath renders a JSON pointer as a readable path:
// "/3" -> "[3]", "/a/0/b" -> "a[0].b".
func pointerPath(ptr string) string {
	if ptr == "" || ptr == "/" {
		return ""
	}

	var b strings.Builder
	for _, seg := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		seg = strings.ReplaceAll(seg, "~1", "/")
		seg = strings.ReplaceAll(seg, "~0", "~")
		if isIndex(seg) {
			fmt.Fprintf(&b, "[%s]", seg)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Semantic checks
// ---------------------------------------------------------------------------

// ProjectInput is the parsed project state CheckProject works on. Paths
// maps language codes to dictionary file paths for issue attribution;
// languages without an entry are attributed by code.
type ProjectInput struct {
	KeysFile string
	Keys     []string
	BaseLang string
	Discover bool
	Dicts    map[string]*dict.Dictionary
	Paths    map[string]string
}

// CheckProject runs the checks a per-file schema cannot express:
// coverage of the canonical keys per language and, with discovery off,
// dictionary keys outside the canonical list.
func CheckProject(in ProjectInput) *Result {
	r := &Result{}

	canonical := make(map[string]bool, len(in.Keys))
	for _, k := range in.Keys {
		canonical[k] = true
	}

	langs := make([]string, 0, len(in.Dicts))
	for lang := range in.Dicts {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		d := in.Dicts[lang]
		file := in.Paths[lang]
		if file == "" {
			file = lang
		}

		missing, placeholders := 0, 0
		for _, key := range in.Keys {
			v, ok := d.Get(key)
			switch {
			case !ok || v.Missing():
				missing++
			case v.Placeholder:
				placeholders++
			}
		}
		if missing > 0 {
			r.add(file, "", Warning, "%d of %d keys missing", missing, len(in.Keys))
		}
		if placeholders > 0 {
			r.add(file, "", Warning, "%d keys still carry the placeholder marker", placeholders)
		}
		if lang == in.BaseLang && placeholders > 0 {
			r.add(file, "", Warning, "base language should not contain placeholders")
		}

		if !in.Discover {
			for _, key := range d.Keys() {
				if !canonical[key] {
					r.add(file, key, Warning, "key not in the canonical list")
				}
			}
		}
	}
	return r
}
