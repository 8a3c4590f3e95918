// Package config implements project configuration: the .langsync.yaml
// file and auto-detection of dictionary directories.
//
// When a .langsync.yaml exists in the project root it is the source of
// truth; auto-detection only fills in what the file leaves out. Without
// a file, Detect scans well-known directories (translations/, locales/,
// ...) for a keys file and per-language dictionaries.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/langsync/langsync/langtag"
)

// FileName is the default config file name.
const FileName = ".langsync.yaml"

// Dictionary formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultKeysFile is the keys file name used when none exists yet.
const DefaultKeysFile = "translation-keys.json"

// keysFileCandidates are recognized canonical keys file names, in
// preference order.
var keysFileCandidates = []string{
	"translation-keys.json",
	"translationKeys.json",
	"keys.json",
}

// dirCandidates are scanned by Detect, in preference order.
var dirCandidates = []string{
	"translations",
	"locales",
	filepath.Join("src", "translations"),
	filepath.Join("src", "locales"),
	filepath.Join("public", "locales"),
	filepath.Join("public", "translations"),
}

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .langsync.yaml structure.
type File struct {
	// Dir is the dictionary directory, relative to the config file.
	Dir string `yaml:"dir,omitempty"`
	// Keys is the canonical keys file, relative to the config file.
	Keys string `yaml:"keys,omitempty"`
	// BaseLang is the authoritative language (default "en").
	BaseLang string `yaml:"base,omitempty"`
	// Languages lists every language to manage, including the base.
	Languages []string `yaml:"languages,omitempty"`
	// Format is the dictionary file format: "json" (default) or "yaml".
	Format string `yaml:"format,omitempty"`
	// Markers overrides the placeholder marker per language.
	Markers map[string]string `yaml:"markers,omitempty"`
	// Discover unions dictionary-only keys into the run (default true).
	Discover *bool `yaml:"discover,omitempty"`
	// AdoptKeys writes discovered keys back to the keys file.
	AdoptKeys bool `yaml:"adopt_keys,omitempty"`
	// Reverse translates discovered keys back into the base language.
	Reverse bool `yaml:"reverse,omitempty"`
	// Provider is the default translation provider ID.
	Provider string `yaml:"provider,omitempty"`
	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty"`
}

// DiscoverEnabled returns the discover setting with its default applied.
func (f *File) DiscoverEnabled() bool {
	if f.Discover == nil {
		return true
	}
	return *f.Discover
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads and validates .langsync.yaml from the given directory.
// Returns nil if no config file exists.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if f.BaseLang == "" {
		f.BaseLang = "en"
	}
	// Format stays empty here so Resolve can tell "unset" from an
	// explicit choice when inferring the format from existing files.
	if f.Format != "" && f.Format != FormatJSON && f.Format != FormatYAML {
		return nil, fmt.Errorf("%s: unknown format %q (valid: json, yaml)", path, f.Format)
	}

	return &f, nil
}

// ---------------------------------------------------------------------------
// Resolved project
// ---------------------------------------------------------------------------

// Project is a fully resolved translation project with absolute paths.
type Project struct {
	// Root is the absolute project root.
	Root string
	// Dir is the absolute dictionary directory.
	Dir string
	// KeysFile is the absolute canonical keys file path.
	KeysFile string
	// BaseLang is the authoritative language.
	BaseLang string
	// Languages lists every language, base first.
	Languages []string
	// Format is the dictionary file format.
	Format string
	// Markers holds per-language marker overrides.
	Markers map[string]string

	Discover  bool
	AdoptKeys bool
	Reverse   bool
	Provider  string
	Model     string
}

// Resolve converts the config file into a Project, filling unset fields
// by scanning the dictionary directory.
func (f *File) Resolve(rootDir string) (*Project, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}

	dir := f.Dir
	if dir == "" {
		dir = "translations"
	}
	absDir := filepath.Join(absRoot, dir)

	keysFile := f.Keys
	if keysFile != "" {
		keysFile = filepath.Join(absRoot, keysFile)
	} else {
		keysFile = findKeysFile(absDir)
		if keysFile == "" {
			keysFile = filepath.Join(absDir, DefaultKeysFile)
		}
	}

	format := f.Format
	langs := f.Languages
	if len(langs) == 0 {
		var detected string
		langs, detected = scanDictionaries(absDir)
		if format == "" {
			format = detected
		}
	}
	if format == "" {
		format = FormatJSON
	}

	p := &Project{
		Root:      absRoot,
		Dir:       absDir,
		KeysFile:  keysFile,
		BaseLang:  f.BaseLang,
		Languages: orderLanguages(f.BaseLang, langs),
		Format:    format,
		Markers:   f.Markers,
		Discover:  f.DiscoverEnabled(),
		AdoptKeys: f.AdoptKeys,
		Reverse:   f.Reverse,
		Provider:  f.Provider,
		Model:     f.Model,
	}
	return p, nil
}

// Detect scans rootDir for a plausible dictionary directory and returns
// a Project with defaults, or nil when nothing is found.
func Detect(rootDir string) *Project {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}

	for _, candidate := range append(dirCandidates, ".") {
		dir := filepath.Join(absRoot, candidate)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		keysFile := findKeysFile(dir)
		langs, format := scanDictionaries(dir)
		if keysFile == "" && len(langs) == 0 {
			continue
		}
		if keysFile == "" {
			keysFile = filepath.Join(dir, DefaultKeysFile)
		}
		if format == "" {
			format = FormatJSON
		}

		base := "en"
		if len(langs) > 0 && !contains(langs, base) {
			base = langs[0]
		}

		return &Project{
			Root:      absRoot,
			Dir:       dir,
			KeysFile:  keysFile,
			BaseLang:  base,
			Languages: orderLanguages(base, langs),
			Format:    format,
			Discover:  true,
		}
	}

	return nil
}

// DictPath returns the dictionary file path for a language, preferring
// whichever variant already exists on disk.
func (p *Project) DictPath(lang string) string {
	exts := []string{".json"}
	if p.Format == FormatYAML {
		exts = []string{".yaml", ".yml"}
	}
	for _, ext := range exts {
		path := filepath.Join(p.Dir, lang+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(p.Dir, lang+exts[0])
}

// Marker returns the placeholder marker for a language, honoring
// per-language overrides.
func (p *Project) Marker(lang string) string {
	if m, ok := p.Markers[lang]; ok {
		return m
	}
	return langtag.DefaultMarker(lang)
}

// Dependent returns the non-base languages in order.
func (p *Project) Dependent() []string {
	var out []string
	for _, lang := range p.Languages {
		if lang != p.BaseLang {
			out = append(out, lang)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Directory scanning
// ---------------------------------------------------------------------------

// findKeysFile returns the first existing keys file candidate in dir.
func findKeysFile(dir string) string {
	for _, name := range keysFileCandidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// scanDictionaries finds language codes from dictionary files in dir and
// reports the dominant format. Keys files are not language dictionaries.
func scanDictionaries(dir string) (langs []string, format string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ""
	}

	jsonCount, yamlCount := 0, 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || isKeysFileName(name) {
			continue
		}

		ext := filepath.Ext(name)
		code := strings.TrimSuffix(name, ext)
		if !langtag.IsCode(code) {
			continue
		}

		switch ext {
		case ".json":
			jsonCount++
		case ".yaml", ".yml":
			yamlCount++
		default:
			continue
		}
		langs = append(langs, code)
	}

	sort.Strings(langs)
	if yamlCount > 0 && jsonCount == 0 {
		return langs, FormatYAML
	}
	if jsonCount > 0 {
		return langs, FormatJSON
	}
	return langs, ""
}

func isKeysFileName(name string) bool {
	for _, candidate := range keysFileCandidates {
		if name == candidate {
			return true
		}
	}
	return false
}

// orderLanguages returns base first, then the rest in the given order,
// deduplicated.
func orderLanguages(base string, langs []string) []string {
	out := []string{base}
	seen := map[string]bool{base: true}
	for _, lang := range langs {
		if !seen[lang] {
			seen[lang] = true
			out = append(out, lang)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
