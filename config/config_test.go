package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("missing file returns nil", func(t *testing.T) {
		dir := t.TempDir()
		f, err := Load(dir)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if f != nil {
			t.Fatalf("Load expected nil, got %#v", f)
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), "languages: [en, zh]\n")

		f, err := Load(dir)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if f.BaseLang != "en" {
			t.Fatalf("BaseLang = %q, want en", f.BaseLang)
		}
		if !f.DiscoverEnabled() {
			t.Fatal("discover should default to true")
		}
		if f.AdoptKeys || f.Reverse {
			t.Fatal("adopt_keys and reverse should default to false")
		}
	})

	t.Run("explicit discover false", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), "discover: false\n")

		f, err := Load(dir)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if f.DiscoverEnabled() {
			t.Fatal("discover: false not honored")
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), "langauges: [en]\n")

		if _, err := Load(dir); err == nil {
			t.Fatal("expected error for misspelled key")
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), "format: toml\n")

		_, err := Load(dir)
		if err == nil {
			t.Fatal("expected format validation error")
		}
		if !strings.Contains(err.Error(), "toml") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty file is valid", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), "")

		f, err := Load(dir)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if f == nil || f.BaseLang != "en" {
			t.Fatalf("got %#v", f)
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("explicit settings win", func(t *testing.T) {
		dir := t.TempDir()
		f := &File{
			Dir:       "i18n",
			Keys:      filepath.Join("i18n", "keys.json"),
			BaseLang:  "en",
			Languages: []string{"zh", "en", "de"},
			Format:    FormatYAML,
		}

		p, err := f.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if p.Dir != filepath.Join(dir, "i18n") {
			t.Errorf("Dir = %q", p.Dir)
		}
		if p.KeysFile != filepath.Join(dir, "i18n", "keys.json") {
			t.Errorf("KeysFile = %q", p.KeysFile)
		}
		if !reflect.DeepEqual(p.Languages, []string{"en", "zh", "de"}) {
			t.Errorf("Languages = %v, want base first", p.Languages)
		}
		if p.Format != FormatYAML {
			t.Errorf("Format = %q", p.Format)
		}
	})

	t.Run("scans directory for languages and keys file", func(t *testing.T) {
		dir := t.TempDir()
		transDir := filepath.Join(dir, "translations")
		writeFile(t, filepath.Join(transDir, "translationKeys.json"), `["a"]`)
		writeFile(t, filepath.Join(transDir, "en.json"), `{}`)
		writeFile(t, filepath.Join(transDir, "zh.json"), `{}`)
		writeFile(t, filepath.Join(transDir, "README.md"), "not a dictionary")

		f := &File{BaseLang: "en"}
		p, err := f.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if p.KeysFile != filepath.Join(transDir, "translationKeys.json") {
			t.Errorf("KeysFile = %q", p.KeysFile)
		}
		if !reflect.DeepEqual(p.Languages, []string{"en", "zh"}) {
			t.Errorf("Languages = %v", p.Languages)
		}
		if p.Format != FormatJSON {
			t.Errorf("Format = %q", p.Format)
		}
	})

	t.Run("defaults keys file when none exists", func(t *testing.T) {
		dir := t.TempDir()
		f := &File{BaseLang: "en", Languages: []string{"en"}}

		p, err := f.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		want := filepath.Join(dir, "translations", DefaultKeysFile)
		if p.KeysFile != want {
			t.Errorf("KeysFile = %q, want %q", p.KeysFile, want)
		}
	})

	t.Run("infers yaml format from files", func(t *testing.T) {
		dir := t.TempDir()
		transDir := filepath.Join(dir, "translations")
		writeFile(t, filepath.Join(transDir, "en.yaml"), "a: b\n")
		writeFile(t, filepath.Join(transDir, "de.yml"), "a: b\n")

		f := &File{BaseLang: "en"}
		p, err := f.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if p.Format != FormatYAML {
			t.Errorf("Format = %q, want yaml", p.Format)
		}
		if !reflect.DeepEqual(p.Languages, []string{"en", "de"}) {
			t.Errorf("Languages = %v", p.Languages)
		}
	})
}

func TestDetect(t *testing.T) {
	t.Run("finds translations directory", func(t *testing.T) {
		dir := t.TempDir()
		transDir := filepath.Join(dir, "translations")
		writeFile(t, filepath.Join(transDir, "translation-keys.json"), `["a"]`)
		writeFile(t, filepath.Join(transDir, "en.json"), `{}`)
		writeFile(t, filepath.Join(transDir, "pt-BR.json"), `{}`)

		p := Detect(dir)
		if p == nil {
			t.Fatal("Detect returned nil")
		}
		if p.Dir != transDir {
			t.Errorf("Dir = %q", p.Dir)
		}
		if p.BaseLang != "en" {
			t.Errorf("BaseLang = %q", p.BaseLang)
		}
		if !reflect.DeepEqual(p.Languages, []string{"en", "pt-BR"}) {
			t.Errorf("Languages = %v", p.Languages)
		}
		if !p.Discover {
			t.Error("Discover should default to true")
		}
	})

	t.Run("prefers earlier candidates", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "translations", "en.json"), `{}`)
		writeFile(t, filepath.Join(dir, "locales", "en.json"), `{}`)

		p := Detect(dir)
		if p == nil {
			t.Fatal("Detect returned nil")
		}
		if p.Dir != filepath.Join(dir, "translations") {
			t.Errorf("Dir = %q, want translations preferred", p.Dir)
		}
	})

	t.Run("keys file alone is enough", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "locales", "keys.json"), `["a"]`)

		p := Detect(dir)
		if p == nil {
			t.Fatal("Detect returned nil")
		}
		if p.KeysFile != filepath.Join(dir, "locales", "keys.json") {
			t.Errorf("KeysFile = %q", p.KeysFile)
		}
	})

	t.Run("base language falls back to first detected", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "translations", "de.json"), `{}`)
		writeFile(t, filepath.Join(dir, "translations", "fr.json"), `{}`)

		p := Detect(dir)
		if p == nil {
			t.Fatal("Detect returned nil")
		}
		if p.BaseLang != "de" {
			t.Errorf("BaseLang = %q, want de", p.BaseLang)
		}
	})

	t.Run("nothing found returns nil", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "src", "main.go"), "package main\n")

		if p := Detect(dir); p != nil {
			t.Fatalf("Detect = %#v, want nil", p)
		}
	})
}

func TestProjectHelpers(t *testing.T) {
	t.Run("dict path prefers existing file", func(t *testing.T) {
		dir := t.TempDir()
		existing := filepath.Join(dir, "de.yml")
		writeFile(t, existing, "a: b\n")

		p := &Project{Dir: dir, Format: FormatYAML}
		if got := p.DictPath("de"); got != existing {
			t.Errorf("DictPath(de) = %q, want existing %q", got, existing)
		}
		if got, want := p.DictPath("fr"), filepath.Join(dir, "fr.yaml"); got != want {
			t.Errorf("DictPath(fr) = %q, want %q", got, want)
		}
	})

	t.Run("json dict path", func(t *testing.T) {
		p := &Project{Dir: "/tmp/translations", Format: FormatJSON}
		if got := p.DictPath("zh"); got != filepath.Join("/tmp/translations", "zh.json") {
			t.Errorf("DictPath(zh) = %q", got)
		}
	})

	t.Run("marker overrides", func(t *testing.T) {
		p := &Project{Markers: map[string]string{"zh": "[待翻译ZH] "}}
		if got := p.Marker("zh"); got != "[待翻译ZH] " {
			t.Errorf("Marker(zh) = %q", got)
		}
		if got := p.Marker("de"); got != "[needs-de] " {
			t.Errorf("Marker(de) = %q", got)
		}
	})

	t.Run("dependent languages", func(t *testing.T) {
		p := &Project{BaseLang: "en", Languages: []string{"en", "zh", "de"}}
		if got := p.Dependent(); !reflect.DeepEqual(got, []string{"zh", "de"}) {
			t.Errorf("Dependent() = %v", got)
		}
	})
}
