package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDataDirAndFilePathUseXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	wantDir := filepath.Join(tmp, "langsync")
	if dir != wantDir {
		t.Fatalf("DataDir() = %q, want %q", dir, wantDir)
	}

	wantPath := filepath.Join(tmp, "langsync", "auth.json")
	if got := FilePath(); got != wantPath {
		t.Fatalf("FilePath() = %q, want %q", got, wantPath)
	}
}

func TestSaveLoadRemoveLifecycle(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	store := Store{
		"google": {Type: "api", Key: "apikey123456"},
		"groq":   {Type: "api", Key: "groqkey"},
	}

	if err := Save(store); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	path := filepath.Join(tmp, "langsync", "auth.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("auth.json mode = %o, want 600", info.Mode().Perm())
	}

	loaded := Load()
	if loaded["google"] == nil || loaded["google"].Key != "apikey123456" {
		t.Fatalf("Load() missing google key: %#v", loaded["google"])
	}
	if got := loaded.Providers(); !reflect.DeepEqual(got, []string{"google", "groq"}) {
		t.Fatalf("Providers() = %v", got)
	}

	if err := Remove("google"); err != nil {
		t.Fatalf("Remove(google) error: %v", err)
	}
	if got := GetAPIKey("google"); got != "" {
		t.Fatalf("GetAPIKey after remove = %q, want empty", got)
	}
	if GetAPIKey("groq") == "" {
		t.Fatalf("groq key should remain after removing google")
	}

	if err := Remove("missing-provider"); err != nil {
		t.Fatalf("Remove(missing) should be no-op, got: %v", err)
	}

	if err := RemoveAll(); err != nil {
		t.Fatalf("RemoveAll() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("auth.json should be removed, stat err=%v", err)
	}
	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() after RemoveAll should be empty, got=%#v", got)
	}
}

func TestLoadToleratesCorruptFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	path := filepath.Join(tmp, "langsync", "auth.json")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() on corrupt file = %#v, want empty store", got)
	}
}

func TestSetAPIKeyWithBaseURL(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := SetAPIKeyWithBaseURL("custom-openai", "sk-abc", "https://llm.internal/v1"); err != nil {
		t.Fatalf("SetAPIKeyWithBaseURL() error: %v", err)
	}

	if got := GetAPIKey("custom-openai"); got != "sk-abc" {
		t.Fatalf("GetAPIKey = %q", got)
	}
	if got := GetBaseURL("custom-openai"); got != "https://llm.internal/v1" {
		t.Fatalf("GetBaseURL = %q", got)
	}
}

func TestResolveAPIKeyPriority(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := SetAPIKey("google", "stored-key"); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}

	t.Setenv("GOOGLE_API_KEY", "env-key")
	t.Setenv(EnvAPIKey, "generic-key")

	if got := ResolveAPIKey("google", "flag-key"); got != "flag-key" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := ResolveAPIKey("google", ""); got != "env-key" {
		t.Fatalf("provider env should win over generic env, got %q", got)
	}

	t.Setenv("GOOGLE_API_KEY", "")
	if got := ResolveAPIKey("google", ""); got != "generic-key" {
		t.Fatalf("generic env should win over store, got %q", got)
	}

	t.Setenv(EnvAPIKey, "")
	if got := ResolveAPIKey("google", ""); got != "stored-key" {
		t.Fatalf("stored key expected, got %q", got)
	}
}

func TestEnvVarForProviderAndMaskKey(t *testing.T) {
	cases := map[string]string{
		"google":        "GOOGLE_API_KEY",
		"groq":          "GROQ_API_KEY",
		"custom-openai": "OPENAI_API_KEY",
		"ollama":        "",
		"stub":          "",
		"unknown":       "",
	}
	for provider, want := range cases {
		if got := EnvVarForProvider(provider); got != want {
			t.Fatalf("EnvVarForProvider(%q) = %q, want %q", provider, got, want)
		}
	}

	if got := MaskKey("short"); got != "****" {
		t.Fatalf("MaskKey(short) = %q, want ****", got)
	}
	if got := MaskKey("12345678"); got != "****" {
		t.Fatalf("MaskKey(8 chars) = %q, want ****", got)
	}
	if got := MaskKey("123456789"); got != "1234...6789" {
		t.Fatalf("MaskKey(9 chars) = %q, want 1234...6789", got)
	}
}
