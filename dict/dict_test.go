package dict

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const zhMarker = "[needs-zh] "

func TestFromWire(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		marker string
		want   Value
	}{
		{
			name:   "plain translation",
			raw:    "Add todo",
			marker: zhMarker,
			want:   Translated("Add todo"),
		},
		{
			name:   "marker is stripped into the tag",
			raw:    "[needs-zh] Add todo",
			marker: zhMarker,
			want:   Pending("Add todo"),
		},
		{
			name:   "marker alone",
			raw:    "[needs-zh] ",
			marker: zhMarker,
			want:   Pending(""),
		},
		{
			name:   "foreign marker is trusted as text",
			raw:    "[needs-ja] Add todo",
			marker: zhMarker,
			want:   Translated("[needs-ja] Add todo"),
		},
		{
			name:   "empty marker disables detection",
			raw:    "[needs-zh] Add todo",
			marker: "",
			want:   Translated("[needs-zh] Add todo"),
		},
	}

	for _, tc := range tests {
		if got := FromWire(tc.raw, tc.marker); got != tc.want {
			t.Fatalf("%s: FromWire(%q) = %#v, want %#v", tc.name, tc.raw, got, tc.want)
		}
	}
}

func TestValueStates(t *testing.T) {
	if v := Translated("hello"); !v.Valid() || v.Missing() {
		t.Fatalf("Translated(hello): Valid=%v Missing=%v, want valid", v.Valid(), v.Missing())
	}
	if v := Translated("   "); v.Valid() || !v.Missing() {
		t.Fatalf("blank value must be missing, got Valid=%v Missing=%v", v.Valid(), v.Missing())
	}
	if v := Pending("hello"); v.Valid() {
		t.Fatalf("placeholder value must not be valid")
	}
	if got := Pending("hello").Wire(zhMarker); got != "[needs-zh] hello" {
		t.Fatalf("Wire() = %q, want marker re-attached", got)
	}
	if got := Translated("hello").Wire(zhMarker); got != "hello" {
		t.Fatalf("Wire() = %q, want bare text", got)
	}
}

func TestParseTagsPlaceholders(t *testing.T) {
	data := []byte(`{
    "addTodo": "[needs-zh] Add todo",
    "todoList": "待办列表",
    "empty": ""
}`)

	d, err := Parse(data, "zh", zhMarker)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if v, _ := d.Get("addTodo"); !v.Placeholder || v.Text != "Add todo" {
		t.Fatalf("addTodo = %#v, want placeholder with stripped text", v)
	}
	if !d.Valid("todoList") {
		t.Fatalf("todoList should be a valid translation")
	}
	if d.Valid("empty") || !d.Has("empty") {
		t.Fatalf("empty value should be present but not valid")
	}
}

func TestParseRejectsNonStringValues(t *testing.T) {
	for _, data := range []string{
		`{"a": 1}`,
		`{"a": {"b": "nested"}}`,
		`["not", "an", "object"]`,
		`not json`,
	} {
		if _, err := Parse([]byte(data), "en", "[needs-en] "); err == nil {
			t.Fatalf("Parse(%q) should fail", data)
		}
	}
}

func TestLoadMissingFileIsEmptyDictionary(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "nope.json"), "zh", zhMarker)
	if err != nil {
		t.Fatalf("Load() of missing file must not error, got %v", err)
	}
	if d.Len() != 0 || d.Lang != "zh" {
		t.Fatalf("Load() = %d entries lang %q, want empty zh dictionary", d.Len(), d.Lang)
	}
}

func TestLoadCorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zh.json")
	if err := os.WriteFile(path, []byte(`{"a": [1,2]}`), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}

	d, err := Load(path, "zh", zhMarker)
	if err == nil {
		t.Fatalf("Load() of corrupt file should return the parse error")
	}
	if d == nil || d.Len() != 0 {
		t.Fatalf("Load() of corrupt file must still return an empty dictionary")
	}
}

func TestMarshalSortsKeysAndReattachesMarkers(t *testing.T) {
	d := New("zh", zhMarker)
	d.Set("todoList", Translated("待办列表"))
	d.Set("addTodo", Pending("Add todo"))

	data, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	want := `{
    "addTodo": "[needs-zh] Add todo",
    "todoList": "待办列表"
}
`
	if string(data) != want {
		t.Fatalf("Marshal() = %q, want %q", data, want)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	d := New("zh", zhMarker)
	d.Set("quote", Translated(`say "hi"`))
	d.Set("pending", Pending("多行\ntext"))

	data, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	back, err := Parse(data, "zh", zhMarker)
	if err != nil {
		t.Fatalf("Parse(Marshal()) error: %v", err)
	}

	for _, key := range []string{"quote", "pending"} {
		orig, _ := d.Get(key)
		got, ok := back.Get(key)
		if !ok || got != orig {
			t.Fatalf("round trip %s = %#v, want %#v", key, got, orig)
		}
	}
}

func TestWriteFileCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "translations", "deep", "zh.json")

	d := New("zh", zhMarker)
	d.Set("addTodo", Translated("添加待办"))

	if err := d.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	back, err := Load(path, "zh", zhMarker)
	if err != nil {
		t.Fatalf("Load() after WriteFile() error: %v", err)
	}
	if !back.Valid("addTodo") {
		t.Fatalf("written dictionary lost its entry")
	}
}

func TestLoadKeysPreservesOrderAndDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	content := `["todoList", "addTodo", "todoList", "", "common.submit"]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}

	keys, err := LoadKeys(path)
	if err != nil {
		t.Fatalf("LoadKeys() error: %v", err)
	}

	want := []string{"todoList", "addTodo", "common.submit"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("LoadKeys() = %#v, want %#v", keys, want)
	}
}

func TestLoadKeysRejectsMalformedContent(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"object instead of array", `{"todoList": true}`},
		{"array of numbers", `[1, 2, 3]`},
		{"bare null", `null`},
		{"not json", `todoList`},
	}

	for _, tc := range tests {
		path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "-")+".json")
		if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
			t.Fatalf("os.WriteFile() error: %v", err)
		}
		if _, err := LoadKeys(path); err == nil {
			t.Fatalf("%s: LoadKeys() should fail", tc.name)
		}
	}

	if _, err := LoadKeys(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("LoadKeys() of a missing file should fail")
	}
}

func TestSaveKeysRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "keys.json")
	keys := []string{"todoList", "addTodo"}

	if err := SaveKeys(path, keys); err != nil {
		t.Fatalf("SaveKeys() error: %v", err)
	}

	back, err := LoadKeys(path)
	if err != nil {
		t.Fatalf("LoadKeys() after SaveKeys() error: %v", err)
	}
	if !reflect.DeepEqual(back, keys) {
		t.Fatalf("round trip = %#v, want %#v", back, keys)
	}
}
