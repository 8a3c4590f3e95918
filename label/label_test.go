package label

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{
			name: "camel case",
			key:  "whatNeedsToBeDone",
			want: "What needs to be done",
		},
		{
			name: "namespaced key uses last segment",
			key:  "common.submit",
			want: "Submit",
		},
		{
			name: "uppercase run starts a word",
			key:  "XMLParser",
			want: "Xml parser",
		},
		{
			name: "two word camel case",
			key:  "addTodo",
			want: "Add todo",
		},
		{
			name: "single word",
			key:  "settings",
			want: "Settings",
		},
		{
			name: "deep namespace",
			key:  "app.header.toggleTheme",
			want: "Toggle theme",
		},
		{
			name: "all caps",
			key:  "URL",
			want: "Url",
		},
		{
			name: "uppercase run followed by words",
			key:  "HTMLAndCSS",
			want: "Html and css",
		},
		{
			name: "digits stay attached",
			key:  "error404Page",
			want: "Error404 page",
		},
		{
			name: "snake case",
			key:  "todo_list_title",
			want: "Todo list title",
		},
		{
			name: "trailing separator falls back to full key",
			key:  "common.",
			want: "Common",
		},
		{
			name: "empty key",
			key:  "",
			want: "",
		},
	}

	for _, tc := range tests {
		if got := Generate(tc.key); got != tc.want {
			t.Fatalf("%s: Generate(%q) = %q, want %q", tc.name, tc.key, got, tc.want)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Generate("whatNeedsToBeDone"); got != "What needs to be done" {
			t.Fatalf("run %d: Generate() = %q, want stable output", i, got)
		}
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"addTodo", []string{"add", "Todo"}},
		{"XMLParser", []string{"XML", "Parser"}},
		{"what", []string{"what"}},
		{"", nil},
	}

	for _, tc := range tests {
		got := splitWords(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("splitWords(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("splitWords(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		}
	}
}
