package journal

import "testing"

func TestParseNext(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"next only", `<https://events-va6.adobe.io/events-fast/abc?since=5>; rel="next"`,
			"https://events-va6.adobe.io/events-fast/abc?since=5"},
		{"multiple rels", `<https://x/first>; rel="first", <https://x/next?p=2>; rel="next"`,
			"https://x/next?p=2"},
		{"no next rel", `<https://x/first>; rel="first"`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseNext(tt.header); got != tt.want {
				t.Fatalf("ParseNext(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestFixURL(t *testing.T) {
	const base = "https://events-va6.adobe.io"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"absolute unchanged", "https://events-va6.adobe.io/events-fast/j1?since=3",
			"https://events-va6.adobe.io/events-fast/j1?since=3"},
		{"stray angle fragment", "https://bad</events-fast/j1?since=3",
			base + "/events-fast/j1?since=3"},
		{"rooted relative", "/events-fast/j1", base + "/events-fast/j1"},
		{"bare relative", "events-fast/j1", base + "/events-fast/j1"},
		{"whitespace trimmed", "  /events-fast/j1 ", base + "/events-fast/j1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FixURL(base, tt.in); got != tt.want {
				t.Fatalf("FixURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
