package prompt

import (
	"strings"
	"testing"

	"gcsbridge/internal/core/xliff"
)

func TestBuild(t *testing.T) {
	segs := []xliff.Segment{
		{UnitID: "u1", Text: "Hello"},
		{UnitID: "u2", Text: "World"},
	}
	p := Build("en-US", "fr-FR", segs)

	if !strings.Contains(p, "from en-US to fr-FR") {
		t.Fatalf("prompt missing locales:\n%s", p)
	}
	if !strings.Contains(p, "Segment 0:\nHello") || !strings.Contains(p, "Segment 1:\nWorld") {
		t.Fatalf("prompt missing segments:\n%s", p)
	}
	if strings.Contains(p, "u1") {
		t.Fatal("trans-unit ids must not leak into the prompt")
	}
}

func TestBuildCanonicalizesLocaleDisplay(t *testing.T) {
	p := Build("en_us", "fr_fr", []xliff.Segment{{UnitID: "u1", Text: "Hello"}})
	if !strings.Contains(p, "from en-US to fr-FR") {
		t.Fatalf("prompt should render canonical tags:\n%s", p)
	}

	p = Build("x-!!", "fr-FR", []xliff.Segment{{UnitID: "u1", Text: "Hello"}})
	if !strings.Contains(p, "from x-!! to fr-FR") {
		t.Fatalf("unparseable tags pass through:\n%s", p)
	}
}

func TestParseResponse(t *testing.T) {
	reply := "Segment 0:\nBonjour\n\nSegment 1:\nMonde"
	got := ParseResponse(reply, 2)

	if got[0] != "Bonjour" {
		t.Fatalf("seg 0 = %q", got[0])
	}
	if got[1] != "Monde" {
		t.Fatalf("seg 1 = %q", got[1])
	}
}

func TestParseResponseVariants(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		n     int
		want  map[int]string
	}{
		{"no colon", "Segment 0\nSalut", 1, map[int]string{0: "Salut"}},
		{"inline", "Segment 0: Salut Segment 1: Monde", 2, map[int]string{0: "Salut", 1: "Monde"}},
		{"skipped segment", "Segment 0:\nSalut\nSegment 2:\nFin", 3, map[int]string{0: "Salut", 2: "Fin"}},
		{"multiline body", "Segment 0:\nline one\nline two\nSegment 1:\nnext", 2,
			map[int]string{0: "line one\nline two", 1: "next"}},
		{"empty reply", "", 2, map[int]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResponse(tt.reply, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Fatalf("seg %d = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestParseResponseNoDigitPrefixConfusion(t *testing.T) {
	// "Segment 1" must not match inside "Segment 10"
	reply := "Segment 1:\nun\nSegment 10:\ndix"
	got := ParseResponse(reply, 11)
	if got[1] != "un" {
		t.Fatalf("seg 1 = %q", got[1])
	}
	if got[10] != "dix" {
		t.Fatalf("seg 10 = %q", got[10])
	}
}
