package xliff

import (
	"strings"
	"testing"

	perr "gcsbridge/internal/platform/errors"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<xliff xmlns="urn:oasis:names:tc:xliff:document:1.2" version="1.2">
  <file source-language="en-US" target-language="fr-FR" datatype="plaintext" original="home.json">
    <body>
      <trans-unit id="u1" restype="string">
        <source>Hello &amp; welcome</source>
      </trans-unit>
      <trans-unit id="u2">
        <source>Goodbye</source>
        <target xml:lang="fr-FR">stale</target>
      </trans-unit>
      <trans-unit id="u3">
        <source>   </source>
      </trans-unit>
      <trans-unit id="u4">
        <source>Untouched</source>
      </trans-unit>
    </body>
  </file>
</xliff>`

func TestExtract(t *testing.T) {
	segs, err := Extract([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("segments = %d, want 3 (whitespace-only source skipped)", len(segs))
	}
	if segs[0].UnitID != "u1" || segs[0].Text != "Hello & welcome" {
		t.Fatalf("seg[0] = %+v", segs[0])
	}
	if segs[1].UnitID != "u2" || segs[1].Text != "Goodbye" {
		t.Fatalf("seg[1] = %+v", segs[1])
	}
	if segs[2].UnitID != "u4" {
		t.Fatalf("seg[2] = %+v", segs[2])
	}
}

func TestExtractMalformed(t *testing.T) {
	_, err := Extract([]byte("<xliff><file>"))
	if !perr.IsCode(err, perr.ErrorCodeMalformed) {
		t.Fatalf("err = %v, want Malformed", err)
	}
}

func TestInjectReplacesExistingTarget(t *testing.T) {
	out, err := Inject([]byte(sampleDoc), "fr-FR", map[string]string{"u2": "Au revoir"})
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `<target xml:lang="fr-FR">Au revoir</target>`) {
		t.Fatalf("output missing replaced target:\n%s", s)
	}
	if strings.Contains(s, "stale") {
		t.Fatal("old target text survived")
	}
}

func TestInjectCreatesMissingTarget(t *testing.T) {
	out, err := Inject([]byte(sampleDoc), "fr-FR", map[string]string{"u1": "Bonjour & bienvenue"})
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `<target xml:lang="fr-FR">Bonjour &amp; bienvenue</target>`) {
		t.Fatalf("output missing created target:\n%s", s)
	}
	// untouched units keep their source and gain nothing
	if strings.Count(s, "<target") != 2 {
		t.Fatalf("target count = %d, want 2:\n%s", strings.Count(s, "<target"), s)
	}
}

func TestInjectPreservesUnmappedUnits(t *testing.T) {
	out, err := Inject([]byte(sampleDoc), "fr-FR", map[string]string{"u1": "Bonjour"})
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "<source>Untouched</source>") {
		t.Fatalf("unmapped unit changed:\n%s", s)
	}
	if !strings.Contains(s, `<target xml:lang="fr-FR">stale</target>`) {
		t.Fatalf("unmapped existing target changed:\n%s", s)
	}
	if !strings.Contains(s, "Hello &amp; welcome") {
		t.Fatalf("source escaping lost:\n%s", s)
	}
}

func TestInjectKeepsPrefixedNames(t *testing.T) {
	doc := `<x:xliff xmlns:x="urn:oasis:names:tc:xliff:document:1.2"><x:file><x:body>` +
		`<x:trans-unit id="u1"><x:source>Hi</x:source></x:trans-unit>` +
		`</x:body></x:file></x:xliff>`
	out, err := Inject([]byte(doc), "de-DE", map[string]string{"u1": "Hallo"})
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `<x:target xml:lang="de-DE">Hallo</x:target>`) {
		t.Fatalf("prefixed target missing:\n%s", s)
	}
	if !strings.Contains(s, "<x:source>Hi</x:source>") {
		t.Fatalf("prefixes lost:\n%s", s)
	}
}

func TestExtractInjectRoundTrip(t *testing.T) {
	segs, err := Extract([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	translations := make(map[string]string, len(segs))
	for _, seg := range segs {
		translations[seg.UnitID] = "[fr] " + seg.Text
	}
	out, err := Inject([]byte(sampleDoc), "fr-FR", translations)
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	s := string(out)
	for _, want := range []string{"[fr] Hello &amp; welcome", "[fr] Goodbye", "[fr] Untouched"} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q:\n%s", want, s)
		}
	}
	// injected output still parses
	if _, err := Extract(out); err != nil {
		t.Fatalf("re-Extract: %v", err)
	}
}
