// Package prompt builds segment-batch translation prompts and parses the
// model's "Segment N:" formatted replies back into per-segment text.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"gcsbridge/internal/core/xliff"
)

const header = `Translate the following text segments from %s to %s.

For each segment, provide ONLY the translation without any additional text, markup, or identifiers.

Here are the segments:`

// Build renders the batch prompt for one document's segments. Segment
// numbering is positional so replies can be mapped back regardless of the
// trans-unit ids in the document.
func Build(sourceLocale, targetLocale string, segs []xliff.Segment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, header, displayLocale(sourceLocale), displayLocale(targetLocale))
	for i, seg := range segs {
		fmt.Fprintf(&sb, "\n\nSegment %d:\n%s", i, seg.Text)
	}
	return sb.String()
}

// displayLocale renders a BCP 47 tag for the prompt ("en_us" -> "en-US").
// Display only: wire calls and asset matching use the event's tags untouched.
func displayLocale(s string) string {
	tag, err := language.Parse(s)
	if err != nil {
		return s
	}
	return tag.String()
}

// ParseResponse pulls per-segment translations out of the model reply.
// Segments the model skipped are absent from the map; callers decide whether
// a partial reply is usable.
func ParseResponse(reply string, n int) map[int]string {
	out := make(map[int]string, n)
	for i := 0; i < n; i++ {
		re := regexp.MustCompile(fmt.Sprintf(`(?s)Segment\s*%d\b:?\s*(.*?)(?:\s*(?:Segment\s*\d+:|$))`, i))
		m := re.FindStringSubmatch(reply)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[1])
		if text != "" {
			out[i] = text
		}
	}
	return out
}
