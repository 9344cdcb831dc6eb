// Package xliff extracts and injects translatable text in XLIFF 1.2
// documents. Documents round-trip through a raw token stream so that
// namespace prefixes, unknown elements, and attribute order survive
// untouched; only target elements inside matched trans-units change.
package xliff

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	perr "gcsbridge/internal/platform/errors"
)

// Segment is one translatable unit: the trans-unit id and its source text
type Segment struct {
	UnitID string
	Text   string
}

// Extract returns the source text of every trans-unit carrying an id and
// non-empty source content, in document order.
func Extract(doc []byte) ([]Segment, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))

	var (
		segs     []Segment
		unitID   string
		inUnit   bool
		inSource bool
		text     strings.Builder
	)

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeMalformed, "xliff document unparsable")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "trans-unit":
				inUnit = true
				unitID = attrValue(t, "id")
			case "source":
				if inUnit {
					inSource = true
					text.Reset()
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "source":
				if inUnit && inSource {
					inSource = false
					if unitID != "" && strings.TrimSpace(text.String()) != "" {
						segs = append(segs, Segment{UnitID: unitID, Text: text.String()})
					}
				}
			case "trans-unit":
				inUnit = false
				unitID = ""
			}
		case xml.CharData:
			if inSource {
				text.Write(t)
			}
		}
	}
	return segs, nil
}

// Inject writes translations into the target elements of the trans-units
// named by the map keys, creating a target (tagged with targetLang) when the
// unit has none. Units absent from the map pass through unchanged.
func Inject(doc []byte, targetLang string, translations map[string]string) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var out bytes.Buffer

	var (
		inUnit      bool
		unitPrefix  string
		translation string
		haveTrans   bool
		sawTarget   bool
	)

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeMalformed, "xliff document unparsable")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "trans-unit" {
				inUnit = true
				unitPrefix = t.Name.Space
				translation, haveTrans = translations[attrValue(t, "id")]
				sawTarget = false
			}
			if inUnit && haveTrans && t.Name.Local == "target" {
				sawTarget = true
				writeStart(&out, t)
				writeEscaped(&out, translation)
				if err := skipElement(dec, t.Name.Local); err != nil {
					return nil, err
				}
				writeEnd(&out, xml.EndElement{Name: t.Name})
				continue
			}
			writeStart(&out, t)
		case xml.EndElement:
			if t.Name.Local == "trans-unit" && inUnit {
				if haveTrans && !sawTarget {
					writeCreatedTarget(&out, unitPrefix, targetLang, translation)
				}
				inUnit = false
				haveTrans = false
			}
			writeEnd(&out, t)
		case xml.CharData:
			writeCharData(&out, t)
		case xml.Comment:
			out.WriteString("<!--")
			out.Write(t)
			out.WriteString("-->")
		case xml.ProcInst:
			out.WriteString("<?")
			out.WriteString(t.Target)
			out.WriteByte(' ')
			out.Write(t.Inst)
			out.WriteString("?>")
		case xml.Directive:
			out.WriteString("<!")
			out.Write(t)
			out.WriteString(">")
		}
	}
	return out.Bytes(), nil
}

// skipElement discards tokens up to and including the end of the current
// element named local, honoring nesting.
func skipElement(dec *xml.Decoder, local string) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.RawToken()
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodeMalformed, "xliff element truncated")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == local {
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == local {
				depth--
			}
		}
	}
	return nil
}

func attrValue(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// rawName renders a RawToken name, where Space holds the literal prefix
func rawName(n xml.Name) string {
	if n.Space != "" {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

func writeStart(out *bytes.Buffer, t xml.StartElement) {
	out.WriteByte('<')
	out.WriteString(rawName(t.Name))
	for _, a := range t.Attr {
		out.WriteByte(' ')
		out.WriteString(rawName(a.Name))
		out.WriteString(`="`)
		writeEscaped(out, a.Value)
		out.WriteByte('"')
	}
	out.WriteByte('>')
}

func writeEnd(out *bytes.Buffer, t xml.EndElement) {
	out.WriteString("</")
	out.WriteString(rawName(t.Name))
	out.WriteByte('>')
}

func writeCreatedTarget(out *bytes.Buffer, prefix, lang, text string) {
	name := "target"
	if prefix != "" {
		name = prefix + ":target"
	}
	out.WriteByte('<')
	out.WriteString(name)
	out.WriteString(` xml:lang="`)
	writeEscaped(out, lang)
	out.WriteString(`">`)
	writeEscaped(out, text)
	out.WriteString("</")
	out.WriteString(name)
	out.WriteByte('>')
}

func writeEscaped(out *bytes.Buffer, s string) {
	_ = xml.EscapeText(out, []byte(s))
}

// writeCharData re-escapes decoded character data without touching
// whitespace, keeping the document's original formatting intact
func writeCharData(out *bytes.Buffer, cd xml.CharData) {
	for _, b := range cd {
		switch b {
		case '&':
			out.WriteString("&amp;")
		case '<':
			out.WriteString("&lt;")
		case '>':
			out.WriteString("&gt;")
		default:
			out.WriteByte(b)
		}
	}
}
