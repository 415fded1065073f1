package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"strings"
)

const (
	nsW = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
	nsR = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

	relHeader = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relFooter = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
)

// Header and footer variants of a section.
const (
	KindDefault = "default"
	KindFirst   = "first"
	KindEven    = "even"
)

// Builder assembles a minimal but valid WordprocessingML package.
type Builder struct {
	body    strings.Builder
	headers map[string][]string
	footers map[string][]string
}

func NewBuilder() *Builder {
	return &Builder{
		headers: make(map[string][]string),
		footers: make(map[string][]string),
	}
}

func runXML(text string) string {
	return `<w:r><w:t xml:space="preserve">` + encodeText(text) + `</w:t></w:r>`
}

func paragraphXML(runs []string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, r := range runs {
		b.WriteString(runXML(r))
	}
	b.WriteString("</w:p>")
	return b.String()
}

// Paragraph appends a body paragraph with one run per argument.
func (b *Builder) Paragraph(runs ...string) *Builder {
	b.body.WriteString(paragraphXML(runs))
	return b
}

// RawParagraph appends body XML as given.
func (b *Builder) RawParagraph(xml string) *Builder {
	b.body.WriteString(xml)
	return b
}

// Table appends a table; each cell holds a single one-run paragraph.
func (b *Builder) Table(rows [][]string) *Builder {
	b.body.WriteString("<w:tbl><w:tblPr><w:tblW w:w=\"0\" w:type=\"auto\"/></w:tblPr>")
	for _, row := range rows {
		b.body.WriteString("<w:tr>")
		for _, cell := range row {
			b.body.WriteString("<w:tc>" + paragraphXML([]string{cell}) + "</w:tc>")
		}
		b.body.WriteString("</w:tr>")
	}
	b.body.WriteString("</w:tbl>")
	return b
}

// Header adds a paragraph to the header of the given kind.
func (b *Builder) Header(kind string, runs ...string) *Builder {
	b.headers[kind] = append(b.headers[kind], paragraphXML(runs))
	return b
}

// Footer adds a paragraph to the footer of the given kind.
func (b *Builder) Footer(kind string, runs ...string) *Builder {
	b.footers[kind] = append(b.footers[kind], paragraphXML(runs))
	return b
}

var kinds = []string{KindDefault, KindFirst, KindEven}

func (b *Builder) Bytes() ([]byte, error) {
	type extra struct {
		name, rel, content string
	}
	var parts []extra
	var refs strings.Builder
	var rels strings.Builder
	var overrides strings.Builder

	add := func(prefix, root, relType string, src map[string][]string) {
		for _, kind := range kinds {
			paras, ok := src[kind]
			if !ok {
				continue
			}
			n := len(parts) + 1
			name := fmt.Sprintf("%s%d.xml", prefix, n)
			id := fmt.Sprintf("rId%d", n)
			parts = append(parts, extra{
				name:    "word/" + name,
				content: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:` + root + ` ` + nsW + ` ` + nsR + `>` + strings.Join(paras, "") + `</w:` + root + `>`,
			})
			fmt.Fprintf(&refs, `<w:%sReference w:type="%s" r:id="%s"/>`, prefix, kind, id)
			fmt.Fprintf(&rels, `<Relationship Id="%s" Type="%s" Target="%s"/>`, id, relType, name)
			fmt.Fprintf(&overrides, `<Override PartName="/word/%s" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.%s+xml"/>`, name, prefix)
		}
	}
	add("header", "hdr", relHeader, b.headers)
	add("footer", "ftr", relFooter, b.footers)

	sect := "<w:sectPr>" + refs.String()
	if _, ok := b.headers[KindFirst]; ok {
		sect += "<w:titlePg/>"
	} else if _, ok := b.footers[KindFirst]; ok {
		sect += "<w:titlePg/>"
	}
	sect += "</w:sectPr>"

	files := []extra{
		{name: "[Content_Types].xml", content: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			overrides.String() + `</Types>`},
		{name: "_rels/.rels", content: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`},
		{name: mainPart, content: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document ` + nsW + ` ` + nsR + `><w:body>` + b.body.String() + sect + `</w:body></w:document>`},
		{name: "word/_rels/document.xml.rels", content: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			rels.String() + `</Relationships>`},
	}
	files = append(files, parts...)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(f.content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *Builder) Save(filename string) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// Document builds the package and parses it back.
func (b *Builder) Document() (*Document, error) {
	data, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data), int64(len(data)))
}

// SampleTemplate repeats every token in the body, a table, the header and
// the footer. Header and footer copies are split across two runs.
func SampleTemplate(tokens []string) *Builder {
	b := NewBuilder()
	b.Paragraph("MODELO DE EDITAL")
	rows := make([][]string, 0, len(tokens))
	for _, tok := range tokens {
		b.Paragraph(tok)
		rows = append(rows, []string{tok})
	}
	b.Table(rows)
	for _, tok := range tokens {
		half := len(tok) / 2
		for half > 0 && !isRuneStart(tok[half]) {
			half--
		}
		b.Header(KindDefault, tok[:half], tok[half:])
		b.Footer(KindDefault, tok[:half], tok[half:])
	}
	return b
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}
