// Package docx opens Word documents, replaces placeholder tokens in the
// body, tables, headers and footers, and writes the result back out.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

const mainPart = "word/document.xml"

var ErrNotDocx = errors.New("not a docx document")

type part struct {
	name     string
	method   uint16
	data     []byte
	xml      string
	modified bool
}

// Document is an in-memory .docx package. Only the WordprocessingML parts
// that carry visible text are decoded; everything else is copied verbatim.
type Document struct {
	parts []*part
	index map[string]*part
}

// Open reads a .docx from disk.
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read parses a .docx package from r.
func Read(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	doc := &Document{index: make(map[string]*part, len(zr.File))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		p := &part{name: f.Name, method: f.Method, data: data}
		if isTextPart(f.Name) {
			p.xml = string(data)
		}
		doc.parts = append(doc.parts, p)
		doc.index[f.Name] = p
	}

	if _, ok := doc.index[mainPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrNotDocx, mainPart)
	}
	return doc, nil
}

func isTextPart(name string) bool {
	if name == mainPart {
		return true
	}
	dir, file := path.Split(name)
	if dir != "word/" || !strings.HasSuffix(file, ".xml") {
		return false
	}
	return strings.HasPrefix(file, "header") || strings.HasPrefix(file, "footer")
}

// TextParts returns the names of the parts searched for placeholders: the
// main body first, then every header, then every footer.
func (d *Document) TextParts() []string {
	var headers, footers []string
	for _, p := range d.parts {
		switch {
		case p.name == mainPart:
		case !isTextPart(p.name):
		case strings.HasPrefix(path.Base(p.name), "header"):
			headers = append(headers, p.name)
		default:
			footers = append(footers, p.name)
		}
	}
	sort.Strings(headers)
	sort.Strings(footers)
	out := append([]string{mainPart}, headers...)
	return append(out, footers...)
}

// PartXML returns the current XML of a text part.
func (d *Document) PartXML(name string) string {
	if p, ok := d.index[name]; ok {
		return p.xml
	}
	return ""
}

// Replace substitutes every occurrence of every key in values, walking the
// parts in TextParts order. It returns the number of substitutions made.
// Keys are applied one at a time in sorted order.
func (d *Document) Replace(values map[string]string) int {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	total := 0
	for _, name := range d.TextParts() {
		p := d.index[name]
		out, n := replaceInPart(p.xml, keys, values)
		if n > 0 {
			p.xml = out
			p.modified = true
			total += n
		}
	}
	return total
}

// ReplaceToken substitutes a single token everywhere.
func (d *Document) ReplaceToken(token, value string) int {
	return d.Replace(map[string]string{token: value})
}

// Text returns the text of every paragraph in TextParts order. Breaks and
// tabs are rendered as "\n" and "\t".
func (d *Document) Text() []string {
	var out []string
	for _, name := range d.TextParts() {
		out = append(out, paragraphTexts(d.index[name].xml)...)
	}
	return out
}

// Contains reports whether s appears in any paragraph.
func (d *Document) Contains(s string) bool {
	for _, t := range d.Text() {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

// Write serializes the package, preserving part order and compression.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, p := range d.parts {
		data := p.data
		if p.modified {
			data = []byte(p.xml)
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: p.method})
		if err != nil {
			return err
		}
		if _, err := fw.Write(data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// Bytes serializes the package into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the package to filename.
func (d *Document) Save(filename string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}
