package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/editalgen/editalgen/clause"
	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/docx"
	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/placeholder"
	"github.com/editalgen/editalgen/storage"
	"github.com/editalgen/editalgen/util/common"

	"go.uber.org/atomic"
)

const fileTimeLayout = "20060102_150405"

// DocumentGenerator turns an edital into a .docx in the document store.
type DocumentGenerator struct {
	Clauses  *clause.Loader
	Template string
	Store    storage.Store
	Now      func() time.Time

	generated atomic.Int64
	failed    atomic.Int64
}

func NewDocumentGenerator(clauses *clause.Loader, template string, store storage.Store) *DocumentGenerator {
	return &DocumentGenerator{
		Clauses:  clauses,
		Template: template,
		Store:    store,
		Now:      time.Now,
	}
}

// Dictionary returns the current clause dictionary. On a load error the
// returned dictionary is empty and the error wraps ErrConfig.
func (g *DocumentGenerator) Dictionary() (clause.Dictionary, error) {
	d, err := g.Clauses.Get()
	if err != nil {
		return d, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return d, nil
}

// Render merges e into the template and returns the document bytes.
func (g *DocumentGenerator) Render(e *model.Edital, signer placeholder.Signer) ([]byte, error) {
	d, err := g.Dictionary()
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	doc, err := docx.Open(g.Template)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: template not found: %s", ErrConfig, g.Template)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: template %s: %w", ErrConfig, g.Template, err)
	}

	values := placeholder.Resolve(e, signer, d)
	n := doc.Replace(values)
	logger.Debugf("edital %d: %d placeholders replaced", e.Id, n)

	return doc.Bytes()
}

// FileName builds the output name for a title at the current time.
func (g *DocumentGenerator) FileName(title string, edited bool) string {
	name := "Edital_" + common.SanitizeFilenamePart(title) + "_"
	if edited {
		name += "EDITED_"
	}
	return name + g.Now().Format(fileTimeLayout) + ".docx"
}

// save stores data under name, or under name_2, name_3 and so on when the
// store reports the name as taken. The store claims each name atomically,
// so concurrent generations in the same second never share a file.
func (g *DocumentGenerator) save(ctx context.Context, name string, data []byte) (string, error) {
	base := strings.TrimSuffix(name, ".docx")
	candidate := name
	for i := 2; ; i++ {
		err := g.Store.Save(ctx, candidate, bytes.NewReader(data))
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, storage.ErrExist) {
			return "", err
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate = base + "_" + strconv.Itoa(i) + ".docx"
	}
}

// Generate renders e and saves it, returning the stored file name.
func (g *DocumentGenerator) Generate(ctx context.Context, e *model.Edital, signer placeholder.Signer, edited bool) (string, error) {
	data, err := g.Render(e, signer)
	if err != nil {
		g.failed.Inc()
		return "", err
	}
	name, err := g.save(ctx, g.FileName(e.FormName, edited), data)
	if err != nil {
		g.failed.Inc()
		return "", err
	}
	g.generated.Inc()
	logger.Infof("edital %d generated as %s (%s)", e.Id, name, common.FormatSize(int64(len(data))))
	return name, nil
}

// Generated is the number of documents written since start.
func (g *DocumentGenerator) Generated() int64 {
	return g.generated.Load()
}

// Failed is the number of failed generations since start.
func (g *DocumentGenerator) Failed() int64 {
	return g.failed.Load()
}
