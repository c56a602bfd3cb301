// Package metadata reads descriptive information about a source file.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	rpdf "rsc.io/pdf"

	"github.com/dgallion1/tocgest/internal/doctree"
)

const (
	DefaultCreator  = "PDF Processor"
	DefaultProducer = "Unknown"
)

// Read returns metadata for the file at path. For PDFs the page count and the
// document Info dictionary are read with pdfcpu, falling back to rsc.io/pdf
// for the page count when pdfcpu cannot validate the file. Other formats
// report a single page. When full is false only PageCount and FileSize are
// filled.
func Read(path string, full bool) (doctree.Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return doctree.Metadata{}, fmt.Errorf("stat %s: %w", path, err)
	}

	md := doctree.Metadata{
		PageCount: 1,
		FileSize:  info.Size(),
	}
	if full {
		md.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		md.Creator = DefaultCreator
		md.Producer = DefaultProducer
		md.ModificationDate = info.ModTime()
		md.CreationDate = birthTime(info)
	}

	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return md, nil
	}

	n, xref, err := readPDF(path, full)
	if err != nil {
		n, ferr := fallbackPageCount(path, info.Size())
		if ferr != nil {
			return md, fmt.Errorf("read pdf %s: %w", filepath.Base(path), err)
		}
		md.PageCount = n
		return md, nil
	}
	if n > 0 {
		md.PageCount = n
	}
	if full {
		applyInfo(&md, xref)
	}
	return md, nil
}

// readPDF returns the page count and, when full is set, the cross-reference
// table carrying the Info dictionary.
func readPDF(path string, full bool) (int, *model.XRefTable, error) {
	if !full {
		f, err := os.Open(path)
		if err != nil {
			return 0, nil, err
		}
		defer f.Close()
		n, err := api.PageCount(f, nil)
		return n, nil, err
	}
	ctx, err := readContext(path)
	if err != nil {
		return 0, nil, err
	}
	return ctx.PageCount, ctx.XRefTable, nil
}

func readContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.ReadValidateAndOptimize(f, conf)
}

func applyInfo(md *doctree.Metadata, xref *model.XRefTable) {
	if xref == nil {
		return
	}
	if s := strings.TrimSpace(xref.Title); s != "" {
		md.Title = s
	}
	if s := strings.TrimSpace(xref.Author); s != "" {
		md.Author = s
	}
	if s := strings.TrimSpace(xref.Subject); s != "" {
		md.Subject = s
	}
	if s := strings.TrimSpace(xref.Creator); s != "" {
		md.Creator = s
	}
	if s := strings.TrimSpace(xref.Producer); s != "" {
		md.Producer = s
	}
	if t, ok := types.DateTime(xref.CreationDate, true); ok {
		md.CreationDate = t
	}
	if t, ok := types.DateTime(xref.ModDate, true); ok {
		md.ModificationDate = t
	}
}

func fallbackPageCount(path string, size int64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	doc, err := rpdf.NewReader(f, size)
	if err != nil {
		return 0, err
	}
	n := doc.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("no pages")
	}
	return n, nil
}
