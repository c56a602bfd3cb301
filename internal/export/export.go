// Package export writes document outlines to Excel workbooks.
package export

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/tocgest/internal/doctree"
)

// Sheet names.
const (
	SheetSections = "Sections"
	SheetSummary  = "Summary"
	SheetTOC      = "Table of Contents"
	SheetContent  = "Content"
)

// Layout selects the workbook shape.
type Layout string

const (
	// LayoutSingle puts every section on one sheet.
	LayoutSingle Layout = "single"
	// LayoutMulti splits the outline and the section bodies across two sheets.
	LayoutMulti Layout = "multi"
)

// ParseLayout accepts "single", "multi" or the empty string (single).
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutSingle:
		return LayoutSingle, nil
	case LayoutMulti:
		return LayoutMulti, nil
	}
	return "", fmt.Errorf("unknown layout %q (want single or multi)", s)
}

var sectionsHeader = []any{"Section ID", "Title", "Level", "Page", "Path", "Content"}

// Exporter builds workbooks. The zero value is not usable; use New.
type Exporter struct {
	log *slog.Logger
	now func() time.Time
}

func New(log *slog.Logger) *Exporter {
	return &Exporter{log: log, now: time.Now}
}

// ExportToExcel writes every section of data to a single-sheet workbook at
// path.
func (e *Exporter) ExportToExcel(data doctree.ExportData, path string) error {
	return e.save(path, data, Flatten(data.Sections), LayoutSingle)
}

// ExportSelectedSections writes only the selected sections.
func (e *Exporter) ExportSelectedSections(sections []*doctree.Section, docType doctree.DocumentType, fileName, path string) error {
	data := doctree.ExportData{FileName: fileName, DocumentType: docType}
	return e.save(path, data, FlattenSelected(sections), LayoutSingle)
}

// ExportToMultipleSheets writes a Table of Contents sheet and a Content sheet.
func (e *Exporter) ExportToMultipleSheets(sections []*doctree.Section, docType doctree.DocumentType, fileName, path string) error {
	data := doctree.ExportData{FileName: fileName, DocumentType: docType}
	return e.save(path, data, Flatten(sections), LayoutMulti)
}

// Write streams a workbook of every section in data to w.
func (e *Exporter) Write(w io.Writer, data doctree.ExportData, layout Layout) error {
	return e.write(w, data, Flatten(data.Sections), layout)
}

// WriteSelected streams a workbook of the selected sections in data to w.
func (e *Exporter) WriteSelected(w io.Writer, data doctree.ExportData, layout Layout) error {
	return e.write(w, data, FlattenSelected(data.Sections), layout)
}

func (e *Exporter) write(w io.Writer, data doctree.ExportData, rows []Row, layout Layout) error {
	f, err := e.build(data, rows, layout)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (e *Exporter) save(path string, data doctree.ExportData, rows []Row, layout Layout) error {
	f, err := e.build(data, rows, layout)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	e.log.Info("workbook exported", "path", path, "sections", len(rows), "layout", layout)
	return nil
}

func (e *Exporter) build(data doctree.ExportData, rows []Row, layout Layout) (*excelize.File, error) {
	if data.ExportDate.IsZero() {
		data.ExportDate = e.now()
	}

	f := excelize.NewFile()
	w := &workbook{f: f}

	first := SheetSections
	if layout == LayoutMulti {
		first = SheetTOC
	}
	w.do(func() error { return f.SetSheetName("Sheet1", first) })
	w.initStyles()

	switch layout {
	case LayoutMulti:
		w.tocSheet(rows)
		w.sheet(SheetContent)
		w.contentSheet(rows)
	default:
		w.sectionsSheet(rows)
	}
	w.sheet(SheetSummary)
	w.summarySheet(data, len(rows))

	if w.err != nil {
		f.Close()
		return nil, fmt.Errorf("build workbook: %w", w.err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

// workbook accumulates the first excelize error so sheet builders stay flat.
type workbook struct {
	f      *excelize.File
	err    error
	bold   int
	wrap   int
	indent map[int]int
}

func (w *workbook) do(fn func() error) {
	if w.err == nil {
		w.err = fn()
	}
}

func (w *workbook) initStyles() {
	w.do(func() (err error) {
		w.bold, err = w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		return err
	})
	w.do(func() (err error) {
		w.wrap, err = w.f.NewStyle(&excelize.Style{
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		})
		return err
	})
	w.indent = make(map[int]int)
}

func (w *workbook) indentStyle(depth int) int {
	if id, ok := w.indent[depth]; ok {
		return id
	}
	w.do(func() (err error) {
		w.indent[depth], err = w.f.NewStyle(&excelize.Style{
			Alignment: &excelize.Alignment{Indent: depth},
		})
		return err
	})
	return w.indent[depth]
}

func (w *workbook) sheet(name string) {
	w.do(func() error {
		_, err := w.f.NewSheet(name)
		return err
	})
}

func (w *workbook) row(sheet string, n int, values []any) {
	w.do(func() error {
		return w.f.SetSheetRow(sheet, "A"+strconv.Itoa(n), &values)
	})
}

func (w *workbook) header(sheet string, values []any) {
	w.row(sheet, 1, values)
	last, _ := excelize.ColumnNumberToName(len(values))
	w.do(func() error { return w.f.SetCellStyle(sheet, "A1", last+"1", w.bold) })
}

func (w *workbook) widths(sheet string, widths ...float64) {
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		w.do(func() error { return w.f.SetColWidth(sheet, col, col, width) })
	}
}

func (w *workbook) sectionsSheet(rows []Row) {
	w.header(SheetSections, sectionsHeader)
	for i, r := range rows {
		w.row(SheetSections, i+2, []any{r.ID, r.Title, r.Level, r.PageNumber, r.Path, r.Content})
	}
	w.widths(SheetSections, 12, 40, 8, 8, 60, 80)
}

func (w *workbook) tocSheet(rows []Row) {
	w.header(SheetTOC, []any{"Section ID", "Title", "Level", "Page"})
	for i, r := range rows {
		n := i + 2
		w.row(SheetTOC, n, []any{r.ID, r.Title, r.Level, r.PageNumber})
		if r.Depth > 0 {
			cell := "B" + strconv.Itoa(n)
			style := w.indentStyle(r.Depth)
			w.do(func() error { return w.f.SetCellStyle(SheetTOC, cell, cell, style) })
		}
	}
	w.widths(SheetTOC, 12, 60, 8, 8)
}

func (w *workbook) contentSheet(rows []Row) {
	w.header(SheetContent, []any{"Section ID", "Title", "Content"})
	for i, r := range rows {
		w.row(SheetContent, i+2, []any{r.ID, r.Title, r.Content})
	}
	if len(rows) > 0 {
		last := "C" + strconv.Itoa(len(rows)+1)
		w.do(func() error { return w.f.SetCellStyle(SheetContent, "C2", last, w.wrap) })
	}
	w.widths(SheetContent, 12, 40, 100)
}

func (w *workbook) summarySheet(data doctree.ExportData, count int) {
	docType := data.DocumentType
	if docType == "" {
		docType = doctree.TypeUnknown
	}
	pairs := [][]any{
		{"File Name", data.FileName},
		{"Document Type", string(docType)},
		{"Exported At", data.ExportDate.Format(time.RFC3339)},
		{"Section Count", count},
	}
	for i, p := range pairs {
		w.row(SheetSummary, i+1, p)
	}
	w.do(func() error { return w.f.SetCellStyle(SheetSummary, "A1", "A4", w.bold) })
	w.widths(SheetSummary, 16, 50)
}
