package export

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/tocgest/internal/doctree"
)

func testExporter() *Exporter {
	e := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func sampleSections() []*doctree.Section {
	return []*doctree.Section{
		{
			ID: "section-1", Title: "I. DEFINITIONS", Level: 1, PageNumber: 1, Content: "terms",
			Subsections: []*doctree.Section{
				{ID: "section-2", Title: "A. Scope", Level: 3, PageNumber: 2, Content: "scope body"},
				{ID: "section-3", Title: "B. Terms", Level: 3, PageNumber: 2, Selected: true, Subsections: []*doctree.Section{
					{ID: "section-4", Title: "1. Minor", Level: 2, PageNumber: 3, Selected: true},
				}},
			},
		},
		{ID: "section-5", Title: "II. CONTRIBUTIONS", Level: 1, PageNumber: 5, Selected: true},
	}
}

func openRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("rows of %s: %v", sheet, err)
	}
	return rows
}

func TestFlatten(t *testing.T) {
	rows := Flatten(sampleSections())
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	want := []string{
		"I. DEFINITIONS",
		"I. DEFINITIONS > A. Scope",
		"I. DEFINITIONS > B. Terms",
		"I. DEFINITIONS > B. Terms > 1. Minor",
		"II. CONTRIBUTIONS",
	}
	for i, w := range want {
		if rows[i].Path != w {
			t.Errorf("row %d: expected path %q, got %q", i, w, rows[i].Path)
		}
	}
	if rows[3].Depth != 2 || rows[4].Depth != 0 {
		t.Errorf("unexpected depths %d, %d", rows[3].Depth, rows[4].Depth)
	}
}

func TestFlattenSelected(t *testing.T) {
	rows := FlattenSelected(sampleSections())
	var ids []string
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	if !slices.Equal(ids, []string{"section-3", "section-4", "section-5"}) {
		t.Errorf("unexpected selection %v", ids)
	}
	if rows[1].Path != "I. DEFINITIONS > B. Terms > 1. Minor" {
		t.Errorf("expected path through unselected ancestor, got %q", rows[1].Path)
	}
}

func TestFlatten_Empty(t *testing.T) {
	if rows := Flatten(nil); len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestExportToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	data := doctree.ExportData{
		FileName:     "deal.pdf",
		DocumentType: doctree.TypeECCA,
		Sections:     sampleSections(),
	}
	if err := testExporter().ExportToExcel(data, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := openRows(t, path, SheetSections)
	if len(rows) != 6 {
		t.Fatalf("expected header + 5 rows, got %d", len(rows))
	}
	header := []string{"Section ID", "Title", "Level", "Page", "Path", "Content"}
	if !slices.Equal(rows[0], header) {
		t.Errorf("expected header %v, got %v", header, rows[0])
	}
	if !slices.Equal(rows[2], []string{"section-2", "A. Scope", "3", "2", "I. DEFINITIONS > A. Scope", "scope body"}) {
		t.Errorf("unexpected row %v", rows[2])
	}

	summary := openRows(t, path, SheetSummary)
	if summary[0][1] != "deal.pdf" || summary[1][1] != "ECCA" {
		t.Errorf("unexpected summary %v", summary)
	}
	if summary[2][1] != "2026-03-01T12:00:00Z" {
		t.Errorf("expected export date from clock, got %q", summary[2][1])
	}
	if summary[3][1] != "5" {
		t.Errorf("expected section count 5, got %q", summary[3][1])
	}
}

func TestExportSelectedSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sel.xlsx")
	if err := testExporter().ExportSelectedSections(sampleSections(), doctree.TypeMIPA, "deal.pdf", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := openRows(t, path, SheetSections)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 selected rows, got %d", len(rows))
	}
	if rows[1][0] != "section-3" || rows[3][0] != "section-5" {
		t.Errorf("unexpected ids %q..%q", rows[1][0], rows[3][0])
	}
}

func TestExportToMultipleSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.xlsx")
	if err := testExporter().ExportToMultipleSheets(sampleSections(), doctree.TypeLLCA, "deal.pdf", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if !slices.Equal(sheets, []string{SheetTOC, SheetContent, SheetSummary}) {
		t.Errorf("unexpected sheets %v", sheets)
	}

	toc, _ := f.GetRows(SheetTOC)
	if len(toc) != 6 || toc[4][1] != "1. Minor" || toc[4][3] != "3" {
		t.Errorf("unexpected TOC rows %v", toc)
	}
	content, _ := f.GetRows(SheetContent)
	if !slices.Equal(content[0], []string{"Section ID", "Title", "Content"}) {
		t.Errorf("unexpected content header %v", content[0])
	}
	if content[1][2] != "terms" {
		t.Errorf("expected content of section-1, got %q", content[1][2])
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	data := doctree.ExportData{FileName: "x.pdf", Sections: sampleSections()}
	if err := testExporter().Write(&buf, data, LayoutSingle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("expected readable workbook: %v", err)
	}
	defer f.Close()
	summary, _ := f.GetRows(SheetSummary)
	if summary[1][1] != "UNKNOWN" {
		t.Errorf("expected UNKNOWN type for empty input, got %q", summary[1][1])
	}
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		in      string
		want    Layout
		wantErr bool
	}{
		{"", LayoutSingle, false},
		{"single", LayoutSingle, false},
		{"multi", LayoutMulti, false},
		{"pivot", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLayout(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLayout(%q): unexpected error state %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLayout(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestDefaultFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/tmp/Master Agreement (final).pdf", "master-agreement-final-toc.xlsx"},
		{"deal.PDF", "deal-toc.xlsx"},
		{"", "document-toc.xlsx"},
		{"!!!.pdf", "document-toc.xlsx"},
	}
	for _, tt := range tests {
		if got := DefaultFileName(tt.in); got != tt.want {
			t.Errorf("DefaultFileName(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
