package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// Species is one reference row used by fixtures.
type Species struct {
	Order, Family, Latin, Localized string
}

// Blackbird is the single-species reference used by most scan tests.
var Blackbird = Species{Order: "Passeriformes", Family: "Turdidae", Latin: "Turdus merula", Localized: "乌鸫"}

// WritePhoto creates a one-byte file at path with the given modification time.
func WritePhoto(t testing.TB, path string, mtime time.Time) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte{0x42}, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// WriteReferenceCSV writes a reference source with the default column names.
func WriteReferenceCSV(t testing.TB, path string, entries []Species) {
	t.Helper()

	var b strings.Builder
	b.WriteString("Order,Family,IOC_15.1,Chinese\n")
	for _, e := range entries {
		b.WriteString(strings.Join([]string{e.Order, e.Family, e.Latin, e.Localized}, ","))
		b.WriteString("\n")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteReferenceWorkbook writes a reference workbook with a "List" sheet and
// the default column names.
func WriteReferenceWorkbook(t testing.TB, path string, entries []Species) {
	t.Helper()

	book := excelize.NewFile()
	defer book.Close()
	if err := book.SetSheetName("Sheet1", "List"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	rows := [][]any{{"Order", "Family", "IOC_15.1", "Chinese"}}
	for _, e := range entries {
		rows = append(rows, []any{e.Order, e.Family, e.Latin, e.Localized})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		values := row
		if err := book.SetSheetRow("List", cell, &values); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

// Touch sets path's modification time, failing the test on error.
func Touch(t testing.TB, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}
