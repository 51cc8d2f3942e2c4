package taxonomy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// Load reads the reference source at path and returns an indexed Catalog.
// Workbooks (.xlsx, .xlsm, .xltx, .xltm) are read from the schema's worksheet;
// .csv files are read as a single sheet.
func Load(path string, schema Schema) (*Catalog, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		rows, err = readWorkbook(path, schema.Sheet)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("open reference source %s: unsupported file type %q", path, ext)
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows, schema)
}

func parseRows(rows [][]string, schema Schema) (*Catalog, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	cols, err := schema.resolve(rows[0])
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entry, ok := cols.entry(row)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return NewCatalog(entries), nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open reference workbook %s: %w", path, err)
	}
	defer book.Close()

	idx, err := book.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("read reference workbook %s: %w", path, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("worksheet %q: %w", sheet, ErrSheetNotFound)
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference csv %s: %w", path, err)
	}
	defer file.Close()

	reader := gocsv.LazyCSVReader(file)
	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		// Footer rows are often shorter than the header; keep them and let
		// row validation drop them.
		if err != nil && !errors.Is(err, csv.ErrFieldCount) {
			return nil, fmt.Errorf("read reference csv %s: %w", path, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
