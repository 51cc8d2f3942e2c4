package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSheetNotFound reports that the workbook has no worksheet with the schema's name.
	ErrSheetNotFound = errors.New("worksheet not found")
	// ErrEmptySheet reports a worksheet or CSV file without a header row.
	ErrEmptySheet = errors.New("reference source has no header row")
)

// MissingColumnError names the first required column absent from the header row.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// Schema names the worksheet and header columns holding the taxonomy.
type Schema struct {
	Sheet           string
	OrderColumn     string
	FamilyColumn    string
	LatinColumn     string
	LocalizedColumn string
}

// DefaultSchema matches the multilingual IOC World Bird List workbook.
func DefaultSchema() Schema {
	return Schema{
		Sheet:           "List",
		OrderColumn:     "Order",
		FamilyColumn:    "Family",
		LatinColumn:     "IOC_15.1",
		LocalizedColumn: "Chinese",
	}
}

// columns holds resolved header positions.
type columns struct {
	order, family, latin, localized int
}

// resolve maps the header row onto column positions, failing on the first
// required column that is missing. Duplicate header names resolve to the
// rightmost occurrence.
func (s Schema) resolve(header []string) (columns, error) {
	positions := make(map[string]int, len(header))
	for i, cell := range header {
		name := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		if name == "" {
			continue
		}
		positions[name] = i
	}

	var cols columns
	required := []struct {
		name string
		dst  *int
	}{
		{s.OrderColumn, &cols.order},
		{s.FamilyColumn, &cols.family},
		{s.LatinColumn, &cols.latin},
		{s.LocalizedColumn, &cols.localized},
	}
	for _, col := range required {
		pos, ok := positions[col.name]
		if !ok {
			return columns{}, &MissingColumnError{Column: col.name}
		}
		*col.dst = pos
	}
	return cols, nil
}

// entry converts a data row into an Entry. Rows lacking an order, family or
// latin name are rejected.
func (c columns) entry(row []string) (Entry, bool) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}
	entry := Entry{
		Order:     cell(c.order),
		Family:    cell(c.family),
		Latin:     cell(c.latin),
		Localized: cell(c.localized),
	}
	if entry.Order == "" || entry.Family == "" || entry.Latin == "" {
		return Entry{}, false
	}
	return entry, true
}
