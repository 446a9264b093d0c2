// =============================================================================
// Payslip Generator - XLSX Payout Sheet Parser
// =============================================================================
//
// This module reads a monthly payout workbook into a SpreadsheetDocument.
//
// SHEET STRUCTURE (default layout):
//
//   | Row | Column A                   | Column B        | Column C      | ... |
//   |-----|----------------------------|-----------------|---------------|-----|
//   | 1   | Acme Corp                  |                 |               |     |
//   | 2   | 123 Lane, Pune             |                 |               |     |
//   | 3   | Consultants Pay-out Sheet  |                 |               |     |
//   | 4   | S. No.                     | Vendor's Name   | Vendor's Code | ... |
//   | 5   | 1                          | Jane Doe        | V001          | ... |
//
//   Rows 1-4 of column A form the header block. Row 4 doubles as the table
//   header row, which is why "S. No." is treated as boilerplate later on.
//
// CELL VALUES:
//   Cells are read raw, ignoring their number format. Dates therefore come
//   through as Excel serial numbers, which the date normalizer understands.
//
// HEADER CONVENTIONS:
//   - A blank header cell is named "Unnamed: <index>".
//   - Repeated headers get ".1", ".2" suffixes so the first one keeps its
//     literal text and wins column resolution.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/payslip-generator/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// LAYOUT CONFIGURATION
// =============================================================================

// SheetLayout describes where the header block and the table live.
// Indices are 0-based.
type SheetLayout struct {
	// SheetName selects the worksheet. Empty means the first sheet.
	SheetName string

	// HeaderBlockRows is the number of leading rows read as the header block.
	// Default: 4
	HeaderBlockRows int

	// HeaderBlockColumn is the column holding the header block text.
	// Default: 0 (Column A)
	HeaderBlockColumn int

	// TableHeaderRow is the row holding the column headers of the table.
	// Body rows start right after it.
	// Default: 3 (Row 4)
	TableHeaderRow int
}

// DefaultSheetLayout returns the layout used by the payout sheets.
func DefaultSheetLayout() SheetLayout {
	return SheetLayout{
		HeaderBlockRows:   4,
		HeaderBlockColumn: 0,
		TableHeaderRow:    3,
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the workbook at path using the default layout.
func Parse(path string) (*types.SpreadsheetDocument, error) {
	return ParseWithLayout(path, DefaultSheetLayout())
}

// ParseWithLayout reads the workbook at path using a custom layout.
func ParseWithLayout(path string, layout SheetLayout) (*types.SpreadsheetDocument, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFile(f, path, layout)
}

// ParseReader reads a workbook from r, e.g. an uploaded file.
// name is only used to label the document.
func ParseReader(r io.Reader, name string, layout SheetLayout) (*types.SpreadsheetDocument, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFile(f, name, layout)
}

// parseFile extracts the header block and table from an open workbook.
func parseFile(f *excelize.File, source string, layout SheetLayout) (*types.SpreadsheetDocument, error) {
	sheetName := layout.SheetName
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// Raw values keep number formats out of the grid: a currency-styled
	// 50000 stays "50000" and dates arrive as serial numbers.
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	return FromRows(rows, source, layout)
}

// FromRows builds a document from raw sheet rows. It is shared with the CSV
// parser, which produces the same grid shape.
func FromRows(rows [][]string, source string, layout SheetLayout) (*types.SpreadsheetDocument, error) {
	if layout.TableHeaderRow >= len(rows) {
		return nil, fmt.Errorf("sheet has %d rows, table header expected on row %d", len(rows), layout.TableHeaderRow+1)
	}

	doc := &types.SpreadsheetDocument{
		Source:      source,
		HeaderBlock: headerBlock(rows, layout),
		Columns:     CleanHeaders(rows[layout.TableHeaderRow]),
	}

	for i := layout.TableHeaderRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		record := make(types.Row, len(doc.Columns))
		for j, header := range doc.Columns {
			if j < len(row) {
				record[header] = row[j]
			} else {
				record[header] = ""
			}
		}

		doc.Rows = append(doc.Rows, record)
		doc.RowNumbers = append(doc.RowNumbers, i+1)
	}

	return doc, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// headerBlock returns the header-block column for the first HeaderBlockRows
// rows. Short sheets give a shorter block.
func headerBlock(rows [][]string, layout SheetLayout) []string {
	n := layout.HeaderBlockRows
	if n > len(rows) {
		n = len(rows)
	}

	block := make([]string, 0, n)
	for i := 0; i < n; i++ {
		cell := ""
		if layout.HeaderBlockColumn < len(rows[i]) {
			cell = strings.TrimSpace(rows[i][layout.HeaderBlockColumn])
		}
		block = append(block, cell)
	}
	return block
}

// CleanHeaders names blank headers and disambiguates duplicates.
func CleanHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}

		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}

		headers[i] = h
	}

	return headers
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
