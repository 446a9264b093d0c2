// =============================================================================
// Payslip Generator - CSV Payout Sheet Parser
// =============================================================================
//
// This module reads a payout sheet that was exported to CSV ("Save As CSV"
// from the monthly workbook). The grid has the same shape as the workbook,
// so the header block and table are extracted by xlsxparser.FromRows.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, tab, pipe)
//   - Legacy encodings from older Excel exports (Windows-1252, ISO-8859-1)
//   - UTF-8 byte order mark is dropped
//   - Rows with varying field counts are accepted
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/payslip-generator/internal/types"
	"github.com/ginjaninja78/payslip-generator/internal/xlsxparser"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how the CSV bytes are read.
type Settings struct {
	// Delimiter separates fields.
	// Accepted: ",", ";", "|", "\t" or the words "comma", "semicolon", "pipe", "tab".
	// Default: ","
	Delimiter string

	// Encoding of the file.
	// Accepted: "UTF-8", "Windows-1252", "ISO-8859-1"
	// Default: "UTF-8"
	Encoding string
}

// DefaultSettings returns comma-separated UTF-8.
func DefaultSettings() Settings {
	return Settings{Delimiter: ",", Encoding: "UTF-8"}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the CSV file at path.
func Parse(path string, settings Settings, layout xlsxparser.SheetLayout) (*types.SpreadsheetDocument, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, path, settings, layout)
}

// ParseReader reads CSV content from r. name labels the document.
func ParseReader(r io.Reader, name string, settings Settings, layout xlsxparser.SheetLayout) (*types.SpreadsheetDocument, error) {
	decoded, err := decode(r, settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, settings)

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	return xlsxparser.FromRows(rows, name, layout)
}

// configureReader applies the delimiter and relaxes quoting rules, since
// spreadsheet exports are not always strict CSV.
func configureReader(reader *csv.Reader, settings Settings) {
	switch strings.ToLower(settings.Delimiter) {
	case "\\t", "\t", "tab":
		reader.Comma = '\t'
	case "|", "pipe":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	case "", ",", "comma":
		reader.Comma = ','
	default:
		reader.Comma = []rune(settings.Delimiter)[0]
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// decode wraps r so that it yields UTF-8 without a byte order mark.
func decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToUpper(strings.TrimSpace(encoding)) {
	case "", "UTF-8", "UTF8":
		br := bufio.NewReader(r)
		if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
			br.Discard(3)
		}
		return br, nil
	case "WINDOWS-1252", "CP1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "ISO-8859-1", "LATIN1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
