package xlsxparser

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/payslip-generator/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "payout.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func payoutRows() [][]any {
	return [][]any{
		{"Acme Corp"},
		{"123 Lane"},
		{"Consultants Pay-out Sheet"},
		{"S. No.", "Vendor's Name", "Vendor's Code", "", "Net Payment for Mar24", "Vendor's Code"},
		{1, "Jane Doe", "V001", "x", 50000},
		{},
		{2, "John Roe", "V002"},
		{nil, "Total", nil, nil, 50000},
	}
}

func TestParse(t *testing.T) {
	path := writeWorkbook(t, payoutRows())

	doc, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, path, doc.Source)
	assert.Equal(t, []string{"Acme Corp", "123 Lane", "Consultants Pay-out Sheet", "S. No."}, doc.HeaderBlock)
	assert.Equal(t, []string{"S. No.", "Vendor's Name", "Vendor's Code", "Unnamed: 3", "Net Payment for Mar24", "Vendor's Code.1"}, doc.Columns)

	require.Len(t, doc.Rows, 3)
	assert.Equal(t, []int{5, 7, 8}, doc.RowNumbers)

	assert.Equal(t, "Jane Doe", doc.Rows[0]["Vendor's Name"])
	assert.Equal(t, "50000", doc.Rows[0]["Net Payment for Mar24"])
	assert.Equal(t, "", doc.Rows[0]["Vendor's Code.1"])
	assert.Equal(t, "", doc.Rows[1]["Net Payment for Mar24"])
	assert.Equal(t, "Total", doc.Rows[2]["Vendor's Name"])
}

func TestParseIgnoresNumberFormats(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Acme Corp"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"S. No.", "Vendor's Name", "Net Payment for Mar24", "Contract Start Date"}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]any{1, "Jane Doe", 50000, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)}))

	currency := `"₹"#,##0.00`
	currencyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &currency})
	require.NoError(t, err)
	dayFirst := "d/m/yyyy"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dayFirst})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "C5", "C5", currencyStyle))
	require.NoError(t, f.SetCellStyle(sheet, "D5", "D5", dateStyle))

	path := filepath.Join(t.TempDir(), "styled.xlsx")
	require.NoError(t, f.SaveAs(path))

	doc, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, doc.Rows, 1)

	net := doc.Rows[0]["Net Payment for Mar24"]
	assert.Equal(t, "50000", net)
	assert.Equal(t, "Rupees Fifty Thousand Only", normalize.AmountInWords(net))

	date := doc.Rows[0]["Contract Start Date"]
	assert.NotContains(t, date, "/")
	assert.Equal(t, "05 March 2024", normalize.FormatDate(date))
}

func TestParseReader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Acme Corp"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"S. No.", "Vendor's Name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{1, "Jane Doe"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	layout := SheetLayout{HeaderBlockRows: 2, TableHeaderRow: 1}
	doc, err := ParseReader(&buf, "upload.xlsx", layout)
	require.NoError(t, err)

	assert.Equal(t, "upload.xlsx", doc.Source)
	assert.Equal(t, []string{"Acme Corp", "S. No."}, doc.HeaderBlock)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, "Jane Doe", doc.Rows[0]["Vendor's Name"])
}

func TestParseTooShort(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"Acme Corp"}, {"123 Lane"}})

	_, err := Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table header expected on row 4")
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}

func TestParseUnknownSheet(t *testing.T) {
	path := writeWorkbook(t, payoutRows())

	layout := DefaultSheetLayout()
	layout.SheetName = "Payroll"
	_, err := ParseWithLayout(path, layout)
	require.Error(t, err)
}

func TestCleanHeaders(t *testing.T) {
	got := CleanHeaders([]string{" Name ", "", "Name", "Name", "  "})
	assert.Equal(t, []string{"Name", "Unnamed: 1", "Name.1", "Name.2", "Unnamed: 4"}, got)
}
