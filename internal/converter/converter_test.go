package converter

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ginjaninja78/payslip-generator/internal/config"
	"github.com/ginjaninja78/payslip-generator/internal/normalize"
	"github.com/ginjaninja78/payslip-generator/internal/render"
	"github.com/ginjaninja78/payslip-generator/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var payoutHeader = []any{
	"S. No.", "Vendor's Name", "Vendor's Code", "Contract Start Date", "Incentive/Bonus",
	"Total Fee in Mar24", "Net Payment for Mar24", "Total Payable in Mar24",
}

func writeWorkbook(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func payoutRows() [][]any {
	return [][]any{
		{"Acme Corp"},
		{"123 Lane, Mumbai"},
		{"Consultants Pay-out Sheet"},
		payoutHeader,
		{1, "Jane Doe", "V001", "2023-04-01", "", 60000, 50000, 60000},
		{2, "John Roe", "V002", "soon", "TBD", 30000, 25000.5, 30000},
		{3, "Jane Doe", "V001", "", "", 1, 1, 1},
		{nil, "Total", nil, nil, nil, 91001, 75001.5, 91001},
	}
}

type fixture struct {
	cfg      *config.MainConfig
	files    *utils.FileManager
	renderer *render.Renderer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "input_archive")
	cfg.OutputArchiveDir = filepath.Join(root, "output_archive")

	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	require.NoError(t, files.EnsureDirectories())

	renderer, err := render.New(render.DefaultOptions())
	require.NoError(t, err)

	return fixture{cfg: cfg, files: files, renderer: renderer}
}

func (f fixture) converter(path string) *Converter {
	return New(path, f.cfg, f.files, f.renderer, nil)
}

func zipEntries(t *testing.T, path string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	entries := make(map[string]string)
	for _, file := range zr.File {
		rc, err := file.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries[file.Name] = string(data)
	}
	return entries
}

func TestRunWorkbook(t *testing.T) {
	fx := newFixture(t)
	input := writeWorkbook(t, fx.cfg.InputDir, "march.xlsx", payoutRows())

	result := fx.converter(input).Run(context.Background())
	require.NoError(t, result.Error)
	require.True(t, result.Success)

	assert.Equal(t, "Mar'24", result.Period)
	assert.Equal(t, "Acme Corp", result.Entity.Name)
	assert.Equal(t, "123 Lane, Mumbai", result.Entity.Address)
	assert.Equal(t, 4, result.Stats.RowsRead)
	assert.Equal(t, 3, result.Stats.PayslipsCreated)
	assert.Equal(t, 1, result.Stats.RowsSkipped)

	assert.Equal(t, filepath.Join(fx.cfg.OutputDir, "Payslips_Mar'24.zip"), result.BundleFile)
	entries := zipEntries(t, result.BundleFile)
	require.Len(t, entries, 3)
	assert.Contains(t, entries, "Jane_Doe_V001_Mar'24.html")
	assert.Contains(t, entries, "John_Roe_V002_Mar'24.html")
	assert.Contains(t, entries["Jane_Doe_V001_Mar'24.html"], "Rupees Fifty Thousand Only")
	assert.Contains(t, entries["Jane_Doe_V001_Mar'24.html"], "01 April 2023")
	assert.Contains(t, entries["John_Roe_V002_Mar'24.html"], "Rupees Twenty Five Thousand Point Five Only")

	// Rows 6 holds an unreadable date and bonus.
	require.Len(t, result.Findings, 2)
	for _, f := range result.Findings {
		assert.Equal(t, 6, f.RowNumber)
	}
	assert.Len(t, result.ErrorLogEntries(), 2)

	// Archived.
	assert.False(t, utils.FileExists(input))
	assert.Equal(t, filepath.Join(fx.cfg.InputArchiveDir, "march.xlsx"), result.ArchivePath)
	assert.True(t, utils.FileExists(filepath.Join(fx.cfg.OutputArchiveDir, "Payslips_Mar'24.zip")))
}

func TestRunSameMonthSheetsKeepSeparateBundles(t *testing.T) {
	fx := newFixture(t)
	acme := writeWorkbook(t, fx.cfg.InputDir, "acme.xlsx", payoutRows())
	beta := writeWorkbook(t, fx.cfg.InputDir, "beta.xlsx", [][]any{
		{"Beta Ltd"},
		{"9 Road, Pune"},
		{"Consultants Pay-out Sheet"},
		payoutHeader,
		{1, "Ravi Kumar", "V900", "", "", 100, 100, 100},
	})

	results := make([]Result, 2)
	var wg sync.WaitGroup
	for i, path := range []string{acme, beta} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fx.converter(path).Run(context.Background())
		}()
	}
	wg.Wait()

	require.NoError(t, results[0].Error)
	require.NoError(t, results[1].Error)
	assert.Equal(t, "Mar'24", results[0].Period)
	assert.Equal(t, "Mar'24", results[1].Period)
	require.NotEqual(t, results[0].BundleFile, results[1].BundleFile)

	acmeEntries := zipEntries(t, results[0].BundleFile)
	require.Len(t, acmeEntries, 3)
	for _, html := range acmeEntries {
		assert.Contains(t, html, "Acme Corp")
		assert.NotContains(t, html, "Beta Ltd")
	}

	betaEntries := zipEntries(t, results[1].BundleFile)
	require.Len(t, betaEntries, 1)
	assert.Contains(t, betaEntries["Ravi_Kumar_V900_Mar'24.html"], "Beta Ltd")

	// Only the two bundles remain; work directories are removed.
	entries, err := os.ReadDir(fx.cfg.OutputDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.False(t, e.IsDir())
		assert.Equal(t, ".zip", filepath.Ext(e.Name()))
	}
}

func TestRunAgainDoesNotReplaceBundle(t *testing.T) {
	fx := newFixture(t)
	fx.cfg.ArchiveInputs = new(bool)
	input := writeWorkbook(t, fx.cfg.InputDir, "march.xlsx", payoutRows())

	first := fx.converter(input).Run(context.Background())
	require.NoError(t, first.Error)

	second := fx.converter(input).Run(context.Background())
	require.NoError(t, second.Error)

	assert.Equal(t, filepath.Join(fx.cfg.OutputDir, "Payslips_Mar'24.zip"), first.BundleFile)
	assert.NotEqual(t, first.BundleFile, second.BundleFile)
	assert.True(t, strings.HasPrefix(filepath.Base(second.BundleFile), "Payslips_Mar'24_"))

	// Each bundle holds exactly its own run's advices.
	assert.Len(t, zipEntries(t, first.BundleFile), 3)
	assert.Len(t, zipEntries(t, second.BundleFile), 3)
}

func TestRunDryRun(t *testing.T) {
	fx := newFixture(t)
	input := writeWorkbook(t, fx.cfg.InputDir, "march.xlsx", payoutRows())

	c := fx.converter(input)
	c.DryRun = true
	result := c.Run(context.Background())
	require.NoError(t, result.Error)

	assert.Equal(t, 3, result.Stats.PayslipsCreated)
	assert.Empty(t, result.BundleFile)
	assert.True(t, utils.FileExists(input))

	entries, err := os.ReadDir(fx.cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunMissingColumns(t *testing.T) {
	fx := newFixture(t)
	rows := [][]any{
		{"Acme Corp"}, {}, {},
		{"S. No.", "Vendor's Name", "Net Payment for Mar24"},
		{1, "Jane Doe", 100},
	}
	input := writeWorkbook(t, fx.cfg.InputDir, "broken.xlsx", rows)

	result := fx.converter(input).Run(context.Background())
	require.Error(t, result.Error)
	assert.False(t, result.Success)
	assert.Equal(t, ErrorTypeMissingColumns, result.ErrorType)

	var missing *normalize.MissingColumnsError
	require.True(t, errors.As(result.Error, &missing))
	assert.ElementsMatch(t, []normalize.SemanticField{normalize.PeriodFee, normalize.TotalPayable}, missing.Fields)

	// Failed inputs stay where they are.
	assert.True(t, utils.FileExists(input))

	entries := result.ErrorLogEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "broken.xlsx", entries[0].FileName)
}

func TestRunCSV(t *testing.T) {
	fx := newFixture(t)
	fx.cfg.ArchiveInputs = new(bool)

	content := "Acme Corp\n123 Lane\nConsultants Pay-out Sheet\n" +
		"S. No.,Vendor's Name,Vendor's Code,Total Fee in April 2024,Net Payment for April 2024,Total Payable in April 2024\n" +
		"1,Jane Doe,V001,100,\"1,00,000\",100\n"
	input := filepath.Join(fx.cfg.InputDir, "april.csv")
	require.NoError(t, os.WriteFile(input, []byte(content), 0644))

	result := fx.converter(input).Run(context.Background())
	require.NoError(t, result.Error)

	assert.Equal(t, "April'2024", result.Period)
	assert.True(t, utils.FileExists(input))

	entries := zipEntries(t, result.BundleFile)
	require.Len(t, entries, 1)
	for name, html := range entries {
		assert.True(t, strings.HasPrefix(name, "Jane_Doe_V001_April'2024"))
		assert.Contains(t, html, "Rupees One Lakh Only")
	}
}

func TestRunCanceled(t *testing.T) {
	fx := newFixture(t)
	input := writeWorkbook(t, fx.cfg.InputDir, "march.xlsx", payoutRows())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := fx.converter(input).Run(ctx)
	require.ErrorIs(t, result.Error, context.Canceled)
	assert.Equal(t, ErrorTypeCanceled, result.ErrorType)
	assert.True(t, utils.FileExists(input))

	entries, err := os.ReadDir(fx.cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadDocumentUnsupported(t *testing.T) {
	_, err := LoadDocument("payout.ods", config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestSheetLayout(t *testing.T) {
	cfg := config.Default()
	cfg.Sheet.SheetName = "Payout"
	cfg.Sheet.TableHeaderRow = 6

	layout := SheetLayout(cfg)
	assert.Equal(t, "Payout", layout.SheetName)
	assert.Equal(t, 4, layout.HeaderBlockRows)
	assert.Equal(t, 5, layout.TableHeaderRow)
}
