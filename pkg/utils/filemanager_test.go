package utils

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestManager(t)
	for _, name := range []string{"b.xlsx", "a.CSV", "notes.txt", "~$b.xlsx", ".hidden.csv"} {
		touch(t, filepath.Join(fm.InputDir, name), "x")
	}
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "sub.xlsx"), 0755))

	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(fm.InputDir, "a.CSV"),
		filepath.Join(fm.InputDir, "b.xlsx"),
	}, files)
}

func TestArchiveInputAndOutput(t *testing.T) {
	fm := newTestManager(t)
	input := filepath.Join(fm.InputDir, "march.xlsx")
	touch(t, input, "sheet")

	archived, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.False(t, FileExists(input))
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "march.xlsx"), archived)

	// A second file with the same name must not overwrite the first.
	touch(t, input, "sheet2")
	second, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.NotEqual(t, archived, second)
	assert.True(t, FileExists(archived))

	bundle := filepath.Join(fm.OutputDir, "Payslips_Mar'24.zip")
	touch(t, bundle, "zip")
	copied, err := fm.ArchiveOutputFile(bundle)
	require.NoError(t, err)
	assert.True(t, FileExists(bundle))
	assert.True(t, FileExists(copied))
}

func TestArchiveDisabled(t *testing.T) {
	fm := newTestManager(t)
	fm.ArchiveOnSuccess = false
	input := filepath.Join(fm.InputDir, "march.xlsx")
	touch(t, input, "sheet")

	path, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.Equal(t, input, path)
	assert.True(t, FileExists(input))
}

func TestCleanOldArchives(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.zip")
	fresh := filepath.Join(dir, "fresh.zip")
	touch(t, old, "x")
	touch(t, fresh, "x")
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	removed, err := CleanOldArchives(dir, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.False(t, FileExists(old))
	assert.True(t, FileExists(fresh))
}

func TestGenerateOutputFileName(t *testing.T) {
	tests := []struct {
		name   string
		format string
		params map[string]string
		want   string
	}{
		{"payslip", "{vendor}_{code}_{period}.html", map[string]string{"vendor": "Jane Doe", "code": "V/001", "period": "Mar'24"}, "Jane_Doe_V001_Mar'24.html"},
		{"missing code", "{vendor}_{code}_{period}.html", map[string]string{"vendor": "Jane Doe", "code": "", "period": "Mar'24"}, "Jane_Doe_Mar'24.html"},
		{"bundle", "Payslips_{period}.zip", map[string]string{"period": "March 2024"}, "Payslips_March_2024.zip"},
		{"trailing empty", "{vendor}_{code}.html", map[string]string{"vendor": "A:B", "code": ""}, "AB.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateOutputFileName(tt.format, tt.params))
		})
	}

	withUUID := GenerateOutputFileName("{vendor}_{uuid}.html", map[string]string{"vendor": "X"})
	assert.Len(t, withUUID, len("X_")+36+len(".html"))
}

func TestNameSetUnique(t *testing.T) {
	var names NameSet
	first := names.Unique("Jane_Doe_Mar'24.html")
	second := names.Unique("jane_doe_Mar'24.html")
	third := names.Unique("John.html")

	assert.Equal(t, "Jane_Doe_Mar'24.html", first)
	assert.NotEqual(t, strings.ToLower(first), strings.ToLower(second))
	assert.True(t, strings.HasPrefix(second, "jane_doe_Mar'24_"))
	assert.True(t, strings.HasSuffix(second, ".html"))
	assert.Equal(t, "John.html", third)
}

func TestReserveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Payslips_Mar'24.zip")

	first, err := ReserveFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, first)
	assert.True(t, FileExists(path))

	second, err := ReserveFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, path, second)
	assert.Equal(t, dir, filepath.Dir(second))
	assert.True(t, strings.HasPrefix(filepath.Base(second), "Payslips_Mar'24_"))
	assert.True(t, strings.HasSuffix(second, ".zip"))
}

func TestReserveFileConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.zip")

	const n = 8
	got := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := ReserveFile(path)
			assert.NoError(t, err)
			got[i] = p
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, p := range got {
		assert.False(t, seen[p], "duplicate reservation %s", p)
		seen[p] = true
	}
}

func TestReserveFileMissingDirectory(t *testing.T) {
	_, err := ReserveFile(filepath.Join(t.TempDir(), "nope", "bundle.zip"))
	require.Error(t, err)
}

func TestWriteBundle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "work", "a.html")
	b := filepath.Join(dir, "work", "b.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(a), 0755))
	touch(t, a, "alpha")
	touch(t, b, "beta")

	zipPath := filepath.Join(dir, "out", "Payslips_Mar'24.zip")
	require.NoError(t, WriteBundle(zipPath, []string{a, b}))

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 2)
	assert.Equal(t, "a.html", zr.File[0].Name)
	assert.Equal(t, "b.html", zr.File[1].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "beta", string(data))
}

func TestWriteBundleMissingFileRemovesArchive(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "bundle.zip")

	err := WriteBundle(zipPath, []string{filepath.Join(dir, "absent.html")})
	require.Error(t, err)
	assert.False(t, FileExists(zipPath))
}

func TestWriteLogs(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp: time.Now(), FileName: "march.xlsx", ErrorType: "warning",
		ErrorMessage: "not a number", RowNumber: 7, VendorName: "Jane Doe", FieldName: "Incentive/Bonus", FieldValue: "TBD",
	}}, dir)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Row Number:  7")
	assert.Contains(t, string(data), "Vendor:      Jane Doe")

	start := time.Now()
	path, err = WriteSummaryLog(ProcessingSummary{
		StartTime: start, EndTime: start.Add(time.Second), DryRun: true,
		TotalFiles: 2, SuccessfulFiles: 1, FailedFiles: 1, TotalPayslips: 3,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "march.xlsx", Period: "Mar'24", Payslips: 3}},
		FailedFilesList: []FailedFileInfo{{InputFile: "april.xlsx", ErrorType: "missing columns", ErrorMessage: "required columns not found"}},
	}, dir)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dry run")
	assert.Contains(t, string(data), "Period:       Mar'24")
	assert.Contains(t, string(data), "required columns not found")
}
