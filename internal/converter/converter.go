// =============================================================================
// Payslip Generator - Converter Module
// =============================================================================
//
// This module orchestrates the pipeline for a single payout sheet, from
// parsing to the zipped bundle of payment advices.
//
// CONVERSION PIPELINE:
//   1. Load the workbook (.xlsx) or CSV export into a SpreadsheetDocument
//   2. Prepare: resolve columns, derive the period label and the company
//   3. Diagnose soft-degraded cells (unreadable amounts, dates, PANs)
//   4. Render one payment advice per payee row
//   5. Zip the payment advices into one bundle
//   6. Archive the processed input and the bundle
//
// In dry-run mode steps 1-4 run in memory and nothing is written.
//
// Payment advices are rendered into a fresh hidden work directory under the
// output directory, which is removed once the bundle is written or the run
// fails. The bundle never replaces an existing one: when
// Payslips_<month>.zip is taken, a short unique suffix is added.
//
// CONCURRENCY:
//   Each file is processed by its own Converter. Converters share the
//   configuration, the FileManager and the Renderer, all of which are
//   read-only or safe for concurrent use. Sheets for the same month get
//   separate work directories and bundles.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/payslip-generator/internal/config"
	"github.com/ginjaninja78/payslip-generator/internal/csvparser"
	"github.com/ginjaninja78/payslip-generator/internal/logging"
	"github.com/ginjaninja78/payslip-generator/internal/normalize"
	"github.com/ginjaninja78/payslip-generator/internal/render"
	"github.com/ginjaninja78/payslip-generator/internal/types"
	"github.com/ginjaninja78/payslip-generator/internal/validation"
	"github.com/ginjaninja78/payslip-generator/internal/xlsxparser"
	"github.com/ginjaninja78/payslip-generator/pkg/utils"
)

// Error types reported in Result.ErrorType and the run logs.
const (
	ErrorTypeLoad           = "load"
	ErrorTypeMissingColumns = "missing columns"
	ErrorTypeRender         = "render"
	ErrorTypeOutput         = "output"
	ErrorTypeCanceled       = "canceled"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the input file that was processed.
	FilePath string

	// BundleFile is the zip archive of payment advices.
	// Empty if processing failed or in dry-run mode.
	BundleFile string

	// ArchivePath is where the input file was moved to, if archived.
	ArchivePath string

	// Period is the derived period label, e.g. "Mar'24".
	Period string

	// Entity is the issuing company from the header block.
	Entity types.EntityIdentity

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// ErrorType classifies Error (one of the ErrorType constants).
	ErrorType string

	// Findings are the row diagnostics. They never fail a file.
	Findings []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of non-empty body rows.
	RowsRead int

	// PayslipsCreated is the number of payment advices rendered.
	PayslipsCreated int

	// RowsSkipped counts blank, total and missing-data rows.
	RowsSkipped int

	// RenderFailures counts payees whose advice could not be rendered.
	RenderFailures int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter processes a single payout sheet.
type Converter struct {
	path     string
	config   *config.MainConfig
	files    *utils.FileManager
	renderer *render.Renderer
	logger   logging.Logger

	// DryRun renders in memory only; no files are written or moved.
	DryRun bool
}

// New creates a Converter for the file at path. A nil logger discards
// output.
func New(path string, cfg *config.MainConfig, files *utils.FileManager, renderer *render.Renderer, logger logging.Logger) *Converter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Converter{
		path:     path,
		config:   cfg,
		files:    files,
		renderer: renderer,
		logger:   logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file. Cancelling ctx stops rendering
// between records.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{FilePath: c.path}

	if kind, err := c.run(ctx, &result); err != nil {
		result.ErrorType = kind
		result.Error = err
	} else {
		result.Success = true
	}

	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// run fills result and returns the error type and error of a failure.
func (c *Converter) run(ctx context.Context, result *Result) (string, error) {
	// =========================================================================
	// STEP 1: LOAD
	// =========================================================================

	c.logger.Info("Processing file: %s", c.path)

	sheet, err := LoadDocument(c.path, c.config)
	if err != nil {
		return ErrorTypeLoad, err
	}
	result.Stats.RowsRead = len(sheet.Rows)
	c.logger.Debug("Read %d rows and %d columns from %s", len(sheet.Rows), len(sheet.Columns), filepath.Base(c.path))

	// =========================================================================
	// STEP 2: PREPARE
	// =========================================================================

	doc, err := normalize.Prepare(sheet, PrepareOptions(c.config))
	if err != nil {
		var missing *normalize.MissingColumnsError
		if errors.As(err, &missing) {
			return ErrorTypeMissingColumns, fmt.Errorf("%s: %w", filepath.Base(c.path), err)
		}
		return ErrorTypeLoad, err
	}

	result.Period = doc.Period
	result.Entity = doc.Entity
	c.logger.Info("Month: %s, company: %s", doc.Period, doc.Entity.Name)

	for _, f := range normalize.AllFields() {
		if header, ok := doc.Columns.Header(f); ok {
			c.logger.Debug("Column %s -> %q", f, header)
		} else {
			c.logger.Debug("Column %s not found", f)
		}
	}

	// =========================================================================
	// STEP 3: DIAGNOSE
	// =========================================================================

	result.Findings = validation.Validate(doc)
	for _, finding := range result.Findings {
		if finding.Severity == validation.SeverityError {
			c.logger.Error("%s: %s", filepath.Base(c.path), finding.Error())
			continue
		}
		c.logger.Warn("%s: %s", filepath.Base(c.path), finding.Error())
	}

	// =========================================================================
	// STEP 4: RENDER
	// =========================================================================

	bundleBase := c.bundleBaseName(doc.Period)

	workDir := ""
	if !c.DryRun {
		if err := os.MkdirAll(c.config.OutputDir, 0755); err != nil {
			return ErrorTypeOutput, fmt.Errorf("failed to create output directory: %w", err)
		}
		workDir, err = os.MkdirTemp(c.config.OutputDir, "."+bundleBase+"_*")
		if err != nil {
			return ErrorTypeOutput, fmt.Errorf("failed to create work directory: %w", err)
		}
		defer os.RemoveAll(workDir)
	}

	var (
		names   utils.NameSet
		written []string
	)
	for seq, rec := range doc.Records() {
		if err := ctx.Err(); err != nil {
			return ErrorTypeCanceled, err
		}

		c.logger.Info("Processing %d: %s", seq, rec.VendorName)

		data, err := c.renderer.Render(rec)
		if err != nil {
			result.Stats.RenderFailures++
			if !c.config.ShouldContinueOnError() {
				return ErrorTypeRender, err
			}
			c.logger.Error("%v", err)
			continue
		}
		result.Stats.PayslipsCreated++

		if c.DryRun {
			continue
		}

		name := names.Unique(utils.GenerateOutputFileName(c.config.OutputNameFormat, map[string]string{
			"vendor": rec.VendorName,
			"code":   rec.VendorCode,
			"period": rec.Month,
		}))
		path := filepath.Join(workDir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return ErrorTypeOutput, fmt.Errorf("failed to write %s: %w", name, err)
		}
		written = append(written, path)
	}
	result.Stats.RowsSkipped = result.Stats.RowsRead - result.Stats.PayslipsCreated - result.Stats.RenderFailures

	if result.Stats.PayslipsCreated == 0 {
		c.logger.Warn("%s: no payee rows found", filepath.Base(c.path))
	}

	if c.DryRun {
		c.logger.Info("Dry run: %d payslip(s) for %s", result.Stats.PayslipsCreated, doc.Period)
		return "", nil
	}

	// =========================================================================
	// STEP 5: BUNDLE
	// =========================================================================

	wanted := filepath.Join(c.config.OutputDir, bundleBase+".zip")
	bundlePath, err := utils.ReserveFile(wanted)
	if err != nil {
		return ErrorTypeOutput, err
	}
	if bundlePath != wanted {
		c.logger.Warn("%s already exists, writing %s instead", filepath.Base(wanted), filepath.Base(bundlePath))
	}
	if err := utils.WriteBundle(bundlePath, written); err != nil {
		return ErrorTypeOutput, err
	}
	result.BundleFile = bundlePath
	c.logger.Info("Wrote %d payslip(s) to: %s", len(written), bundlePath)

	// =========================================================================
	// STEP 6: ARCHIVE
	// =========================================================================

	if c.config.ShouldArchiveInputs() {
		if archived, err := c.files.ArchiveInputFile(c.path); err != nil {
			c.logger.Warn("Failed to archive input file: %v", err)
		} else {
			result.ArchivePath = archived
		}
		if _, err := c.files.ArchiveOutputFile(bundlePath); err != nil {
			c.logger.Warn("Failed to archive bundle: %v", err)
		}
	}

	return "", nil
}

// bundleBaseName names the bundle (without extension) for period.
func (c *Converter) bundleBaseName(period string) string {
	name := utils.GenerateOutputFileName(c.config.BundleNameFormat, map[string]string{
		"period": normalize.BundleSlug(period),
	})
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// =============================================================================
// LOADING
// =============================================================================

// LoadDocument reads a payout sheet, choosing the parser by extension.
func LoadDocument(path string, cfg *config.MainConfig) (*types.SpreadsheetDocument, error) {
	layout := SheetLayout(cfg)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return xlsxparser.ParseWithLayout(path, layout)
	case ".csv":
		return csvparser.Parse(path, csvparser.Settings{
			Delimiter: cfg.CSV.Delimiter,
			Encoding:  cfg.CSV.Encoding,
		}, layout)
	default:
		return nil, fmt.Errorf("unsupported file type %q: %s", ext, path)
	}
}

// SheetLayout converts the 1-based sheet settings to a parser layout.
func SheetLayout(cfg *config.MainConfig) xlsxparser.SheetLayout {
	layout := xlsxparser.DefaultSheetLayout()
	layout.SheetName = cfg.Sheet.SheetName
	if cfg.Sheet.HeaderRows > 0 {
		layout.HeaderBlockRows = cfg.Sheet.HeaderRows
	}
	if cfg.Sheet.TableHeaderRow > 0 {
		layout.TableHeaderRow = cfg.Sheet.TableHeaderRow - 1
	}
	return layout
}

// PrepareOptions builds the normalizer options from the configuration.
func PrepareOptions(cfg *config.MainConfig) normalize.Options {
	return normalize.Options{
		BoilerplatePhrases: cfg.BoilerplatePhrases,
		SkipVendorValues:   cfg.SkipVendorValues,
	}
}

// =============================================================================
// LOG ENTRIES
// =============================================================================

// ErrorLogEntries converts a result into error log entries: one for a
// failed file, one per finding otherwise.
func (r Result) ErrorLogEntries() []utils.ErrorLogEntry {
	now := time.Now()
	file := filepath.Base(r.FilePath)

	if r.Error != nil {
		return []utils.ErrorLogEntry{{
			Timestamp:    now,
			FileName:     file,
			ErrorType:    r.ErrorType,
			ErrorMessage: r.Error.Error(),
		}}
	}

	entries := make([]utils.ErrorLogEntry, 0, len(r.Findings))
	for _, f := range r.Findings {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     file,
			ErrorType:    f.Severity,
			ErrorMessage: f.Message,
			RowNumber:    f.RowNumber,
			VendorName:   f.VendorName,
			FieldName:    f.Header,
			FieldValue:   f.Value,
		})
	}
	return entries
}
