// =============================================================================
// Payslip Generator - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
//
// CONFIGURATION FILE (config.yaml):
//   input_dir:           ./input
//   output_dir:          ./output
//   input_archive_dir:   ./input_archive
//   output_archive_dir:  ./output_archive
//   log_file:            ./logs/payslip.log
//   log_level:           info
//   output_name_format:  "{vendor}_{code}_{period}.html"
//   bundle_name_format:  "Payslips_{period}.zip"
//   max_concurrency:     4
//   continue_on_error:   true
//   archive_inputs:      true
//   archive_by_date:     false
//   archive_retention_days: 0
//   sheet:
//     sheet_name:        ""
//     header_rows:       4
//     table_header_row:  4
//   csv:
//     delimiter:         ","
//     encoding:          UTF-8
//   boilerplate_phrases: ["consultants pay-out sheet", "s. no."]
//   skip_vendor_values:  ["total", "nan"]
//   render:
//     title:             Payment Advice
//     footer:            "This is a computer-generated document ..."
//     template_path:     ""
//
// A missing configuration file is not an error; every key has a default.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for payout workbooks (.xlsx) and CSV exports.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the payslip bundles and logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir keeps a copy of every bundle.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an additional log destination. Empty disables it.
	// Default: "./logs/payslip.log"
	LogFile string `yaml:"log_file"`

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat names each payslip document.
	// Placeholders: {vendor}, {code}, {period}, {uuid}, {date}
	// Default: "{vendor}_{code}_{period}.html"
	OutputNameFormat string `yaml:"output_name_format"`

	// BundleNameFormat names the zip bundle of one workbook.
	// Placeholders: {period}, {uuid}, {date}
	// Default: "Payslips_{period}.zip"
	BundleNameFormat string `yaml:"bundle_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of workbooks processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps the batch going when one workbook fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// ArchiveInputs moves processed inputs to InputArchiveDir.
	// Default: true
	ArchiveInputs *bool `yaml:"archive_inputs"`

	// ArchiveByDate files archives under YYYY/MM/DD subdirectories.
	// Default: false
	ArchiveByDate bool `yaml:"archive_by_date"`

	// ArchiveRetentionDays removes archived files older than this many days
	// at the start of a run. 0 keeps everything.
	// Default: 0
	ArchiveRetentionDays int `yaml:"archive_retention_days"`

	// Sheet describes the payout sheet layout.
	Sheet SheetSettings `yaml:"sheet"`

	// CSV controls reading of CSV exports.
	CSV CSVSettings `yaml:"csv"`

	// BoilerplatePhrases are header-block lines excluded from the address.
	// Default: the sheet title and the serial-number header.
	BoilerplatePhrases []string `yaml:"boilerplate_phrases"`

	// SkipVendorValues mark rows that are not payees.
	// Default: ["total", "nan"]
	SkipVendorValues []string `yaml:"skip_vendor_values"`

	// Render controls the payment advice documents.
	Render RenderSettings `yaml:"render"`
}

// RenderSettings controls the generated documents.
type RenderSettings struct {
	// Title is printed above the payee table.
	// Default: "Payment Advice"
	Title string `yaml:"title"`

	// Footer is printed at the bottom of each document.
	// Default: a note that the document is computer-generated.
	Footer string `yaml:"footer"`

	// TemplatePath replaces the built-in HTML template.
	TemplatePath string `yaml:"template_path"`
}

// SheetSettings describes where the header block and table live.
// Row numbers here are 1-based, as a user sees them in Excel.
type SheetSettings struct {
	// SheetName selects the worksheet. Empty means the first sheet.
	SheetName string `yaml:"sheet_name"`

	// HeaderRows is the number of leading rows forming the header block.
	// Default: 4
	HeaderRows int `yaml:"header_rows"`

	// TableHeaderRow is the row holding the column headers.
	// Default: 4
	TableHeaderRow int `yaml:"table_header_row"`
}

// CSVSettings contains settings for parsing CSV exports.
type CSVSettings struct {
	// Delimiter: ",", ";", "|", "tab".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding: "UTF-8", "Windows-1252", "ISO-8859-1".
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the configuration from a YAML file.
// When configPath does not exist the defaults are returned.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.LogFile == "" {
		config.LogFile = "./logs/payslip.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{vendor}_{code}_{period}.html"
	}
	if config.BundleNameFormat == "" {
		config.BundleNameFormat = "Payslips_{period}.zip"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.ContinueOnError == nil {
		config.ContinueOnError = boolPtr(true)
	}
	if config.ArchiveInputs == nil {
		config.ArchiveInputs = boolPtr(true)
	}

	if config.Sheet.HeaderRows == 0 {
		config.Sheet.HeaderRows = 4
	}
	if config.Sheet.TableHeaderRow == 0 {
		config.Sheet.TableHeaderRow = 4
	}

	if config.CSV.Delimiter == "" {
		config.CSV.Delimiter = ","
	}
	if config.CSV.Encoding == "" {
		config.CSV.Encoding = "UTF-8"
	}

	if config.Render.Title == "" {
		config.Render.Title = "Payment Advice"
	}
	if config.Render.Footer == "" {
		config.Render.Footer = "This is a computer-generated document and does not require a signature."
	}
}

// validateMainConfig checks value ranges.
// Directories are created by the FileManager when a run starts.
func validateMainConfig(config *MainConfig) error {
	if config.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative")
	}
	if config.Sheet.HeaderRows < 0 {
		return fmt.Errorf("sheet.header_rows must not be negative")
	}
	if config.ArchiveRetentionDays < 0 {
		return fmt.Errorf("archive_retention_days must not be negative")
	}
	if config.Sheet.TableHeaderRow < 1 {
		return fmt.Errorf("sheet.table_header_row must be at least 1")
	}

	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	return nil
}

// ShouldContinueOnError reports the effective continue_on_error value.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// ShouldArchiveInputs reports the effective archive_inputs value.
func (c *MainConfig) ShouldArchiveInputs() bool {
	return c.ArchiveInputs == nil || *c.ArchiveInputs
}

func boolPtr(b bool) *bool {
	return &b
}
