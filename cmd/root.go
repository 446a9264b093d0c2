// =============================================================================
// Payslip Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (payslip)
//   ├── processCmd (payslip process)
//   ├── inspectCmd (payslip inspect)
//   └── versionCmd (payslip version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the main configuration (--config, defaults if absent)
//   2. Builds the zap logger (--verbose forces debug level)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/payslip-generator/internal/config"
	"github.com/ginjaninja78/payslip-generator/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// mainConfig and logger are set up by the root command's pre-run hook.
// closeLogger flushes the logger and closes its file.
var (
	mainConfig  *config.MainConfig
	logger      *zap.Logger
	closeLogger func()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "payslip",
	Short: "Payslip Generator - Turn monthly payout sheets into payment advices",
	Long: `Payslip Generator reads the monthly consultants' payout sheet (an Excel
workbook or its CSV export) and produces one payment advice per consultant,
zipped into a single bundle per sheet.

The sheet layout may drift from month to month: column headers are matched
by phrase, and the month is read from the "Total Fee in <month>" header.

Key Features:
  - Tolerant column matching (case and spacing are ignored)
  - Net payment spelled out in Indian numbering (lakh, crore)
  - Row diagnostics for unreadable amounts, dates and PAN numbers
  - Concurrent processing of several sheets
  - Automatic archival of processed sheets and bundles

Example Usage:
  payslip process                      # Process every sheet in the input directory
  payslip process --file march.xlsx    # Process a single sheet
  payslip inspect march.xlsx           # Show how the columns were matched`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if closeLogger != nil {
		closeLogger()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initialize loads the configuration and builds the logger.
func initialize() error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	l, closeFn, err := logging.New(logging.Options{Level: level, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	mainConfig = cfg
	logger = l
	closeLogger = closeFn
	logger.Debug("configuration loaded", zap.String("path", cfgFile), zap.String("level", level))
	return nil
}
