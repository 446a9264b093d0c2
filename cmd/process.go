// =============================================================================
// Payslip Generator - Process Command
// =============================================================================
//
// This file defines the 'process' command, the main command of the tool.
//
// COMMAND USAGE:
//   payslip process [flags]
//
// FLAGS:
//   --file     : Process only this sheet (may live outside the input directory)
//   --dry-run  : Parse, check and render in memory without writing anything
//
// PROCESSING PIPELINE:
//   1. Prepare directories and apply the archive retention policy
//   2. Discover payout sheets in the input directory
//   3. Process the sheets concurrently, at most max_concurrency at a time
//   4. Print a results table
//   5. Write the error log and the processing summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ginjaninja78/payslip-generator/internal/converter"
	"github.com/ginjaninja78/payslip-generator/internal/logging"
	"github.com/ginjaninja78/payslip-generator/internal/render"
	"github.com/ginjaninja78/payslip-generator/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun renders in memory without writing output files.
var dryRun bool

// filePath restricts processing to one sheet.
var filePath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Generate payment advices from payout sheets",
	Long: `The process command scans the input directory for payout sheets (.xlsx and
.csv), generates one payment advice per consultant and zips them into one
bundle per sheet (Payslips_<month>.zip).

Sheets are processed concurrently. A sheet that cannot be processed, for
example because a required column is missing, does not stop the others
unless continue_on_error is false.

On success:
  - The bundle is placed in the output directory and copied to the output archive
  - The sheet is moved to the input archive

On error:
  - The sheet remains in the input directory
  - The reason is written to the error log in the output directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runProcess(ctx, cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Parse, check and render without writing output files",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a single payout sheet to process",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context, cmd *cobra.Command) error {
	summary := utils.ProcessingSummary{StartTime: time.Now(), DryRun: dryRun}
	out := cmd.OutOrStdout()
	log := logger.Sugar()

	// =========================================================================
	// STEP 1: PREPARE
	// =========================================================================

	files := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir)
	files.ArchiveOnSuccess = mainConfig.ShouldArchiveInputs()
	files.UseTimestampSubdirs = mainConfig.ArchiveByDate

	if err := files.EnsureDirectories(); err != nil {
		return err
	}

	if days := mainConfig.ArchiveRetentionDays; days > 0 && !dryRun {
		maxAge := time.Duration(days) * 24 * time.Hour
		for _, dir := range []string{mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir} {
			removed, err := utils.CleanOldArchives(dir, maxAge)
			if err != nil {
				log.Warnw("archive cleanup failed", "dir", dir, zap.Error(err))
				continue
			}
			if removed > 0 {
				log.Infow("removed old archives", "dir", dir, "count", removed)
			}
		}
	}

	renderer, err := render.New(render.Options{
		Title:        mainConfig.Render.Title,
		Footer:       mainConfig.Render.Footer,
		TemplatePath: mainConfig.Render.TemplatePath,
	})
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if filePath != "" {
		if !utils.IsInputFile(filePath) {
			return fmt.Errorf("unsupported file type: %s (expected one of %v)", filePath, utils.InputExtensions)
		}
		if !utils.FileExists(filePath) {
			return fmt.Errorf("file not found: %s", filePath)
		}
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = files.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Fprintf(out, "No payout sheets found in %s\n", mainConfig.InputDir)
		return nil
	}

	log.Infow("found payout sheets", "count", len(inputFiles), "dry_run", dryRun)

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := processFiles(ctx, inputFiles, files, renderer)

	// =========================================================================
	// STEP 4: REPORT
	// =========================================================================

	var (
		rows       [][]string
		logEntries []utils.ErrorLogEntry
	)
	for _, result := range results {
		summary.TotalFiles++
		summary.TotalRows += result.Stats.RowsRead
		logEntries = append(logEntries, result.ErrorLogEntries()...)

		status := "ok"
		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalPayslips += result.Stats.PayslipsCreated
			summary.SkippedRows += result.Stats.RowsSkipped
			summary.Warnings += len(result.Findings)
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				BundleFile:  result.BundleFile,
				ArchivePath: result.ArchivePath,
				Period:      result.Period,
				Company:     result.Entity.Name,
				Rows:        result.Stats.RowsRead,
				Payslips:    result.Stats.PayslipsCreated,
				Warnings:    len(result.Findings),
				ProcessTime: result.Stats.ProcessingTime,
			})
		} else {
			summary.FailedFiles++
			status = "failed: " + result.Error.Error()
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
				ErrorType:    result.ErrorType,
			})
		}

		rows = append(rows, []string{
			filepath.Base(result.FilePath),
			result.Period,
			strconv.Itoa(result.Stats.PayslipsCreated),
			strconv.Itoa(len(result.Findings)),
			filepath.Base(result.BundleFile),
			status,
		})
	}
	summary.EndTime = time.Now()

	fmt.Fprintln(out, renderTable(
		[]string{"Sheet", "Month", "Payslips", "Warnings", "Bundle", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "Total: %d sheet(s), %d ok, %d failed, %d payslip(s) in %s\n",
		summary.TotalFiles, summary.SuccessfulFiles, summary.FailedFiles, summary.TotalPayslips,
		summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))

	// =========================================================================
	// STEP 5: RUN LOGS
	// =========================================================================

	if !dryRun {
		if path, err := utils.WriteErrorLog(logEntries, mainConfig.OutputDir); err != nil {
			log.Errorw("failed to write error log", zap.Error(err))
		} else if path != "" {
			fmt.Fprintf(out, "Errors and warnings have been logged to %s\n", path)
		}
		if _, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir); err != nil {
			log.Errorw("failed to write summary", zap.Error(err))
		}
	}

	if summary.FailedFiles > 0 && !mainConfig.ShouldContinueOnError() {
		return fmt.Errorf("%d sheet(s) failed", summary.FailedFiles)
	}
	return nil
}

// processFiles runs one converter per file, at most max_concurrency at a
// time. Results keep the order of paths. When continue_on_error is false the
// first failure cancels files that have not started yet.
func processFiles(ctx context.Context, paths []string, files *utils.FileManager, renderer *render.Renderer) []converter.Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limit := int64(mainConfig.MaxConcurrency)
	if limit <= 0 {
		limit = int64(len(paths))
	}
	sem := semaphore.NewWeighted(limit)

	results := make([]converter.Result, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = converter.Result{FilePath: path, Error: err, ErrorType: converter.ErrorTypeCanceled}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			fileLogger := logging.Sugar(logger.With(zap.String("file", filepath.Base(path))))
			conv := converter.New(path, mainConfig, files, renderer, fileLogger)
			conv.DryRun = dryRun

			results[i] = conv.Run(ctx)
			if !results[i].Success && !mainConfig.ShouldContinueOnError() {
				cancel()
			}
		}()
	}

	wg.Wait()
	return results
}
