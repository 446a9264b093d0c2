// =============================================================================
// Payslip Generator - Inspect Command
// =============================================================================
//
// This file defines the 'inspect' command. It shows how a payout sheet would
// be read without generating anything: which header matched each field, the
// month label and the company block. Useful when a new month's sheet is
// rejected for missing columns.
//
// COMMAND USAGE:
//   payslip inspect <sheet> [--records]
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ginjaninja78/payslip-generator/internal/converter"
	"github.com/ginjaninja78/payslip-generator/internal/normalize"
	"github.com/ginjaninja78/payslip-generator/internal/render"
	"github.com/ginjaninja78/payslip-generator/internal/validation"
	"github.com/spf13/cobra"
)

// showRecords lists the normalized records as well.
var showRecords bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <sheet>",
	Short: "Show how a payout sheet's columns, month and company are read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(
		&showRecords,
		"records",
		false,
		"Also list every payee with net payment and amount in words",
	)
}

func runInspect(out io.Writer, path string) error {
	sheet, err := converter.LoadDocument(path, mainConfig)
	if err != nil {
		return err
	}

	columns := normalize.Resolve(sheet.Columns)
	required := make(map[normalize.SemanticField]bool, len(normalize.RequiredFields))
	for _, f := range normalize.RequiredFields {
		required[f] = true
	}

	var rows [][]string
	for _, f := range normalize.AllFields() {
		header, ok := columns.Header(f)
		status := "found"
		switch {
		case !ok && required[f]:
			status = "MISSING (required)"
		case !ok:
			status = "not found"
		}
		rows = append(rows, []string{f.String(), f.SearchPhrase(), header, status})
	}

	fmt.Fprintf(out, "Sheet: %s (%d columns, %d rows)\n", path, len(sheet.Columns), len(sheet.Rows))
	fmt.Fprintln(out, renderTable([]string{"Field", "Looks for", "Matched header", "Status"}, rows, nil))

	doc, err := normalize.Prepare(sheet, converter.PrepareOptions(mainConfig))
	if err != nil {
		var missing *normalize.MissingColumnsError
		if errors.As(err, &missing) {
			return fmt.Errorf("sheet cannot be processed: %w", err)
		}
		return err
	}

	fmt.Fprintf(out, "Month:   %s\n", doc.Period)
	fmt.Fprintf(out, "Company: %s\n", doc.Entity.Name)
	for _, line := range render.AddressLines(doc.Entity.Address) {
		fmt.Fprintf(out, "         %s\n", line)
	}

	findings := validation.Validate(doc)
	payees := 0
	var records [][]string
	for seq, rec := range doc.Records() {
		payees = seq
		if showRecords {
			records = append(records, []string{strconv.Itoa(seq), rec.VendorName, rec.VendorCode, rec.NetPayment, rec.NetPaymentWords})
		}
	}
	fmt.Fprintf(out, "Payees:  %d\n", payees)

	if showRecords && len(records) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"#", "Vendor", "Code", "Net Payment", "In Words"},
			records,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
		))
	}

	if len(findings) > 0 {
		fmt.Fprintln(out)
		fmt.Fprint(out, validation.FormatErrors(findings))
	}

	return nil
}
