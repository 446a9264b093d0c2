// =============================================================================
// Payslip Generator - Row Diagnostics
// =============================================================================
//
// The normalizer never fails a row: an unreadable amount becomes zero, an
// unreadable date is printed as typed. This module reports where that
// happened so the payroll team can fix the sheet before the next run.
// Findings end up in the run's error log.
//
// CHECKS (payee rows only):
//   - Amount columns that are non-empty but not numbers
//   - Contract start dates that could not be read
//   - PAN numbers that do not look like AAAAA9999A
//
// An unreadable net payment is reported as an error, since the payslip then
// states a zero amount; everything else is a warning. No finding stops
// processing. The only fatal condition, missing required columns, is
// reported by normalize.Prepare.
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/payslip-generator/internal/normalize"
	"github.com/ginjaninja78/payslip-generator/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// ValidationError is a single finding for one cell.
type ValidationError struct {
	// Severity is SeverityWarning or SeverityError.
	Severity string

	// Field is the semantic field that was checked.
	Field normalize.SemanticField

	// Header is the literal column header in the sheet.
	Header string

	// Value is the cell value as read.
	Value string

	// Message is a human-readable description.
	Message string

	// RowNumber is the 1-based sheet row.
	RowNumber int

	// VendorName identifies the payee the row belongs to.
	VendorName string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] Row %d (%s), Column '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.RowNumber,
		e.VendorName,
		e.Header,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATOR
// =============================================================================

// amountFields are printed as numbers on the payslip.
var amountFields = []normalize.SemanticField{
	normalize.MonthlyFee,
	normalize.Bonus,
	normalize.TravelReimbursement,
	normalize.TDS,
	normalize.OtherDeduction,
	normalize.FinancialPendency,
	normalize.AdvanceRecovery,
	normalize.TotalGross,
	normalize.TotalDeduction,
	normalize.PeriodFee,
	normalize.NetPayment,
	normalize.TotalPayable,
}

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// Validate checks every payee row of doc and returns the findings in sheet
// order.
func Validate(doc *normalize.Document) []*ValidationError {
	var findings []*ValidationError

	for rowNumber, row := range doc.Rows() {
		if !doc.IsPayee(row) {
			continue
		}
		findings = append(findings, ValidateRow(doc.Columns, rowNumber, row)...)
	}

	return findings
}

// ValidateRow checks a single payee row.
func ValidateRow(columns normalize.ResolvedColumnMap, rowNumber int, row types.Row) []*ValidationError {
	var findings []*ValidationError
	vendor := strings.TrimSpace(columns.Value(row, normalize.VendorName))

	add := func(severity string, f normalize.SemanticField, value, message string) {
		header, _ := columns.Header(f)
		findings = append(findings, &ValidationError{
			Severity:   severity,
			Field:      f,
			Header:     header,
			Value:      value,
			Message:    message,
			RowNumber:  rowNumber,
			VendorName: vendor,
		})
	}

	for _, f := range amountFields {
		value := strings.TrimSpace(columns.Value(row, f))
		if value == "" {
			continue
		}
		if _, ok := normalize.ParseAmount(value); !ok {
			if f == normalize.NetPayment {
				add(SeverityError, f, value, "not a number, amount in words printed as "+normalize.ZeroRupees)
				continue
			}
			add(SeverityWarning, f, value, "not a number")
		}
	}

	if value := strings.TrimSpace(columns.Value(row, normalize.ContractStartDate)); value != "" {
		if _, ok := normalize.ParseDate(value); !ok {
			add(SeverityWarning, normalize.ContractStartDate, value, "date not recognised, printed as entered")
		}
	}

	if value := strings.TrimSpace(columns.Value(row, normalize.PANNo)); value != "" {
		if !panPattern.MatchString(strings.ToUpper(value)) {
			add(SeverityWarning, normalize.PANNo, value, "does not look like a PAN (AAAAA9999A)")
		}
	}

	return findings
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats findings for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
