// =============================================================================
// Payslip Generator - Row Normalizer
// =============================================================================
//
// This file ties the resolver, period deriver and converters together.
//
// TWO PHASES:
//   1. Prepare: resolve every semantic field once, check the required dynamic
//      columns, derive the period label and the issuing entity. A document
//      missing a required column fails here, before any row is touched.
//   2. Records: walk the body rows lazily, skipping footer and blank rows,
//      and yield one CanonicalRecord per payee.
//
// A Document holds no mutable state, so one document can be iterated any
// number of times and separate documents can be processed concurrently.
//
// =============================================================================

package normalize

import (
	"fmt"
	"iter"
	"strings"

	"github.com/ginjaninja78/payslip-generator/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

// MissingColumnsError is returned by Prepare when required dynamic columns
// cannot be found. It aborts the whole document.
type MissingColumnsError struct {
	Fields []SemanticField
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = fmt.Sprintf("%q", f.SearchPhrase())
	}
	return "required columns not found: " + strings.Join(names, ", ")
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options tune the document-level rules. The zero value uses the defaults.
type Options struct {
	// BoilerplatePhrases are excluded from the company address.
	// Nil means DefaultBoilerplatePhrases.
	BoilerplatePhrases []string

	// SkipVendorValues are vendor-name values (compared trimmed and
	// case-insensitively) that mark a row as not being a payee.
	// Nil means DefaultSkipVendorValues.
	SkipVendorValues []string
}

// DefaultSkipVendorValues mark summary rows and residual missing-data cells.
var DefaultSkipVendorValues = []string{"total", "nan"}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a payout sheet that passed structural checks and is ready to
// produce records.
type Document struct {
	Source  string
	Columns ResolvedColumnMap
	Period  string
	Entity  types.EntityIdentity

	rows       []types.Row
	rowNumbers []int
	skip       []string
}

// Prepare resolves doc's columns and document-level context.
func Prepare(doc *types.SpreadsheetDocument, opts Options) (*Document, error) {
	columns := Resolve(doc.Columns)
	if missing := columns.Missing(RequiredFields); len(missing) > 0 {
		return nil, &MissingColumnsError{Fields: missing}
	}

	periodHeader, _ := columns.Header(PeriodFee)

	skip := opts.SkipVendorValues
	if skip == nil {
		skip = DefaultSkipVendorValues
	}

	return &Document{
		Source:     doc.Source,
		Columns:    columns,
		Period:     DerivePeriodLabel(periodHeader),
		Entity:     ExtractEntity(doc.HeaderBlock, opts.BoilerplatePhrases),
		rows:       doc.Rows,
		rowNumbers: doc.RowNumbers,
		skip:       skip,
	}, nil
}

// Records yields (sequence, record) for every payee row in sheet order.
// Sequence numbers start at 1 and only count included rows.
func (d *Document) Records() iter.Seq2[int, types.CanonicalRecord] {
	return func(yield func(int, types.CanonicalRecord) bool) {
		seq := 0
		for _, row := range d.rows {
			rec, ok := d.NormalizeRow(row)
			if !ok {
				continue
			}
			seq++
			if !yield(seq, rec) {
				return
			}
		}
	}
}

// Rows returns the raw body rows with their 1-based sheet row numbers.
func (d *Document) Rows() iter.Seq2[int, types.Row] {
	return func(yield func(int, types.Row) bool) {
		for i, row := range d.rows {
			n := i + 1
			if i < len(d.rowNumbers) {
				n = d.rowNumbers[i]
			}
			if !yield(n, row) {
				return
			}
		}
	}
}

// Collect drains Records into a slice.
func (d *Document) Collect() []types.CanonicalRecord {
	var out []types.CanonicalRecord
	for _, rec := range d.Records() {
		out = append(out, rec)
	}
	return out
}

// =============================================================================
// ROW NORMALIZATION
// =============================================================================

// IsPayee reports whether row describes a real payee rather than a blank,
// total or missing-data row. The comparison is exact after trimming and case
// folding, so "Total Cost Center" is a payee.
func (d *Document) IsPayee(row types.Row) bool {
	name := strings.TrimSpace(d.Columns.Value(row, VendorName))
	if name == "" {
		return false
	}
	for _, v := range d.skip {
		if strings.EqualFold(name, strings.TrimSpace(v)) {
			return false
		}
	}
	return true
}

// NormalizeRow builds the canonical record for row. ok is false when the row
// is skipped.
func (d *Document) NormalizeRow(row types.Row) (rec types.CanonicalRecord, ok bool) {
	if !d.IsPayee(row) {
		return types.CanonicalRecord{}, false
	}

	text := func(f SemanticField) string {
		return strings.TrimSpace(d.Columns.Value(row, f))
	}
	amount := func(f SemanticField) string {
		v := text(f)
		if f.isNumeric() && (v == "" || strings.EqualFold(v, "nan")) {
			return "0"
		}
		return v
	}

	netPayment := text(NetPayment)

	return types.CanonicalRecord{
		CompanyName:    d.Entity.Name,
		CompanyAddress: d.Entity.Address,
		Month:          d.Period,

		VendorName:        text(VendorName),
		VendorCode:        text(VendorCode),
		ContractStartDate: FormatDate(text(ContractStartDate)),
		Location:          text(Location),
		PayDays:           text(PayDays),
		BankName:          text(BankName),
		BankAccount:       text(BankAccount),
		PANNo:             text(PANNo),

		MonthlyFee:          text(MonthlyFee),
		TotalFee:            text(PeriodFee),
		Bonus:               amount(Bonus),
		TravelReimbursement: amount(TravelReimbursement),
		TDS:                 amount(TDS),
		OtherDeduction:      amount(OtherDeduction),
		FinancialPendency:   amount(FinancialPendency),
		AdvanceRecovery:     amount(AdvanceRecovery),
		TotalGross:          text(TotalGross),
		TotalDeductions:     text(TotalDeduction),
		NetPayment:          netPayment,
		NetPaymentWords:     AmountInWords(netPayment),
		TotalPayable:        text(TotalPayable),
	}, true
}
