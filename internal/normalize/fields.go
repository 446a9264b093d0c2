// =============================================================================
// Payslip Generator - Semantic Fields and Column Resolution
// =============================================================================
//
// Payout sheets are written by hand every month, so the same logical column
// shows up as "Vendor's Name", "VENDOR'S  NAME" or "Vendor's Name (as per PAN)".
// This file maps a fixed vocabulary of semantic fields onto whatever headers a
// given document actually uses.
//
// RESOLUTION RULE:
//   Both the header and the search phrase are case-folded and stripped of all
//   whitespace. The first header (in sheet order) that contains the phrase as
//   a substring wins. No edit-distance matching is attempted.
//
// =============================================================================

package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// =============================================================================
// SEMANTIC FIELDS
// =============================================================================

// SemanticField identifies a logical payroll attribute independent of its
// header text in any particular document.
type SemanticField int

const (
	VendorName SemanticField = iota
	VendorCode
	ContractStartDate
	Location
	PayDays
	BankName
	BankAccount
	PANNo
	MonthlyFee
	Bonus
	TravelReimbursement
	TDS
	OtherDeduction
	FinancialPendency
	AdvanceRecovery
	TotalGross
	TotalDeduction

	// The three columns below carry the period in their header text and are
	// required for a document to be processed at all.
	PeriodFee
	NetPayment
	TotalPayable

	numSemanticFields
)

// searchPhrases holds the phrase each field is looked up by.
// The curly apostrophe and doubled space in the bank columns are what the
// sheets actually contain; whitespace is ignored during matching anyway.
var searchPhrases = [numSemanticFields]string{
	VendorName:          "Vendor's Name",
	VendorCode:          "Vendor's Code",
	ContractStartDate:   "Contract Start Date",
	Location:            "Location",
	PayDays:             "Pay Days",
	BankName:            "Consultant’s  Bank Name",
	BankAccount:         "Consultant’s  Bank A/c No.",
	PANNo:               "PAN No.",
	MonthlyFee:          "Monthly Fee",
	Bonus:               "Incentive/Bonus",
	TravelReimbursement: "Travel Reimbursement",
	TDS:                 "TDS@10%",
	OtherDeduction:      "Other Deduction",
	FinancialPendency:   "Financial Pendency",
	AdvanceRecovery:     "Advance Recovery",
	TotalGross:          "Total Gross",
	TotalDeduction:      "Total Deduction",
	PeriodFee:           "Total Fee in",
	NetPayment:          "Net Payment for",
	TotalPayable:        "Total Payable in",
}

// RequiredFields are the dynamically-named columns a document must have.
var RequiredFields = []SemanticField{PeriodFee, NetPayment, TotalPayable}

// AllFields returns every semantic field in declaration order.
func AllFields() []SemanticField {
	fields := make([]SemanticField, 0, numSemanticFields)
	for f := SemanticField(0); f < numSemanticFields; f++ {
		fields = append(fields, f)
	}
	return fields
}

// SearchPhrase returns the phrase used to locate the field's column.
func (f SemanticField) SearchPhrase() string {
	if f < 0 || f >= numSemanticFields {
		return ""
	}
	return searchPhrases[f]
}

// fieldNames are the output-field keys of CanonicalRecord each field feeds.
var fieldNames = [numSemanticFields]string{
	VendorName:          "vendor_name",
	VendorCode:          "vendor_code",
	ContractStartDate:   "contract_start_date",
	Location:            "location",
	PayDays:             "pay_days",
	BankName:            "bank_name",
	BankAccount:         "bank_account",
	PANNo:               "pan_no",
	MonthlyFee:          "monthly_fee",
	Bonus:               "bonus",
	TravelReimbursement: "travel_reimbursement",
	TDS:                 "tds_10",
	OtherDeduction:      "other_deduction",
	FinancialPendency:   "financial_pendency",
	AdvanceRecovery:     "advance_recovery",
	TotalGross:          "total_gross",
	TotalDeduction:      "total_deductions",
	PeriodFee:           "total_fee",
	NetPayment:          "net_payment",
	TotalPayable:        "total_payable",
}

// String returns the output-field key, e.g. "net_payment".
func (f SemanticField) String() string {
	if f < 0 || f >= numSemanticFields {
		return fmt.Sprintf("SemanticField(%d)", int(f))
	}
	return fieldNames[f]
}

// isNumeric reports whether the field holds an amount that should default to
// "0" instead of "" when absent.
func (f SemanticField) isNumeric() bool {
	switch f {
	case Bonus, TravelReimbursement, TDS, OtherDeduction, FinancialPendency, AdvanceRecovery:
		return true
	}
	return false
}

// =============================================================================
// FUZZY COLUMN RESOLVER
// =============================================================================

// normalizeHeader case-folds s and drops every whitespace rune.
// A Caser keeps state, so each call gets its own.
func normalizeHeader(s string) string {
	folded := cases.Fold().String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}

// FindColumn returns the first header that contains search after both are
// case-folded and stripped of whitespace. ok is false when nothing matches.
func FindColumn(columns []string, search string) (header string, ok bool) {
	needle := normalizeHeader(search)
	for _, col := range columns {
		if strings.Contains(normalizeHeader(col), needle) {
			return col, true
		}
	}
	return "", false
}

// =============================================================================
// RESOLVED COLUMN MAP
// =============================================================================

// ResolvedColumnMap records which header each semantic field resolved to in
// one document. It is built once and only read afterwards.
type ResolvedColumnMap struct {
	headers [numSemanticFields]string
	found   [numSemanticFields]bool
}

// Resolve looks up every semantic field against columns.
func Resolve(columns []string) ResolvedColumnMap {
	var m ResolvedColumnMap
	for _, f := range AllFields() {
		m.headers[f], m.found[f] = FindColumn(columns, f.SearchPhrase())
	}
	return m
}

// Header returns the resolved header for f.
func (m ResolvedColumnMap) Header(f SemanticField) (string, bool) {
	if f < 0 || f >= numSemanticFields {
		return "", false
	}
	return m.headers[f], m.found[f]
}

// Missing returns the fields from want that did not resolve, in order.
func (m ResolvedColumnMap) Missing(want []SemanticField) []SemanticField {
	var missing []SemanticField
	for _, f := range want {
		if _, ok := m.Header(f); !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Value reads field f from row, returning "" when the column is unresolved.
func (m ResolvedColumnMap) Value(row map[string]string, f SemanticField) string {
	header, ok := m.Header(f)
	if !ok {
		return ""
	}
	return row[header]
}
