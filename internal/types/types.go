// =============================================================================
// Payslip Generator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - xlsxparser / csvparser (producers of SpreadsheetDocument)
//   - normalize              (producer of CanonicalRecord)
//   - render                 (consumer of CanonicalRecord)
//   - validation
//
// =============================================================================

package types

// =============================================================================
// INPUT TYPES
// =============================================================================

// Row is one body row of the payout sheet, keyed by literal column header.
// All values are strings; numeric cells are stringified by the parser.
type Row map[string]string

// SpreadsheetDocument is a parsed payout sheet.
// It is built once per input file and never modified afterwards.
type SpreadsheetDocument struct {
	// Source is the path (or upload name) the document was read from.
	Source string

	// HeaderBlock holds the leading single-column header cells, in order.
	// Empty cells are kept as "" so positions stay meaningful.
	HeaderBlock []string

	// Columns is the ordered list of table headers.
	// Resolution walks this list, so order matters for first-match-wins.
	Columns []string

	// Rows contains the body rows in sheet order.
	Rows []Row

	// RowNumbers maps each entry of Rows to its 1-based sheet row number.
	// Used for diagnostics only.
	RowNumbers []int
}

// =============================================================================
// OUTPUT TYPES
// =============================================================================

// EntityIdentity is the issuing company as printed at the top of the sheet.
type EntityIdentity struct {
	Name string

	// Address lines joined with AddressSeparator.
	Address string
}

// AddressSeparator joins address lines. The renderer treats it as a line break.
const AddressSeparator = "<br>"

// CanonicalRecord is the rendering-ready form of one payee row.
// Records are created by the normalizer and never mutated afterwards.
type CanonicalRecord struct {
	CompanyName    string `json:"company_name"`
	CompanyAddress string `json:"company_address"`
	Month          string `json:"month"`

	VendorName        string `json:"vendor_name"`
	VendorCode        string `json:"vendor_code"`
	ContractStartDate string `json:"contract_start_date"`
	Location          string `json:"location"`
	PayDays           string `json:"pay_days"`
	BankName          string `json:"bank_name"`
	BankAccount       string `json:"bank_account"`
	PANNo             string `json:"pan_no"`

	MonthlyFee          string `json:"monthly_fee"`
	TotalFee            string `json:"total_fee"`
	Bonus               string `json:"bonus"`
	TravelReimbursement string `json:"travel_reimbursement"`
	TDS                 string `json:"tds_10"`
	OtherDeduction      string `json:"other_deduction"`
	FinancialPendency   string `json:"financial_pendency"`
	AdvanceRecovery     string `json:"advance_recovery"`
	TotalGross          string `json:"total_gross"`
	TotalDeductions     string `json:"total_deductions"`
	NetPayment          string `json:"net_payment"`
	NetPaymentWords     string `json:"net_payment_words"`
	TotalPayable        string `json:"total_payable"`
}

// Fields returns the record as a flat output-field -> value map.
// Keys match the json tags.
func (r CanonicalRecord) Fields() map[string]string {
	return map[string]string{
		"company_name":         r.CompanyName,
		"company_address":      r.CompanyAddress,
		"month":                r.Month,
		"vendor_name":          r.VendorName,
		"vendor_code":          r.VendorCode,
		"contract_start_date":  r.ContractStartDate,
		"location":             r.Location,
		"pay_days":             r.PayDays,
		"bank_name":            r.BankName,
		"bank_account":         r.BankAccount,
		"pan_no":               r.PANNo,
		"monthly_fee":          r.MonthlyFee,
		"total_fee":            r.TotalFee,
		"bonus":                r.Bonus,
		"travel_reimbursement": r.TravelReimbursement,
		"tds_10":               r.TDS,
		"other_deduction":      r.OtherDeduction,
		"financial_pendency":   r.FinancialPendency,
		"advance_recovery":     r.AdvanceRecovery,
		"total_gross":          r.TotalGross,
		"total_deductions":     r.TotalDeductions,
		"net_payment":          r.NetPayment,
		"net_payment_words":    r.NetPaymentWords,
		"total_payable":        r.TotalPayable,
	}
}
