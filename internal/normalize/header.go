package normalize

import (
	"strings"

	"github.com/ginjaninja78/payslip-generator/internal/types"
	"golang.org/x/text/cases"
)

// DefaultBoilerplatePhrases are header-block lines that never belong to the
// company address: the sheet title and the first table header cell.
var DefaultBoilerplatePhrases = []string{
	"consultants pay-out sheet",
	"s. no.",
}

// ExtractEntity reads the company name and address from the header block.
// The first cell is the name; every later non-empty cell that contains none
// of the boilerplate phrases (case-insensitive) is an address line.
// A nil boilerplate list means DefaultBoilerplatePhrases.
func ExtractEntity(headerBlock []string, boilerplate []string) types.EntityIdentity {
	if len(headerBlock) == 0 {
		return types.EntityIdentity{}
	}
	if boilerplate == nil {
		boilerplate = DefaultBoilerplatePhrases
	}

	fold := cases.Fold()
	phrases := make([]string, 0, len(boilerplate))
	for _, p := range boilerplate {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, fold.String(p))
		}
	}

	var lines []string
	for _, cell := range headerBlock[1:] {
		cell = strings.TrimSpace(cell)
		if cell == "" || isBoilerplate(fold.String(cell), phrases) {
			continue
		}
		lines = append(lines, cell)
	}

	return types.EntityIdentity{
		Name:    strings.TrimSpace(headerBlock[0]),
		Address: strings.Join(lines, types.AddressSeparator),
	}
}

func isBoilerplate(folded string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(folded, p) {
			return true
		}
	}
	return false
}
