// =============================================================================
// Payslip Generator - Main Entry Point
// =============================================================================
//
// USAGE:
//   payslip process       - Process every payout sheet in the input directory
//   payslip inspect FILE  - Show column matching, month and company for a sheet
//   payslip version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : parsing, normalization, rendering and the pipeline
//   - pkg/       : file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/payslip-generator/cmd"
)

func main() {
	cmd.Execute()
}
