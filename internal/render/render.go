// =============================================================================
// Payslip Generator - Payment Advice Renderer
// =============================================================================
//
// This module turns one CanonicalRecord into a self-contained HTML payment
// advice. The document can be opened in any browser or printed to PDF.
//
// DOCUMENT STRUCTURE:
//   - Company name and address (address lines separated by line breaks)
//   - Payee details: name, code, contract start, location, bank, PAN
//   - Earnings and deductions side by side
//   - Net payment, total payable and the net payment in words
//
// CUSTOMIZATION:
//   - Title and footer via Options
//   - A replacement template file via Options.TemplatePath; it receives the
//     same view (Title, Footer, Record, AddressLines)
//
// =============================================================================

package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/ginjaninja78/payslip-generator/internal/types"
)

//go:embed templates/payslip.html.tmpl
var templateFS embed.FS

const defaultTemplate = "templates/payslip.html.tmpl"

// =============================================================================
// RENDER OPTIONS
// =============================================================================

// Options contains options for document rendering.
type Options struct {
	// Title is printed above the payee table.
	// Default: "Payment Advice"
	Title string

	// Footer is printed at the bottom of each document. Empty omits it.
	Footer string

	// TemplatePath replaces the built-in template when set.
	TemplatePath string
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{
		Title:  "Payment Advice",
		Footer: "This is a computer-generated document and does not require a signature.",
	}
}

// view is the data handed to the template.
type view struct {
	Title        string
	Footer       string
	Record       types.CanonicalRecord
	AddressLines []string
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer renders payment advices. It is safe for concurrent use.
type Renderer struct {
	tmpl    *template.Template
	options Options
}

// New parses the template once and returns a Renderer.
func New(options Options) (*Renderer, error) {
	if options.Title == "" {
		options.Title = DefaultOptions().Title
	}

	var (
		tmpl *template.Template
		err  error
	)
	if options.TemplatePath != "" {
		tmpl, err = template.ParseFiles(options.TemplatePath)
	} else {
		tmpl, err = template.ParseFS(templateFS, defaultTemplate)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse payslip template: %w", err)
	}

	return &Renderer{tmpl: tmpl, options: options}, nil
}

// Render returns the HTML document for rec.
func (r *Renderer) Render(rec types.CanonicalRecord) ([]byte, error) {
	var buffer bytes.Buffer
	if err := r.RenderTo(&buffer, rec); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// RenderTo writes the HTML document for rec to w.
func (r *Renderer) RenderTo(w io.Writer, rec types.CanonicalRecord) error {
	v := view{
		Title:        r.options.Title,
		Footer:       r.options.Footer,
		Record:       rec,
		AddressLines: AddressLines(rec.CompanyAddress),
	}
	if err := r.tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("failed to render payslip for %q: %w", rec.VendorName, err)
	}
	return nil
}

// AddressLines splits an address joined with types.AddressSeparator.
// Blank lines are dropped.
func AddressLines(address string) []string {
	var lines []string
	for _, line := range strings.Split(address, types.AddressSeparator) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
