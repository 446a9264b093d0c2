// =============================================================================
// Payslip Generator - Output File Naming
// =============================================================================
//
// Payslip and bundle names are built from a format string with placeholders:
//
//   {vendor}  - vendor name
//   {code}    - vendor code
//   {period}  - period label (e.g. Mar'24)
//   {uuid}    - a random UUID
//   {date}    - current date (YYYYMMDD)
//
// Spaces become underscores and characters that are unsafe in file names are
// removed, so "Jane Doe", "V/001", "Mar'24" gives "Jane_Doe_V001_Mar'24.html".
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// GenerateOutputFileName expands format with params.
//
// PARAMETERS:
//   - format: The file name format, e.g. "{vendor}_{code}_{period}.html".
//   - params: Placeholder values keyed without braces, e.g. {"vendor": "Jane Doe"}.
//
// RETURNS:
//   - The generated file name. Empty placeholders collapse so no leading,
//     trailing or doubled underscores remain.
func GenerateOutputFileName(format string, params map[string]string) string {
	replacements := map[string]string{
		"{uuid}": uuid.New().String(),
		"{date}": time.Now().Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = SanitizeFileName(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return tidyUnderscores(result)
}

// SanitizeFileName makes s safe to use as part of a file name.
func SanitizeFileName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case unicode.IsControl(r), strings.ContainsRune(`/\:*?"<>|`, r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tidyUnderscores collapses runs of underscores and trims them around the
// extension and at both ends.
func tidyUnderscores(name string) string {
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	name = strings.ReplaceAll(name, "_.", ".")
	return strings.Trim(name, "_")
}

// =============================================================================
// COLLISION HANDLING
// =============================================================================

// NameSet hands out file names that are unique within one bundle.
// The zero value is ready to use. It is not safe for concurrent use.
type NameSet struct {
	seen map[string]bool
}

// Unique returns name, or name with a short uuid before the extension when
// name was already handed out. Names are compared case-insensitively since
// zip files are often extracted on case-insensitive file systems.
func (s *NameSet) Unique(name string) string {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}

	candidate := name
	for s.seen[strings.ToLower(candidate)] {
		candidate = withShortID(name)
	}

	s.seen[strings.ToLower(candidate)] = true
	return candidate
}

// maxReserveAttempts bounds the suffixed names ReserveFile tries.
const maxReserveAttempts = 10

// ReserveFile claims path by creating it empty, or a sibling with a short
// uuid before the extension when path already exists. It returns the path it
// created; the caller overwrites the placeholder. Creation is exclusive, so
// concurrent callers never get the same path.
func ReserveFile(path string) (string, error) {
	candidate := path
	for range maxReserveAttempts {
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return candidate, f.Close()
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to reserve %s: %w", candidate, err)
		}
		candidate = withShortID(path)
	}
	return "", fmt.Errorf("failed to reserve a unique name for %s", path)
}

// withShortID inserts "_<8 hex>" before the extension of name.
func withShortID(name string) string {
	ext := ""
	if i := strings.LastIndex(name, "."); i > 0 && !strings.ContainsAny(name[i:], `/\`) {
		ext = name[i:]
	}
	return strings.TrimSuffix(name, ext) + "_" + uuid.New().String()[:8] + ext
}
