// Package export saves a response as a downloadable document.
//
// The bytes written are the response text itself. No document conversion is
// done; only the file name and declared MIME type differ between formats.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is a download format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// BaseName is the file name without extension.
const BaseName = "selection_criteria_response"

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("nothing to export")

// ParseFormat accepts "docx" or "pdf", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatDOCX, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want docx or pdf)", s)
}

// FileName returns the download name for f.
func (f Format) FileName() string {
	return BaseName + "." + string(f)
}

// MIMEType returns the content type declared for f.
func (f Format) MIMEType() string {
	switch f {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Write saves content into dir as f and returns the path written.
// An existing file of the same name is replaced.
func Write(dir, content string, f Format) (string, error) {
	if content == "" {
		return "", ErrEmpty
	}
	if _, err := ParseFormat(string(f)); err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, f.FileName())
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
