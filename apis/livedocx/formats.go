package livedocx

import (
	"path/filepath"
	"slices"
	"strings"
)

// FormatSet is a whitelist of upper-case file formats (extensions without dot)
type FormatSet []string

var (
	TemplateFormats = FormatSet{"DOC", "DOCX", "RTF", "TXD"}
	DocumentFormats = FormatSet{"DOC", "DOCX", "HTML", "PDF", "TXD", "TXT"}
	ImageFormats    = FormatSet{"BMP", "GIF", "JPG", "PNG", "TIFF"}
)

// Allows compares case-insensitively
func (s FormatSet) Allows(format string) bool {
	return slices.Contains(s, strings.ToUpper(format))
}

func (s FormatSet) String() string {
	return "[" + strings.Join(s, ", ") + "]"
}

func (s FormatSet) validate(kind string, format string) error {
	if !s.Allows(format) {
		return newError(ErrValidation, "invalid %s format %q. valid formats are: %s", kind, format, s)
	}
	return nil
}

const (
	MinZoomFactor = 20
	MaxZoomFactor = 400
)

func validateZoomFactor(zoom int) error {
	if zoom < MinZoomFactor || zoom > MaxZoomFactor {
		return newError(ErrValidation, "zoom factor value must be between %d and %d, got %d", MinZoomFactor, MaxZoomFactor, zoom)
	}
	return nil
}

// FileExt returns the extension of path without the dot, case preserved.
// Leading dots of the base name do not start an extension (".docx" has none)
func FileExt(path string) string {
	base := strings.TrimLeft(filepath.Base(path), ".")
	return strings.TrimPrefix(filepath.Ext(base), ".")
}

// ContentType maps a document or image format to its MIME type
func ContentType(format string) string {
	switch strings.ToUpper(format) {
	case "PDF":
		return "application/pdf"
	case "DOC":
		return "application/msword"
	case "DOCX":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "RTF":
		return "application/rtf"
	case "HTML":
		return "text/html; charset=utf-8"
	case "TXT":
		return "text/plain; charset=utf-8"
	case "BMP":
		return "image/bmp"
	case "GIF":
		return "image/gif"
	case "JPG":
		return "image/jpeg"
	case "PNG":
		return "image/png"
	case "TIFF":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
