package constants

import "strings"

// Reference document formats understood by the loader.
const (
	TXT = "TXT"
	CSV = "CSV"
	PDF = "PDF"
)

// ReferenceExtensions maps allowed reference-document extensions to formats.
// TXT and CSV are read as text; PDF is carried as base64.
var ReferenceExtensions = map[string]string{
	"txt": TXT,
	"csv": CSV,
	"pdf": PDF,
}

// Document artifact formats.
const (
	DocumentDOCX = "docx"
	DocumentXLSX = "xlsx"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the reference format for ext, or "" if unsupported.
func MapExtToFormat(ext string) string {
	return ReferenceExtensions[NormalizeExt(ext)]
}
