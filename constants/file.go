package constants

import "strings"

// Source formats accepted by the importer.
const (
	PDF  = "PDF"
	TEXT = "TEXT"
)

// AllowedExtensions holds the default file extensions picked up by a batch import.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
	"csv": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns PDF or TEXT for a known extension, "" otherwise.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "csv":
		return TEXT
	default:
		return ""
	}
}
