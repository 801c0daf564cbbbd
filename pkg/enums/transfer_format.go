package enums

import (
	"fmt"
	"strings"
)

// TransferFormat names an export or import encoding.
type TransferFormat string

const (
	FormatText  TransferFormat = "text"
	FormatCSV   TransferFormat = "csv"
	FormatJSON  TransferFormat = "json"
	FormatVCard TransferFormat = "vcard"
	FormatScan  TransferFormat = "scan"
)

var exportFormats = []TransferFormat{FormatText, FormatCSV, FormatJSON}

func (f TransferFormat) String() string {
	return string(f)
}

// ExportFormats lists the formats a contact list can be exported to.
func ExportFormats() []TransferFormat {
	return append([]TransferFormat(nil), exportFormats...)
}

// IsExportable reports whether contacts can be exported in this format.
func (f TransferFormat) IsExportable() bool {
	for _, candidate := range exportFormats {
		if candidate == f {
			return true
		}
	}
	return false
}

// Extension returns the file extension for file-based formats.
func (f TransferFormat) Extension() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatVCard:
		return "vcf"
	case FormatText:
		return "txt"
	default:
		return ""
	}
}

// ContentType returns the MIME type used when serving the artifact.
func (f TransferFormat) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON, FormatScan:
		return "application/json"
	case FormatVCard:
		return "text/vcard; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseExportFormat converts raw input into an exportable format.
func ParseExportFormat(value string) (TransferFormat, error) {
	f := TransferFormat(strings.ToLower(strings.TrimSpace(value)))
	if f.IsExportable() {
		return f, nil
	}
	return "", fmt.Errorf("invalid export format %q", value)
}

// FormatFromExtension infers an import format from a file extension, with or
// without the leading dot. The boolean is false for unsupported extensions.
func FormatFromExtension(ext string) (TransferFormat, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")) {
	case "json":
		return FormatJSON, true
	case "csv":
		return FormatCSV, true
	case "vcf", "vcard":
		return FormatVCard, true
	default:
		return "", false
	}
}
