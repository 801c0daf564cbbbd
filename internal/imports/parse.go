package imports

import (
	"bytes"
	"strings"

	"github.com/angelmondragon/mycrew-backend/internal/transfer"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
)

// originalJobNote prefixes the job title kept in notes when an imported title
// is not part of the vocabulary.
const originalJobNote = "Poste d'origine: "

// Upload is a received file: its declared name and raw content.
type Upload struct {
	FileName string
	Data     []byte
}

// Parsed holds the records decoded from one upload, already prepared for
// storage.
type Parsed struct {
	Format   enums.TransferFormat
	Contacts []transfer.ContactData
	Skipped  int
}

// Parse detects the format from the file name and decodes the payload.
// Unknown extensions fail before any decoding is attempted.
func Parse(upload Upload, tokens transfer.Tokens) (Parsed, error) {
	format, ok := transfer.DetectFormat(upload.FileName)
	if !ok {
		return Parsed{}, pkgerrors.Newf(pkgerrors.CodeUnsupportedFormat, "unsupported file type %q", upload.FileName)
	}
	if len(bytes.TrimSpace(upload.Data)) == 0 {
		return Parsed{}, pkgerrors.New(pkgerrors.CodeInvalidFormat, "file is empty")
	}

	parsed := Parsed{Format: format}
	switch format {
	case enums.FormatJSON:
		decoded, err := transfer.DecodeJSON(upload.Data)
		if err != nil {
			return Parsed{}, err
		}
		parsed.Skipped = decoded.Skipped
		for _, cd := range decoded.Contacts {
			if decoded.Shape == transfer.ShapeSingle {
				cd.IsFavorite = false
			}
			parsed.Contacts = append(parsed.Contacts, cd)
		}
	case enums.FormatCSV:
		list, err := transfer.DecodeCSV(upload.Data, tokens)
		if err != nil {
			return Parsed{}, err
		}
		parsed.Contacts = list
	case enums.FormatVCard:
		list, err := transfer.DecodeVCard(upload.Data)
		if err != nil {
			return Parsed{}, err
		}
		parsed.Contacts = list
	default:
		return Parsed{}, pkgerrors.Newf(pkgerrors.CodeUnsupportedFormat, "format %q cannot be imported", format)
	}

	for i := range parsed.Contacts {
		parsed.Contacts[i] = prepare(parsed.Contacts[i])
	}
	return parsed, nil
}

// ParseScanCode decodes a scan-code payload into exactly one record. The
// favourite flag is never carried over from someone else's card.
func ParseScanCode(payload string) (Parsed, error) {
	cd, err := transfer.DecodeScanCode(payload)
	if err != nil {
		return Parsed{}, err
	}
	cd.IsFavorite = false
	return Parsed{Format: enums.FormatScan, Contacts: []transfer.ContactData{prepare(cd)}}, nil
}

// prepare trims identity fields and maps job titles outside the vocabulary
// to the default job, keeping the original title in the notes.
func prepare(cd transfer.ContactData) transfer.ContactData {
	cd.Name = strings.TrimSpace(cd.Name)
	cd.JobTitle = strings.TrimSpace(cd.JobTitle)
	cd.Phone = strings.TrimSpace(cd.Phone)
	cd.Email = strings.TrimSpace(cd.Email)

	if !enums.IsValidJob(cd.JobTitle) {
		if cd.JobTitle != "" {
			line := originalJobNote + cd.JobTitle
			if strings.TrimSpace(cd.Notes) == "" {
				cd.Notes = line
			} else {
				cd.Notes = strings.TrimRight(cd.Notes, "\n") + "\n" + line
			}
		}
		cd.JobTitle = enums.DefaultJob
	}
	return cd
}
