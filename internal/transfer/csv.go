package transfer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
)

// CSVHeader is the fixed column order of CSV exports.
var CSVHeader = []string{"Name", "JobTitle", "Phone", "Email", "Country", "Region", "Vehicle", "Housed", "TaxResident", "LocationType", "Notes"}

const (
	csvMinColumns = 10

	LocationTypePrimary   = "Principal"
	LocationTypeSecondary = "Secondaire"
)

var primaryFragments = []string{"princip", "primary"}

// Tokens are the literals written for boolean columns.
type Tokens struct {
	Yes string
	No  string
}

// DefaultTokens are the French literals used by existing exports.
func DefaultTokens() Tokens {
	return Tokens{Yes: "Oui", No: "Non"}
}

func (t Tokens) render(v bool) string {
	if v {
		return t.Yes
	}
	return t.No
}

func (t Tokens) parse(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), t.Yes)
}

// EncodeCSV writes one row per location of each contact, and a single row
// with empty location columns for contacts without locations. Metadata
// comment lines follow the header.
func EncodeCSV(list []ContactData, description string, exportedAt time.Time, tokens Tokens) []byte {
	var b bytes.Buffer
	b.WriteString(strings.Join(CSVHeader, ","))
	b.WriteString("\n")
	fmt.Fprintf(&b, "# Filtre: %s\n", singleLine(description))
	fmt.Fprintf(&b, "# Nombre de contacts: %d\n", len(list))
	fmt.Fprintf(&b, "# Date d'export: %s\n", exportedAt.Format("2006-01-02"))

	for _, cd := range list {
		if len(cd.Locations) == 0 {
			writeCSVRow(&b, cd, nil, "", tokens)
			continue
		}
		for _, loc := range cd.Locations {
			locType := LocationTypeSecondary
			if loc.IsPrimary {
				locType = LocationTypePrimary
			}
			loc := loc
			writeCSVRow(&b, cd, &loc, locType, tokens)
		}
	}
	return b.Bytes()
}

func writeCSVRow(b *bytes.Buffer, cd ContactData, loc *LocationData, locType string, tokens Tokens) {
	fields := []string{
		quote(cd.Name),
		quote(cd.JobTitle),
		quote(cd.Phone),
		quote(cd.Email),
	}
	if loc == nil {
		fields = append(fields, quote(""), quote(""), "", "", "", quote(""))
	} else {
		region := ""
		if loc.Region != nil {
			region = *loc.Region
		}
		fields = append(fields,
			quote(loc.Country),
			quote(region),
			tokens.render(loc.HasVehicle),
			tokens.render(loc.IsHoused),
			tokens.render(loc.IsLocalResident),
			quote(locType),
		)
	}
	fields = append(fields, quote(cd.Notes))
	b.WriteString(strings.Join(fields, ","))
	b.WriteString("\n")
}

// singleLine keeps header values on their comment line whatever the
// caller passes in.
func singleLine(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }), " ")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// DecodeCSV groups rows by contact name so that several location rows merge
// into one contact. Malformed or short rows are skipped; a file without any
// usable row is an invalid format.
func DecodeCSV(data []byte, tokens Tokens) ([]ContactData, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	headerSeen := false
	index := map[string]int{}
	var out []ContactData

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidFormat, err, "read csv")
		}
		if !headerSeen {
			headerSeen = true
			continue
		}
		if len(record) < csvMinColumns {
			continue
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		pos, ok := index[name]
		if !ok {
			notes := ""
			if len(record) > 10 {
				notes = record[10]
			}
			out = append(out, ContactData{
				Name:     name,
				JobTitle: strings.TrimSpace(record[1]),
				Phone:    strings.TrimSpace(record[2]),
				Email:    strings.TrimSpace(record[3]),
				Notes:    notes,
			})
			pos = len(out) - 1
			index[name] = pos
		}

		country := strings.TrimSpace(record[4])
		locType := strings.TrimSpace(record[9])
		if country == "" && locType == "" {
			continue
		}
		loc := LocationData{
			Country:         country,
			HasVehicle:      tokens.parse(record[6]),
			IsHoused:        tokens.parse(record[7]),
			IsLocalResident: tokens.parse(record[8]),
			IsPrimary:       isPrimaryType(locType),
		}
		if region := strings.TrimSpace(record[5]); region != "" {
			loc.Region = &region
		}
		out[pos].Locations = append(out[pos].Locations, loc)
	}

	if !headerSeen {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidFormat, "csv file is empty")
	}
	if len(out) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidFormat, "csv file has no contact rows")
	}
	return out, nil
}

func isPrimaryType(v string) bool {
	lower := strings.ToLower(v)
	for _, fragment := range primaryFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// RowCount is the number of data rows EncodeCSV writes for list.
func RowCount(list []ContactData) int {
	n := 0
	for _, cd := range list {
		if len(cd.Locations) == 0 {
			n++
			continue
		}
		n += len(cd.Locations)
	}
	return n
}
