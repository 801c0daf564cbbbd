package transfer

import (
	"regexp"
	"strings"

	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/emersion/go-vcard"
)

// VCardOriginNote is appended to the notes of every contact read from a vCard.
const VCardOriginNote = "Importé depuis une vCard"

var beginVCard = regexp.MustCompile(`(?i)BEGIN:VCARD`)

// DecodeVCard reads concatenated vCard records. Every contact gets the
// import-only job title and a default Worldwide location since vCards carry
// neither. Records without a name, or that cannot be decoded, are dropped.
func DecodeVCard(data []byte) ([]ContactData, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	starts := beginVCard.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidFormat, "no vCard record found")
	}

	var out []ContactData
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		card, ok := decodeCardBlock(text[loc[1]:end])
		if !ok {
			continue
		}
		if cd, ok := contactFromCard(card); ok {
			out = append(out, cd)
		}
	}

	if len(out) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidFormat, "no named vCard record found")
	}
	return out, nil
}

func decodeCardBlock(body string) (vcard.Card, bool) {
	body = strings.TrimSpace(body)
	if !strings.Contains(strings.ToUpper(body), "END:VCARD") {
		body += "\nEND:VCARD"
	}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = typeBareParams(line)
	}
	block := "BEGIN:VCARD\r\n" + strings.Join(lines, "\r\n") + "\r\n"
	card, err := vcard.NewDecoder(strings.NewReader(block)).Decode()
	if err != nil {
		return nil, false
	}
	return card, true
}

// typeBareParams names vCard 2.1 parameters that have no name, so
// "TEL;CELL;VOICE:06..." reads as "TEL;TYPE=CELL;TYPE=VOICE:06...". The
// decoder would otherwise take the value for the parameter's own value and
// leave the property empty. Folded continuation lines are left alone.
func typeBareParams(line string) string {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return line
	}
	head, value, ok := strings.Cut(line, ":")
	if !ok || !strings.Contains(head, ";") {
		return line
	}
	params := strings.Split(head, ";")
	for i := 1; i < len(params); i++ {
		if p := strings.TrimSpace(params[i]); p != "" && !strings.Contains(p, "=") {
			params[i] = "TYPE=" + p
		}
	}
	return strings.Join(params, ";") + ":" + value
}

func contactFromCard(card vcard.Card) (ContactData, bool) {
	name := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName))
	if name == "" {
		if n := card.Name(); n != nil {
			name = strings.TrimSpace(strings.Join(nonEmpty(n.GivenName, n.FamilyName), " "))
		}
	}
	if name == "" {
		return ContactData{}, false
	}

	var notes []string
	if note := strings.TrimSpace(card.PreferredValue(vcard.FieldNote)); note != "" {
		notes = append(notes, note)
	}
	if org := strings.TrimSpace(strings.Trim(card.PreferredValue(vcard.FieldOrganization), ";")); org != "" {
		notes = append(notes, "Organisation: "+strings.ReplaceAll(org, ";", " - "))
	}
	notes = append(notes, VCardOriginNote)

	return ContactData{
		Name:     name,
		JobTitle: enums.DefaultJob,
		Phone:    strings.TrimSpace(card.PreferredValue(vcard.FieldTelephone)),
		Email:    strings.TrimSpace(card.PreferredValue(vcard.FieldEmail)),
		Notes:    strings.Join(notes, "\n"),
		Locations: []LocationData{
			{Country: enums.CountryWorldwide, IsPrimary: true},
		},
	}, true
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
