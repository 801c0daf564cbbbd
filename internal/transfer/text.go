package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
)

const (
	textRule      = "================================"
	textSeparator = "--------------------------------"
	textFooter    = "Exporté depuis Répertoire App"
)

// EncodeContactText renders the shareable "fiche contact" of one contact.
func EncodeContactText(c contacts.Contact) string {
	var b strings.Builder
	b.WriteString("📋 FICHE CONTACT - RÉPERTOIRE\n")
	b.WriteString(textRule + "\n\n")
	writeContactBlock(&b, c)
	b.WriteString("\n" + textRule + "\n")
	b.WriteString(textFooter)
	return b.String()
}

// EncodeText renders a human-readable report of a filtered list.
func EncodeText(list []contacts.Contact, description string, exportedAt time.Time) string {
	var b strings.Builder
	b.WriteString("📋 LISTE DE CONTACTS - RÉPERTOIRE\n")
	b.WriteString(textRule + "\n")
	fmt.Fprintf(&b, "Filtre: %s\n", singleLine(description))
	fmt.Fprintf(&b, "Nombre de contacts: %d\n", len(list))
	fmt.Fprintf(&b, "Date d'export: %s\n", exportedAt.Format("02/01/2006 15:04"))

	for _, c := range list {
		b.WriteString("\n" + textSeparator + "\n")
		writeContactBlock(&b, c)
	}

	b.WriteString("\n" + textRule + "\n")
	b.WriteString(textFooter)
	return b.String()
}

func writeContactBlock(b *strings.Builder, c contacts.Contact) {
	fmt.Fprintf(b, "👤 NOM: %s\n", c.Name)
	fmt.Fprintf(b, "💼 POSTE: %s\n", c.JobTitle)
	if c.Phone != "" {
		fmt.Fprintf(b, "📞 TÉLÉPHONE: %s\n", c.Phone)
	}
	if c.Email != "" {
		fmt.Fprintf(b, "📧 EMAIL: %s\n", c.Email)
	}

	if primary, ok := c.PrimaryLocation(); ok {
		b.WriteString("\n📍 LIEUX DE TRAVAIL:\n")
		b.WriteString("• PRINCIPAL: " + locationLine(primary) + "\n")
		for i, loc := range c.SecondaryLocations() {
			fmt.Fprintf(b, "• SECONDAIRE %d: %s\n", i+1, locationLine(loc))
		}
	}

	if c.Notes != "" {
		fmt.Fprintf(b, "\n📝 NOTES:\n%s\n", c.Notes)
	}
}

func locationLine(loc contacts.Location) string {
	line := loc.Label()
	if attrs := loc.Attributes(); len(attrs) > 0 {
		line += " (" + strings.Join(attrs, ", ") + ")"
	}
	return line
}
