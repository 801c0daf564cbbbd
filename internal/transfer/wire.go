package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/google/uuid"
)

const (
	// FormatVersion tags every envelope this service writes.
	FormatVersion = "1.0"
	// ScanCodeType discriminates scan-code payloads produced by the app.
	ScanCodeType = "MyCrew_Contact"
)

// appleEpoch is the reference date used by exports written on iOS, whose
// dates are encoded as seconds since 2001-01-01 UTC.
var appleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// ExportDate encodes as RFC 3339 and decodes either RFC 3339 strings or
// numeric reference-date seconds.
type ExportDate struct {
	time.Time
}

func (d ExportDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

func (d *ExportDate) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) || len(raw) == 0 {
		d.Time = time.Time{}
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("export date %q: %w", s, err)
		}
		d.Time = t
		return nil
	}
	secs, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return fmt.Errorf("export date %s: %w", raw, err)
	}
	d.Time = appleEpoch.Add(time.Duration(secs * float64(time.Second)))
	return nil
}

// LocationData is the transport form of a work location.
type LocationData struct {
	Country         string  `json:"country"`
	Region          *string `json:"region"`
	IsLocalResident bool    `json:"isLocalResident"`
	HasVehicle      bool    `json:"hasVehicle"`
	IsHoused        bool    `json:"isHoused"`
	IsPrimary       bool    `json:"isPrimary"`
}

// ContactData is the codec-neutral transport form of a contact.
type ContactData struct {
	Name       string         `json:"name"`
	JobTitle   string         `json:"jobTitle"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email"`
	Notes      string         `json:"notes"`
	IsFavorite bool           `json:"isFavorite"`
	Locations  []LocationData `json:"locations"`
}

// ContactListExport wraps a batch export.
type ContactListExport struct {
	Version           string        `json:"version"`
	ExportDate        ExportDate    `json:"exportDate"`
	TotalContacts     int           `json:"totalContacts"`
	FilterDescription string        `json:"filterDescription"`
	Contacts          []ContactData `json:"contacts"`
}

// ContactExportData wraps a single-contact export.
type ContactExportData struct {
	Version    string      `json:"version"`
	ExportDate ExportDate  `json:"exportDate"`
	Contact    ContactData `json:"contact"`
}

// ScanEnvelope is the self-describing payload carried by a scan code.
type ScanEnvelope struct {
	Type    string      `json:"type"`
	Version string      `json:"version"`
	Data    ContactData `json:"data"`
}

// FromContact converts a stored contact into its transport form, keeping
// location order.
func FromContact(c contacts.Contact) ContactData {
	cd := ContactData{
		Name:       c.Name,
		JobTitle:   c.JobTitle,
		Phone:      c.Phone,
		Email:      c.Email,
		Notes:      c.Notes,
		IsFavorite: c.IsFavorite,
		Locations:  make([]LocationData, 0, len(c.Locations)),
	}
	for _, loc := range c.Locations {
		cd.Locations = append(cd.Locations, LocationData{
			Country:         loc.Country,
			Region:          loc.Region,
			IsLocalResident: loc.IsLocalResident,
			HasVehicle:      loc.HasVehicle,
			IsHoused:        loc.IsHoused,
			IsPrimary:       loc.IsPrimary,
		})
	}
	return cd
}

// FromContacts converts a list, keeping its order.
func FromContacts(list []contacts.Contact) []ContactData {
	out := make([]ContactData, 0, len(list))
	for _, c := range list {
		out = append(out, FromContact(c))
	}
	return out
}

// ToContact builds a new contact with fresh identities from transport data.
func (cd ContactData) ToContact() contacts.Contact {
	c := contacts.Contact{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(cd.Name),
		JobTitle:   strings.TrimSpace(cd.JobTitle),
		Phone:      strings.TrimSpace(cd.Phone),
		Email:      strings.TrimSpace(cd.Email),
		Notes:      cd.Notes,
		IsFavorite: cd.IsFavorite,
		Locations:  make([]contacts.Location, 0, len(cd.Locations)),
	}
	for _, loc := range cd.Locations {
		c.Locations = append(c.Locations, contacts.Location{
			ID:              uuid.New(),
			Country:         loc.Country,
			Region:          loc.Region,
			HasVehicle:      loc.HasVehicle,
			IsHoused:        loc.IsHoused,
			IsLocalResident: loc.IsLocalResident,
			IsPrimary:       loc.IsPrimary,
		})
	}
	return c
}

// NormalizedName is the key used for duplicate detection.
func NormalizedName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
