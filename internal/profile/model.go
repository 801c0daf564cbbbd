package profile

import (
	"strings"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/google/uuid"
)

// ScanNote is written in the notes of the card shared from the profile.
const ScanNote = "Ma fiche personnelle"

// Profile is the user's own professional card.
type Profile struct {
	FirstName  string                   `json:"firstName" validate:"max=100"`
	LastName   string                   `json:"lastName" validate:"max=100"`
	JobTitle   string                   `json:"jobTitle"`
	Phone      string                   `json:"phone" validate:"max=50"`
	Email      string                   `json:"email" validate:"omitempty,email"`
	IsFavorite bool                     `json:"isFavorite"`
	Locations  []contacts.LocationDraft `json:"locations" validate:"dive"`
	// IsExample is set when nothing was saved yet and the example card is shown.
	IsExample bool `json:"isExample"`
}

// Example is the card shown before the user fills in their own.
func Example() Profile {
	return Profile{
		FirstName:  "Jean",
		LastName:   "Dupont",
		JobTitle:   "Cadreur",
		Phone:      "+33 6 12 34 56 78",
		Email:      "jean.dupont@example.com",
		Locations:  []contacts.LocationDraft{},
		IsFavorite: true,
		IsExample:  true,
	}
}

func (p Profile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Contact presents the profile as a shareable contact card.
func (p Profile) Contact() contacts.Contact {
	draft := contacts.Draft{
		Name:      p.FullName(),
		JobTitle:  p.JobTitle,
		Phone:     p.Phone,
		Email:     p.Email,
		Notes:     ScanNote,
		Locations: p.Locations,
	}
	return draft.Contact(uuid.New())
}
