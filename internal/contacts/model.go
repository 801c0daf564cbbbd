package contacts

import (
	"time"

	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	"github.com/google/uuid"
)

// UnspecifiedCity is shown when a contact has no location at all.
const UnspecifiedCity = "Non spécifié"

// Location is one work location owned by a contact.
type Location struct {
	ID              uuid.UUID `json:"id"`
	Country         string    `json:"country"`
	Region          *string   `json:"region"`
	HasVehicle      bool      `json:"hasVehicle"`
	IsHoused        bool      `json:"isHoused"`
	IsLocalResident bool      `json:"isLocalResident"`
	IsPrimary       bool      `json:"isPrimary"`
}

// DefaultLocation is attached when a contact would otherwise have none.
func DefaultLocation() Location {
	return Location{ID: uuid.New(), Country: enums.CountryWorldwide, IsPrimary: true}
}

// RegionName returns the region or "" when absent.
func (l Location) RegionName() string {
	if l.Region == nil {
		return ""
	}
	return *l.Region
}

// Label formats the location as "country[ / region]".
func (l Location) Label() string {
	if region := l.RegionName(); region != "" {
		return l.Country + " / " + region
	}
	return l.Country
}

// Attributes lists the enabled boolean attributes with their display labels.
func (l Location) Attributes() []string {
	var attrs []string
	if l.HasVehicle {
		attrs = append(attrs, "Véhiculé")
	}
	if l.IsHoused {
		attrs = append(attrs, "Logé")
	}
	if l.IsLocalResident {
		attrs = append(attrs, "Résidence fiscale")
	}
	return attrs
}

// Contact is a crew member with their ordered work locations.
type Contact struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	JobTitle   string     `json:"jobTitle"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	Notes      string     `json:"notes"`
	IsFavorite bool       `json:"isFavorite"`
	Locations  []Location `json:"locations"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (c Contact) primaryIndex() int {
	for i, loc := range c.Locations {
		if loc.IsPrimary {
			return i
		}
	}
	if len(c.Locations) > 0 {
		return 0
	}
	return -1
}

// PrimaryLocation returns the flagged primary location, falling back to the
// first one. ok is false when the contact has no locations.
func (c Contact) PrimaryLocation() (Location, bool) {
	idx := c.primaryIndex()
	if idx < 0 {
		return Location{}, false
	}
	return c.Locations[idx], true
}

// SecondaryLocations returns every location except the primary, in order.
func (c Contact) SecondaryLocations() []Location {
	idx := c.primaryIndex()
	out := make([]Location, 0, len(c.Locations))
	for i, loc := range c.Locations {
		if i != idx {
			out = append(out, loc)
		}
	}
	return out
}

// DisplayCity formats the primary location for list rows.
func (c Contact) DisplayCity() string {
	loc, ok := c.PrimaryLocation()
	if !ok {
		return UnspecifiedCity
	}
	return loc.Label()
}

func (c Contact) Department() string {
	return enums.DepartmentOf(c.JobTitle)
}

// Draft returns an editable copy of the contact. Saving the draft replaces the
// stored fields and the whole location list.
func (c Contact) Draft() Draft {
	d := Draft{
		Name:       c.Name,
		JobTitle:   c.JobTitle,
		Phone:      c.Phone,
		Email:      c.Email,
		Notes:      c.Notes,
		IsFavorite: c.IsFavorite,
		Locations:  make([]LocationDraft, 0, len(c.Locations)),
	}
	for _, loc := range c.Locations {
		d.Locations = append(d.Locations, LocationDraft{
			Country:         loc.Country,
			Region:          loc.Region,
			HasVehicle:      loc.HasVehicle,
			IsHoused:        loc.IsHoused,
			IsLocalResident: loc.IsLocalResident,
			IsPrimary:       loc.IsPrimary,
		})
	}
	return d
}

// Draft is the edit buffer for a contact.
type Draft struct {
	Name       string          `json:"name" validate:"required,max=200"`
	JobTitle   string          `json:"jobTitle" validate:"required"`
	Phone      string          `json:"phone" validate:"max=50"`
	Email      string          `json:"email" validate:"omitempty,email"`
	Notes      string          `json:"notes"`
	IsFavorite bool            `json:"isFavorite"`
	Locations  []LocationDraft `json:"locations" validate:"dive"`
}

type LocationDraft struct {
	Country         string  `json:"country" validate:"required"`
	Region          *string `json:"region"`
	HasVehicle      bool    `json:"hasVehicle"`
	IsHoused        bool    `json:"isHoused"`
	IsLocalResident bool    `json:"isLocalResident"`
	IsPrimary       bool    `json:"isPrimary"`
}

// Contact materialises the draft as a new contact with fresh identities.
func (d Draft) Contact(id uuid.UUID) Contact {
	c := Contact{
		ID:         id,
		Name:       d.Name,
		JobTitle:   d.JobTitle,
		Phone:      d.Phone,
		Email:      d.Email,
		Notes:      d.Notes,
		IsFavorite: d.IsFavorite,
		Locations:  make([]Location, 0, len(d.Locations)),
	}
	for _, loc := range d.Locations {
		c.Locations = append(c.Locations, Location{
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
