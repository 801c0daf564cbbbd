package contacts

import (
	"github.com/angelmondragon/mycrew-backend/pkg/db/models"
	"github.com/google/uuid"
)

func fromModel(row models.Contact) Contact {
	c := Contact{
		ID:         row.ID,
		Name:       row.Name,
		JobTitle:   row.JobTitle,
		Phone:      row.Phone,
		Email:      row.Email,
		Notes:      row.Notes,
		IsFavorite: row.IsFavorite,
		Locations:  make([]Location, 0, len(row.Locations)),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	for _, loc := range row.Locations {
		c.Locations = append(c.Locations, Location{
			ID:              loc.ID,
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

func toModel(c Contact) models.Contact {
	return models.Contact{
		ID:         c.ID,
		Name:       c.Name,
		JobTitle:   c.JobTitle,
		Phone:      c.Phone,
		Email:      c.Email,
		Notes:      c.Notes,
		IsFavorite: c.IsFavorite,
		Locations:  locationModels(c.ID, c.Locations),
	}
}

func locationModels(contactID uuid.UUID, locs []Location) []models.WorkLocation {
	rows := make([]models.WorkLocation, 0, len(locs))
	for i, loc := range locs {
		id := loc.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		rows = append(rows, models.WorkLocation{
			ID:              id,
			ContactID:       contactID,
			Position:        i,
			Country:         loc.Country,
			Region:          loc.Region,
			HasVehicle:      loc.HasVehicle,
			IsHoused:        loc.IsHoused,
			IsLocalResident: loc.IsLocalResident,
			IsPrimary:       loc.IsPrimary,
		})
	}
	return rows
}
