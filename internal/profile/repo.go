package profile

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/internal/repo"
	"github.com/angelmondragon/mycrew-backend/pkg/db/models"
	"github.com/angelmondragon/mycrew-backend/pkg/types"
)

// rowID is the key of the single profile row.
var rowID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Repository stores the profile as one row.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// Find returns gorm.ErrRecordNotFound when no profile was saved yet.
func (r *Repository) Find(ctx context.Context) (Profile, error) {
	var row models.UserProfile
	if err := r.base.DB(ctx).Where("id = ?", rowID).First(&row).Error; err != nil {
		return Profile{}, err
	}
	return fromModel(row), nil
}

// Upsert writes the profile row, creating it on first save.
func (r *Repository) Upsert(ctx context.Context, p Profile) error {
	row := toModel(p)
	return r.base.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func fromModel(row models.UserProfile) Profile {
	p := Profile{
		FirstName:  row.FirstName,
		LastName:   row.LastName,
		JobTitle:   row.JobTitle,
		Phone:      row.Phone,
		Email:      row.Email,
		IsFavorite: row.IsFavorite,
		Locations:  make([]contacts.LocationDraft, 0, len(row.Locations)),
	}
	for _, v := range row.Locations {
		p.Locations = append(p.Locations, contacts.LocationDraft{
			Country:         v.Country,
			Region:          v.Region,
			HasVehicle:      v.HasVehicle,
			IsHoused:        v.IsHoused,
			IsLocalResident: v.IsLocalResident,
			IsPrimary:       v.IsPrimary,
		})
	}
	return p
}

func toModel(p Profile) models.UserProfile {
	row := models.UserProfile{
		ID:         rowID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		JobTitle:   p.JobTitle,
		Phone:      p.Phone,
		Email:      p.Email,
		IsFavorite: p.IsFavorite,
		Locations:  make(types.LocationValues, 0, len(p.Locations)),
	}
	for _, l := range p.Locations {
		row.Locations = append(row.Locations, types.LocationValue{
			Country:         l.Country,
			Region:          l.Region,
			HasVehicle:      l.HasVehicle,
			IsHoused:        l.IsHoused,
			IsLocalResident: l.IsLocalResident,
			IsPrimary:       l.IsPrimary,
		})
	}
	return row
}
