package models

import "github.com/google/uuid"

// WorkLocation is one place a contact can work. Position keeps the order the
// locations were entered in.
type WorkLocation struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ContactID       uuid.UUID `gorm:"column:contact_id;type:uuid;not null;index:work_locations_contact_id_idx"`
	Position        int       `gorm:"column:position;not null;default:0"`
	Country         string    `gorm:"column:country;not null;default:'Worldwide'"`
	Region          *string   `gorm:"column:region"`
	HasVehicle      bool      `gorm:"column:has_vehicle;not null;default:false"`
	IsHoused        bool      `gorm:"column:is_housed;not null;default:false"`
	IsLocalResident bool      `gorm:"column:is_local_resident;not null;default:false"`
	IsPrimary       bool      `gorm:"column:is_primary;not null;default:false"`
}

func (WorkLocation) TableName() string { return "work_locations" }
