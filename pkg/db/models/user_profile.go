package models

import (
	"time"

	"github.com/angelmondragon/mycrew-backend/pkg/types"
	"github.com/google/uuid"
)

// UserProfile is the owner's own professional card. There is at most one row.
type UserProfile struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	FirstName  string               `gorm:"column:first_name;not null;default:''"`
	LastName   string               `gorm:"column:last_name;not null;default:''"`
	JobTitle   string               `gorm:"column:job_title;not null;default:''"`
	Phone      string               `gorm:"column:phone;not null;default:''"`
	Email      string               `gorm:"column:email;not null;default:''"`
	IsFavorite bool                 `gorm:"column:is_favorite;not null;default:false"`
	Locations  types.LocationValues `gorm:"column:locations;type:text;not null"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserProfile) TableName() string { return "user_profiles" }
