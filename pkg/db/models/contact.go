package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a crew member record. Its work locations are owned and removed
// with it.
type Contact struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name       string         `gorm:"column:name;not null;index:contacts_name_idx"`
	JobTitle   string         `gorm:"column:job_title;not null;index:contacts_job_title_idx"`
	Phone      string         `gorm:"column:phone;not null;default:''"`
	Email      string         `gorm:"column:email;not null;default:''"`
	Notes      string         `gorm:"column:notes;type:text;not null;default:''"`
	IsFavorite bool           `gorm:"column:is_favorite;not null;default:false"`
	Locations  []WorkLocation `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Contact) TableName() string { return "contacts" }
