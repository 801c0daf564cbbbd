package contacts

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mycrew-backend/internal/repo"
	"github.com/angelmondragon/mycrew-backend/pkg/db/models"
)

// Repository persists contacts and their locations.
//
// Every mutation goes through Write, which holds a process-wide lock for the
// whole transaction so that concurrent requests apply one at a time.
type Repository struct {
	base repo.Base
	gate *sync.Mutex
}

// NewRepository constructs a contact repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db), gate: &sync.Mutex{}}
}

// Write runs fn inside a transaction while holding the single-writer lock.
// The repository handed to fn is bound to the transaction; calling Write on
// it again reuses the same transaction.
func (r *Repository) Write(ctx context.Context, fn func(tx *Repository) error) error {
	if r.gate == nil {
		return fn(r)
	}
	r.gate.Lock()
	defer r.gate.Unlock()

	return r.base.Transaction(ctx, func(tx repo.Base) error {
		return fn(&Repository{base: tx})
	})
}

func (r *Repository) withLocations(ctx context.Context) *gorm.DB {
	return r.base.DB(ctx).Preload("Locations", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// List returns every contact with its locations in stored order.
func (r *Repository) List(ctx context.Context) ([]Contact, error) {
	var rows []models.Contact
	if err := r.withLocations(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Contact, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

// FindByID returns gorm.ErrRecordNotFound when the contact does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (Contact, error) {
	var row models.Contact
	if err := r.withLocations(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return Contact{}, err
	}
	return fromModel(row), nil
}

// Insert stores a new contact and its locations.
func (r *Repository) Insert(ctx context.Context, c Contact) error {
	row := toModel(c)
	return r.base.DB(ctx).Create(&row).Error
}

// Save updates the scalar fields of c and replaces its stored locations with
// c.Locations.
func (r *Repository) Save(ctx context.Context, c Contact) error {
	row := toModel(c)
	res := r.base.DB(ctx).
		Model(&models.Contact{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"name":        row.Name,
			"job_title":   row.JobTitle,
			"phone":       row.Phone,
			"email":       row.Email,
			"notes":       row.Notes,
			"is_favorite": row.IsFavorite,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.ReplaceLocations(ctx, c.ID, c.Locations)
}

// ReplaceLocations deletes every location of the contact and inserts locs.
func (r *Repository) ReplaceLocations(ctx context.Context, contactID uuid.UUID, locs []Location) error {
	db := r.base.DB(ctx)
	if err := db.Where("contact_id = ?", contactID).Delete(&models.WorkLocation{}).Error; err != nil {
		return err
	}
	if len(locs) == 0 {
		return nil
	}
	rows := locationModels(contactID, locs)
	return db.Create(&rows).Error
}

// SetFavorite updates only the favourite flag.
func (r *Repository) SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error {
	res := r.base.DB(ctx).Model(&models.Contact{}).Where("id = ?", id).Update("is_favorite", favorite)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the contact and its locations.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.base.DB(ctx)
	if err := db.Where("contact_id = ?", id).Delete(&models.WorkLocation{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&models.Contact{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteLocations removes specific locations by id.
func (r *Repository) DeleteLocations(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.base.DB(ctx).Where("id IN ?", ids).Delete(&models.WorkLocation{}).Error
}

// UsedJobTitles returns the distinct job titles present in the store.
func (r *Repository) UsedJobTitles(ctx context.Context) ([]string, error) {
	var jobs []string
	err := r.base.DB(ctx).Model(&models.Contact{}).Distinct().Pluck("job_title", &jobs).Error
	return jobs, err
}

// UsedCountries returns the distinct countries present on any location.
func (r *Repository) UsedCountries(ctx context.Context) ([]string, error) {
	var countries []string
	err := r.base.DB(ctx).Model(&models.WorkLocation{}).Distinct().Pluck("country", &countries).Error
	return countries, err
}
