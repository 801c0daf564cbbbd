package contacts

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceParams groups dependencies for the contact service.
type ServiceParams struct {
	Repo   *Repository
	Logger *logger.Logger
}

// ListOptions narrows a listing. A nil Match keeps every contact.
type ListOptions struct {
	Match func(Contact) bool
}

// Usage describes which vocabulary values are present in the store.
type Usage struct {
	JobTitles []string
	Countries []string
}

// Service exposes contact management rules.
type Service interface {
	Create(ctx context.Context, draft Draft) (Contact, error)
	Get(ctx context.Context, id uuid.UUID) (Contact, error)
	List(ctx context.Context, opts ListOptions) ([]Contact, error)
	Update(ctx context.Context, id uuid.UUID, draft Draft) (Contact, error)
	ToggleFavorite(ctx context.Context, id uuid.UUID) (Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Usage(ctx context.Context) (Usage, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService builds a contact service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact repo is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, draft Draft) (Contact, error) {
	draft = trimDraft(draft)
	if err := validateDraft(draft, false); err != nil {
		return Contact{}, err
	}

	contact := draft.Contact(uuid.New())
	contact.Locations = NormalizeLocations(contact.Locations)

	var created Contact
	err := s.repo.Write(ctx, func(tx *Repository) error {
		if err := tx.Insert(ctx, contact); err != nil {
			return err
		}
		var err error
		created, err = tx.FindByID(ctx, contact.ID)
		return err
	})
	if err != nil {
		return Contact{}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create contact")
	}

	s.logg.Info(s.logg.WithContactID(ctx, created.ID.String()), "contact.created")
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Contact, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Contact{}, mapReadError(err, "contact not found", "load contact")
	}
	return contact, nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]Contact, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contacts")
	}
	out := all
	if opts.Match != nil {
		out = make([]Contact, 0, len(all))
		for _, c := range all {
			if opts.Match(c) {
				out = append(out, c)
			}
		}
	}
	Sort(out)
	return out, nil
}

// Update applies the edit buffer. The stored location list is replaced as a
// whole by the draft's locations.
func (s *service) Update(ctx context.Context, id uuid.UUID, draft Draft) (Contact, error) {
	draft = trimDraft(draft)
	if err := validateDraft(draft, true); err != nil {
		return Contact{}, err
	}

	contact := draft.Contact(id)
	contact.Locations = NormalizeLocations(contact.Locations)

	var updated Contact
	err := s.repo.Write(ctx, func(tx *Repository) error {
		if err := tx.Save(ctx, contact); err != nil {
			return err
		}
		var err error
		updated, err = tx.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return Contact{}, mapWriteError(err, "update contact")
	}

	s.logg.Info(s.logg.WithContactID(ctx, id.String()), "contact.updated")
	return updated, nil
}

func (s *service) ToggleFavorite(ctx context.Context, id uuid.UUID) (Contact, error) {
	var updated Contact
	err := s.repo.Write(ctx, func(tx *Repository) error {
		current, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.SetFavorite(ctx, id, !current.IsFavorite); err != nil {
			return err
		}
		current.IsFavorite = !current.IsFavorite
		updated = current
		return nil
	})
	if err != nil {
		return Contact{}, mapWriteError(err, "toggle favorite")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Write(ctx, func(tx *Repository) error {
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return mapWriteError(err, "delete contact")
	}
	s.logg.Info(s.logg.WithContactID(ctx, id.String()), "contact.deleted")
	return nil
}

func (s *service) Usage(ctx context.Context) (Usage, error) {
	jobs, err := s.repo.UsedJobTitles(ctx)
	if err != nil {
		return Usage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load job titles")
	}
	countries, err := s.repo.UsedCountries(ctx)
	if err != nil {
		return Usage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load countries")
	}
	enums.SortLocalized(jobs)
	enums.SortLocalized(countries)
	return Usage{JobTitles: jobs, Countries: countries}, nil
}

func trimDraft(d Draft) Draft {
	d.Name = strings.TrimSpace(d.Name)
	d.JobTitle = strings.TrimSpace(d.JobTitle)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Email = strings.TrimSpace(d.Email)
	return d
}

// validateDraft checks vocabulary rules. The import-only job title is accepted
// on updates so imported contacts stay editable before a real title is set.
func validateDraft(d Draft, allowDefaultJob bool) error {
	details := map[string]string{}
	if d.Name == "" {
		details["name"] = "is required"
	}
	switch {
	case d.JobTitle == "":
		details["jobTitle"] = "is required"
	case enums.IsStandardJob(d.JobTitle):
	case allowDefaultJob && d.JobTitle == enums.DefaultJob:
	default:
		details["jobTitle"] = "is not a known job title"
	}
	for i, loc := range d.Locations {
		if !enums.IsValidCountry(strings.TrimSpace(loc.Country)) {
			details[locationField(i, "country")] = "is not a known country"
		}
		if loc.Region != nil && strings.TrimSpace(*loc.Region) != "" &&
			strings.TrimSpace(loc.Country) == enums.CountryFrance &&
			!enums.IsFrenchRegion(strings.TrimSpace(*loc.Region)) {
			details[locationField(i, "region")] = "is not a known region"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func locationField(i int, field string) string {
	return "locations[" + strconv.Itoa(i) + "]." + field
}

func mapReadError(err error, notFound, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func mapWriteError(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, op)
}
