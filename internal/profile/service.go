package profile

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/internal/exports"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceParams groups dependencies for the profile service.
type ServiceParams struct {
	Repo    *Repository
	Exports exports.Service
	Logger  *logger.Logger
}

// Service manages the user's own card and shares it like any contact.
type Service interface {
	Get(ctx context.Context) (Profile, error)
	Save(ctx context.Context, p Profile) (Profile, error)
	ScanCode(ctx context.Context) (string, error)
	Export(ctx context.Context, format enums.TransferFormat) (exports.Artifact, error)
}

type service struct {
	repo    *Repository
	exports exports.Service
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile repo is required")
	}
	if params.Exports == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "export service is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{repo: params.Repo, exports: params.Exports, logg: params.Logger}, nil
}

// Get returns the saved profile, or the example card when none exists.
func (s *service) Get(ctx context.Context) (Profile, error) {
	p, err := s.repo.Find(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Example(), nil
	}
	if err != nil {
		return Profile{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return p, nil
}

func (s *service) Save(ctx context.Context, p Profile) (Profile, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.JobTitle = strings.TrimSpace(p.JobTitle)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
	p.IsExample = false

	if err := validate(p); err != nil {
		return Profile{}, err
	}
	p.Locations = normalizeLocations(p.Locations)

	if err := s.repo.Upsert(ctx, p); err != nil {
		return Profile{}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "save profile")
	}
	s.logg.Info(s.logg.WithField(ctx, "locations", len(p.Locations)), "profile.saved")
	return p, nil
}

func (s *service) ScanCode(ctx context.Context) (string, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	return s.exports.ScanCode(ctx, p.Contact())
}

func (s *service) Export(ctx context.Context, format enums.TransferFormat) (exports.Artifact, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return exports.Artifact{}, err
	}
	return s.exports.ExportContact(ctx, p.Contact(), format)
}

func validate(p Profile) error {
	details := map[string]string{}
	if p.JobTitle != "" && !enums.IsValidJob(p.JobTitle) {
		details["jobTitle"] = "is not a known job title"
	}
	for i, loc := range p.Locations {
		if !enums.IsValidCountry(strings.TrimSpace(loc.Country)) {
			details["locations["+strconv.Itoa(i)+"].country"] = "is not a known country"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

// normalizeLocations applies the contact location rules without adding a
// default location: a profile may list none.
func normalizeLocations(in []contacts.LocationDraft) []contacts.LocationDraft {
	if len(in) == 0 {
		return []contacts.LocationDraft{}
	}
	draft := contacts.Draft{Locations: in}
	locs := contacts.NormalizeLocations(draft.Contact(uuid.Nil).Locations)
	out := make([]contacts.LocationDraft, 0, len(locs))
	for _, l := range locs {
		out = append(out, contacts.LocationDraft{
			Country:         l.Country,
			Region:          l.Region,
			HasVehicle:      l.HasVehicle,
			IsHoused:        l.IsHoused,
			IsLocalResident: l.IsLocalResident,
			IsPrimary:       l.IsPrimary,
		})
	}
	return out
}
