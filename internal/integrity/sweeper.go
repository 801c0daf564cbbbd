package integrity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/angelmondragon/mycrew-backend/pkg/metrics"
)

// Report summarises one sweep.
type Report struct {
	Scanned          int         `json:"scanned"`
	Repaired         int         `json:"repaired"`
	Failed           int         `json:"failed"`
	RemovedLocations int         `json:"removedLocations"`
	Fixes            map[Fix]int `json:"fixes"`
	DurationMS       int64       `json:"durationMs"`
}

// SweeperParams groups dependencies for the sweeper.
type SweeperParams struct {
	Repo    *contacts.Repository
	Metrics *metrics.TransferMetrics
	Logger  *logger.Logger
}

// Sweeper repairs location lists across the whole store.
type Sweeper struct {
	repo    *contacts.Repository
	metrics *metrics.TransferMetrics
	logg    *logger.Logger
}

func NewSweeper(params SweeperParams) (*Sweeper, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact repo is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Sweeper{repo: params.Repo, metrics: params.Metrics, logg: params.Logger}, nil
}

// Run repairs every contact and writes only those that changed. Each contact
// is written in its own transaction: a failed write is reported at the end and
// does not undo repairs already stored for other contacts.
func (s *Sweeper) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{Fixes: map[Fix]int{}}

	list, err := s.repo.List(ctx)
	if err != nil {
		return report, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contacts for sweep")
	}

	var errs error
	for _, c := range list {
		if err := ctx.Err(); err != nil {
			errs = multierr.Append(errs, err)
			break
		}
		report.Scanned++

		if !RepairLocations(c.Locations).Changed() {
			continue
		}
		cctx := s.logg.WithContactID(ctx, c.ID.String())
		repair, err := s.persist(ctx, c.ID)
		if err != nil {
			report.Failed++
			errs = multierr.Append(errs, fmt.Errorf("contact %s: %w", c.ID, err))
			s.logg.Error(cctx, "integrity.repair_failed", err)
			continue
		}
		if !repair.Changed() {
			continue
		}
		cctx = s.logg.WithField(cctx, "fixes", repair.Fixes)
		report.Repaired++
		report.RemovedLocations += len(repair.Removed)
		for _, fix := range repair.Fixes {
			report.Fixes[fix]++
		}
		s.logg.Info(cctx, "integrity.contact_repaired")
	}

	report.DurationMS = time.Since(start).Milliseconds()
	s.metrics.ContactsRepaired(report.Repaired)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"scanned":  report.Scanned,
		"repaired": report.Repaired,
		"failed":   report.Failed,
	}), "integrity.sweep_complete")

	if errs != nil {
		if errors.Is(errs, context.Canceled) || errors.Is(errs, context.DeadlineExceeded) {
			return report, errs
		}
		return report, pkgerrors.Wrap(pkgerrors.CodePersistence, errs, "integrity sweep").
			WithDetails(map[string]any{
				"scanned":  report.Scanned,
				"repaired": report.Repaired,
				"failed":   report.Failed,
			})
	}
	return report, nil
}

// persist repairs the contact as stored when the write gate is held, not as
// it was in the sweep's snapshot, so a concurrent edit is never overwritten.
// A contact deleted or fixed in the meantime yields an unchanged Repair.
func (s *Sweeper) persist(ctx context.Context, id uuid.UUID) (Repair, error) {
	var applied Repair
	err := s.repo.Write(ctx, func(tx *contacts.Repository) error {
		current, err := tx.FindByID(ctx, id)
		if db.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		repair := RepairLocations(current.Locations)
		if !repair.Changed() {
			return nil
		}
		if err := tx.DeleteLocations(ctx, repair.Removed); err != nil {
			return err
		}
		if err := tx.ReplaceLocations(ctx, id, repair.Locations); err != nil {
			return err
		}
		applied = repair
		return nil
	})
	if err != nil {
		return Repair{}, err
	}
	return applied, nil
}
