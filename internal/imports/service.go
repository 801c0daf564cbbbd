package imports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/internal/transfer"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/angelmondragon/mycrew-backend/pkg/metrics"
)

const defaultPendingTTL = 30 * time.Minute

const (
	MessageAdded     = "Les contacts ont été ajoutés avec succès"
	MessageCancelled = "Import annulé, aucun contact n'a été modifié"
)

// Status is where an import operation ended.
type Status string

const (
	StatusApplied          Status = "applied"
	StatusAwaitingDecision Status = "awaiting_decision"
	StatusCancelled        Status = "cancelled"
)

// Result reports the outcome of an import step.
type Result struct {
	Status     Status               `json:"status"`
	ImportID   string               `json:"importId,omitempty"`
	Format     enums.TransferFormat `json:"format"`
	Parsed     int                  `json:"parsed"`
	Skipped    int                  `json:"skipped"`
	Duplicates []string             `json:"duplicates,omitempty"`
	Applied    int                  `json:"applied"`
	Replaced   int                  `json:"replaced"`
	Message    string               `json:"message"`
	ExpiresAt  *time.Time           `json:"expiresAt,omitempty"`
}

// ServiceParams groups dependencies for the import service.
type ServiceParams struct {
	Repo       *contacts.Repository
	Pending    PendingStore
	Tokens     transfer.Tokens
	PendingTTL time.Duration
	Metrics    *metrics.TransferMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

// Service turns uploads and scan codes into stored contacts, asking for a
// decision whenever an incoming name already exists.
type Service interface {
	Import(ctx context.Context, upload Upload) (Result, error)
	ImportScanCode(ctx context.Context, payload string) (Result, error)
	Resolve(ctx context.Context, importID string, decision enums.ImportDecision) (Result, error)
}

type service struct {
	repo    *contacts.Repository
	pending PendingStore
	tokens  transfer.Tokens
	ttl     time.Duration
	metrics *metrics.TransferMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// errDuplicates aborts the auto-apply transaction when collisions are found.
var errDuplicates = errors.New("duplicate names")

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact repo is required")
	}
	if params.Pending == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pending store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	tokens := params.Tokens
	if tokens.Yes == "" || tokens.No == "" {
		tokens = transfer.DefaultTokens()
	}
	ttl := params.PendingTTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		pending: params.Pending,
		tokens:  tokens,
		ttl:     ttl,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

func (s *service) Import(ctx context.Context, upload Upload) (Result, error) {
	ctx = s.logg.WithField(ctx, "file_name", upload.FileName)
	parsed, err := Parse(upload, s.tokens)
	if err != nil {
		format, _ := transfer.DetectFormat(upload.FileName)
		s.metrics.Import(format.String(), metrics.OutcomeFailure)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "import.parse_failed")
		return Result{}, err
	}
	return s.submit(ctx, parsed, upload.FileName)
}

func (s *service) ImportScanCode(ctx context.Context, payload string) (Result, error) {
	parsed, err := ParseScanCode(payload)
	if err != nil {
		s.metrics.Import(enums.FormatScan.String(), metrics.OutcomeFailure)
		return Result{}, err
	}
	return s.submit(ctx, parsed, "")
}

// submit checks for duplicates and applies the import when there are none.
// The check and the inserts share one write transaction.
func (s *service) submit(ctx context.Context, parsed Parsed, fileName string) (Result, error) {
	result := Result{
		Format:  parsed.Format,
		Parsed:  len(parsed.Contacts),
		Skipped: parsed.Skipped,
	}

	var duplicates []string
	err := s.repo.Write(ctx, func(tx *contacts.Repository) error {
		existing, err := tx.List(ctx)
		if err != nil {
			return err
		}
		duplicates = Duplicates(parsed.Contacts, existing)
		if len(duplicates) > 0 {
			return errDuplicates
		}
		return insertAll(ctx, tx, parsed.Contacts)
	})
	switch {
	case err == nil:
		result.Status = StatusApplied
		result.Applied = len(parsed.Contacts)
		result.Message = MessageAdded
		s.metrics.Import(parsed.Format.String(), metrics.OutcomeSuccess)
		s.metrics.ContactsApplied(result.Applied)
		s.logg.Info(s.logg.WithField(ctx, "applied", result.Applied), "import.applied")
		return result, nil
	case !errors.Is(err, errDuplicates):
		s.metrics.Import(parsed.Format.String(), metrics.OutcomeFailure)
		return Result{}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "apply import")
	}

	pending := Pending{
		ID:         uuid.NewString(),
		Format:     parsed.Format,
		FileName:   fileName,
		Contacts:   parsed.Contacts,
		Duplicates: duplicates,
		Skipped:    parsed.Skipped,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.pending.Put(ctx, pending, s.ttl); err != nil {
		s.metrics.Import(parsed.Format.String(), metrics.OutcomeFailure)
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "park pending import")
	}

	expires := pending.CreatedAt.Add(s.ttl)
	result.Status = StatusAwaitingDecision
	result.ImportID = pending.ID
	result.Duplicates = duplicates
	result.ExpiresAt = &expires
	result.Message = awaitingMessage(len(duplicates))
	s.metrics.Import(parsed.Format.String(), metrics.OutcomePending)
	s.logg.Info(s.logg.WithFields(s.logg.WithImportID(ctx, pending.ID), map[string]any{
		"duplicates":      len(duplicates),
		"duplicate_names": duplicates,
	}), "import.awaiting_decision")
	return result, nil
}

// Resolve applies or discards a pending import. Continue replaces the stored
// contacts named in the confirmed duplicate list; if more incoming names
// collide by then, nothing is written and the import awaits a new decision
// under the same id. Cancel leaves the store untouched.
func (s *service) Resolve(ctx context.Context, importID string, decision enums.ImportDecision) (Result, error) {
	if !decision.IsValid() {
		return Result{}, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid decision %q", decision)
	}
	ctx = s.logg.WithImportID(ctx, importID)

	pending, found, err := s.pending.Take(ctx, importID)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending import")
	}
	if !found {
		return Result{}, pkgerrors.New(pkgerrors.CodeNotFound, "pending import not found or expired")
	}

	result := Result{
		ImportID:   pending.ID,
		Format:     pending.Format,
		Parsed:     len(pending.Contacts),
		Skipped:    pending.Skipped,
		Duplicates: pending.Duplicates,
	}

	if decision == enums.ImportDecisionCancel {
		result.Status = StatusCancelled
		result.Message = MessageCancelled
		s.metrics.Import(pending.Format.String(), metrics.OutcomeCancelled)
		s.logg.Info(ctx, "import.cancelled")
		return result, nil
	}

	replaced := 0
	var unconfirmed []string
	err = s.repo.Write(ctx, func(tx *contacts.Repository) error {
		existing, err := tx.List(ctx)
		if err != nil {
			return err
		}
		// Only names the user saw and confirmed may be replaced. Contacts
		// created since the import was parked send it back for a new decision.
		confirmed := normalizedSet(pending.Duplicates)
		current := Duplicates(pending.Contacts, existing)
		for _, name := range current {
			if _, ok := confirmed[transfer.NormalizedName(name)]; !ok {
				unconfirmed = current
				return errDuplicates
			}
		}
		for _, c := range existing {
			if _, ok := confirmed[transfer.NormalizedName(c.Name)]; !ok {
				continue
			}
			if err := tx.Delete(ctx, c.ID); err != nil {
				return err
			}
			replaced++
		}
		return insertAll(ctx, tx, pending.Contacts)
	})
	if errors.Is(err, errDuplicates) {
		return s.reconfirm(ctx, pending, unconfirmed)
	}
	if err != nil {
		s.metrics.Import(pending.Format.String(), metrics.OutcomeFailure)
		// the decision is lost with the failed write; park it again so the
		// caller can retry
		if putErr := s.pending.Put(ctx, pending, s.ttl); putErr != nil {
			s.logg.Error(ctx, "import.repark_failed", putErr)
		}
		return Result{}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "apply import")
	}

	result.Status = StatusApplied
	result.Applied = len(pending.Contacts)
	result.Replaced = replaced
	result.Message = replacedMessage(result.Applied, replaced)
	s.metrics.Import(pending.Format.String(), metrics.OutcomeSuccess)
	s.metrics.ContactsApplied(result.Applied)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"applied":  result.Applied,
		"replaced": replaced,
	}), "import.applied")
	return result, nil
}

// Duplicates lists the incoming names, as received, that match a stored
// contact once both are lowercased and trimmed. Each name appears once.
func Duplicates(incoming []transfer.ContactData, existing []contacts.Contact) []string {
	stored := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		stored[transfer.NormalizedName(c.Name)] = struct{}{}
	}
	seen := map[string]struct{}{}
	var out []string
	for _, cd := range incoming {
		key := transfer.NormalizedName(cd.Name)
		if _, ok := stored[key]; !ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cd.Name)
	}
	return out
}

// reconfirm parks pending again, under the same id, with the duplicate list
// as it stands now.
func (s *service) reconfirm(ctx context.Context, pending Pending, duplicates []string) (Result, error) {
	pending.Duplicates = duplicates
	pending.CreatedAt = s.now().UTC()
	if err := s.pending.Put(ctx, pending, s.ttl); err != nil {
		s.metrics.Import(pending.Format.String(), metrics.OutcomeFailure)
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "park pending import")
	}
	expires := pending.CreatedAt.Add(s.ttl)
	s.metrics.Import(pending.Format.String(), metrics.OutcomePending)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"duplicates":      len(duplicates),
		"duplicate_names": duplicates,
	}), "import.duplicates_changed")
	return Result{
		Status:     StatusAwaitingDecision,
		ImportID:   pending.ID,
		Format:     pending.Format,
		Parsed:     len(pending.Contacts),
		Skipped:    pending.Skipped,
		Duplicates: duplicates,
		ExpiresAt:  &expires,
		Message:    awaitingMessage(len(duplicates)),
	}, nil
}

func normalizedSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, name := range names {
		out[transfer.NormalizedName(name)] = struct{}{}
	}
	return out
}

func nameSet(list []transfer.ContactData) map[string]struct{} {
	out := make(map[string]struct{}, len(list))
	for _, cd := range list {
		out[transfer.NormalizedName(cd.Name)] = struct{}{}
	}
	return out
}

func insertAll(ctx context.Context, tx *contacts.Repository, list []transfer.ContactData) error {
	for _, cd := range list {
		c := cd.ToContact()
		c.Locations = contacts.NormalizeLocations(c.Locations)
		if err := tx.Insert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func awaitingMessage(n int) string {
	if n == 1 {
		return "1 contact existe déjà. Continuer remplacera la fiche existante."
	}
	return fmt.Sprintf("%d contacts existent déjà. Continuer remplacera les fiches existantes.", n)
}

func replacedMessage(applied, replaced int) string {
	if replaced == 0 {
		return MessageAdded
	}
	return fmt.Sprintf("%d contact(s) importé(s), %d doublon(s) remplacé(s)", applied, replaced)
}
