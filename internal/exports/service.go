package exports

import (
	"context"
	"time"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/internal/transfer"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/angelmondragon/mycrew-backend/pkg/metrics"
	"github.com/angelmondragon/mycrew-backend/pkg/storage"
)

// Request describes a list export.
type Request struct {
	Format      enums.TransferFormat
	Contacts    []contacts.Contact
	Description string
}

// Artifact is the result of an export. Text exports carry Text and never
// touch the sink; file exports carry Data and, once stored, a Reference.
type Artifact struct {
	Format      enums.TransferFormat `json:"format"`
	FileName    string               `json:"fileName,omitempty"`
	ContentType string               `json:"contentType"`
	Text        string               `json:"text,omitempty"`
	Reference   string               `json:"reference,omitempty"`
	// StoredName is the unique name under which the sink keeps the file;
	// FileName stays the descriptive download name.
	StoredName  string               `json:"storedName,omitempty"`
	Count       int                  `json:"count"`
	Description string               `json:"description,omitempty"`
	Data        []byte               `json:"-"`
}

// IsFile reports whether the artifact is a file rather than an in-memory text.
func (a Artifact) IsFile() bool {
	return a.Format != enums.FormatText
}

// ServiceParams groups dependencies for the export service.
type ServiceParams struct {
	Sink    storage.Sink
	Tokens  transfer.Tokens
	Metrics *metrics.TransferMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

// Service renders contacts into shareable artifacts.
type Service interface {
	Render(ctx context.Context, req Request) (Artifact, error)
	Export(ctx context.Context, req Request) (Artifact, error)
	RenderContact(ctx context.Context, c contacts.Contact, format enums.TransferFormat) (Artifact, error)
	ExportContact(ctx context.Context, c contacts.Contact, format enums.TransferFormat) (Artifact, error)
	ScanCode(ctx context.Context, c contacts.Contact) (string, error)
}

type service struct {
	sink    storage.Sink
	tokens  transfer.Tokens
	metrics *metrics.TransferMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds an export service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Sink == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artifact sink is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	tokens := params.Tokens
	if tokens.Yes == "" || tokens.No == "" {
		tokens = transfer.DefaultTokens()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		sink:    params.Sink,
		tokens:  tokens,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

// Render encodes a list without storing anything.
func (s *service) Render(_ context.Context, req Request) (Artifact, error) {
	if !req.Format.IsExportable() {
		return Artifact{}, pkgerrors.Newf(pkgerrors.CodeUnsupportedFormat, "format %q cannot be exported", req.Format)
	}
	exportedAt := s.now()
	artifact := Artifact{
		Format:      req.Format,
		ContentType: req.Format.ContentType(),
		Count:       len(req.Contacts),
		Description: req.Description,
	}

	switch req.Format {
	case enums.FormatText:
		artifact.Text = transfer.EncodeText(req.Contacts, req.Description, exportedAt)
		return artifact, nil
	case enums.FormatCSV:
		artifact.Data = transfer.EncodeCSV(transfer.FromContacts(req.Contacts), req.Description, exportedAt, s.tokens)
	case enums.FormatJSON:
		data, err := transfer.EncodeListJSON(transfer.FromContacts(req.Contacts), req.Description, exportedAt)
		if err != nil {
			return Artifact{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode json export")
		}
		artifact.Data = data
	}
	artifact.FileName = transfer.FileName(req.Description, len(req.Contacts), exportedAt, req.Format)
	return artifact, nil
}

// Export renders a list and stores file artifacts in the sink. On any failure
// no artifact is returned.
func (s *service) Export(ctx context.Context, req Request) (Artifact, error) {
	artifact, err := s.Render(ctx, req)
	if err != nil {
		s.metrics.Export(req.Format.String(), metrics.OutcomeFailure)
		return Artifact{}, err
	}
	return s.store(ctx, artifact)
}

// RenderContact encodes one contact: the single JSON envelope or the text card.
func (s *service) RenderContact(_ context.Context, c contacts.Contact, format enums.TransferFormat) (Artifact, error) {
	artifact := Artifact{Format: format, ContentType: format.ContentType(), Count: 1}
	switch format {
	case enums.FormatText:
		artifact.Text = transfer.EncodeContactText(c)
	case enums.FormatJSON:
		data, err := transfer.EncodeContactJSON(transfer.FromContact(c), s.now())
		if err != nil {
			return Artifact{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode contact export")
		}
		artifact.Data = data
		artifact.FileName = transfer.ContactFileName(c.Name)
	default:
		return Artifact{}, pkgerrors.Newf(pkgerrors.CodeUnsupportedFormat, "format %q is not available for a single contact", format)
	}
	return artifact, nil
}

func (s *service) ExportContact(ctx context.Context, c contacts.Contact, format enums.TransferFormat) (Artifact, error) {
	artifact, err := s.RenderContact(ctx, c, format)
	if err != nil {
		s.metrics.Export(format.String(), metrics.OutcomeFailure)
		return Artifact{}, err
	}
	return s.store(ctx, artifact)
}

// ScanCode returns the payload to embed in a scannable code for one contact.
func (s *service) ScanCode(_ context.Context, c contacts.Contact) (string, error) {
	payload, err := transfer.EncodeScanCode(transfer.FromContact(c))
	if err != nil {
		s.metrics.Export(enums.FormatScan.String(), metrics.OutcomeFailure)
		return "", err
	}
	s.metrics.Export(enums.FormatScan.String(), metrics.OutcomeSuccess)
	return payload, nil
}

func (s *service) store(ctx context.Context, artifact Artifact) (Artifact, error) {
	if !artifact.IsFile() {
		s.metrics.Export(artifact.Format.String(), metrics.OutcomeSuccess)
		return artifact, nil
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"format":    artifact.Format.String(),
		"file_name": artifact.FileName,
		"count":     artifact.Count,
	})
	stored := storage.UniqueName(artifact.FileName)
	ref, err := s.sink.Put(ctx, stored, artifact.ContentType, artifact.Data)
	if err != nil {
		s.logg.Error(ctx, "export.store_failed", err)
		s.metrics.Export(artifact.Format.String(), metrics.OutcomeFailure)
		return Artifact{}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "store export artifact")
	}
	artifact.Reference = ref
	artifact.StoredName = stored
	s.logg.Info(s.logg.WithField(ctx, "reference", ref), "export.stored")
	s.metrics.Export(artifact.Format.String(), metrics.OutcomeSuccess)
	return artifact, nil
}
