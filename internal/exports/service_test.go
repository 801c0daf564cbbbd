package exports

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/angelmondragon/mycrew-backend/pkg/metrics"
)

type memorySink struct {
	files map[string][]byte
	err   error
}

func (m *memorySink) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = data
	return "mem://" + name, nil
}

var fixedNow = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, sink *memorySink) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Sink:    sink,
		Metrics: metrics.NewTransferMetrics(prometheus.NewRegistry()),
		Logger:  logger.Nop(),
		Now:     func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc
}

func sampleContacts() []contacts.Contact {
	bretagne := "Bretagne"
	return []contacts.Contact{
		{
			ID:       uuid.New(),
			Name:     "Marie Martin",
			JobTitle: "Chef opérateur",
			Phone:    "0600000000",
			Locations: []contacts.Location{
				{ID: uuid.New(), Country: "France", Region: &bretagne, HasVehicle: true, IsPrimary: true},
				{ID: uuid.New(), Country: "Belgique"},
			},
		},
		{ID: uuid.New(), Name: "Paul Durand", JobTitle: "Monteur Image"},
	}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: logger.Nop()})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = NewService(ServiceParams{Sink: &memorySink{}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestExportTextStaysInMemory(t *testing.T) {
	sink := &memorySink{}
	svc := newTestService(t, sink)

	artifact, err := svc.Export(context.Background(), Request{
		Format:      enums.FormatText,
		Contacts:    sampleContacts(),
		Description: "Tous les contacts",
	})
	require.NoError(t, err)
	require.False(t, artifact.IsFile())
	require.Empty(t, artifact.Reference)
	require.Empty(t, sink.files)
	require.Contains(t, artifact.Text, "Marie Martin")
	require.Contains(t, artifact.Text, "Nombre de contacts: 2")
}

func TestExportCSVStoresFile(t *testing.T) {
	sink := &memorySink{}
	svc := newTestService(t, sink)

	artifact, err := svc.Export(context.Background(), Request{
		Format:      enums.FormatCSV,
		Contacts:    sampleContacts(),
		Description: "Pays: France",
	})
	require.NoError(t, err)
	require.Equal(t, "MyCrew_France_2_contacts_2025-01-15.csv", artifact.FileName)
	require.True(t, strings.HasPrefix(artifact.StoredName, "MyCrew_France_2_contacts_2025-01-15_"))
	require.True(t, strings.HasSuffix(artifact.StoredName, ".csv"))
	require.Equal(t, "mem://"+artifact.StoredName, artifact.Reference)

	stored := string(sink.files[artifact.StoredName])
	require.True(t, strings.HasPrefix(stored, "Name,JobTitle"))
	// two locations for Marie plus one empty row for Paul
	dataRows := 0
	for _, line := range strings.Split(strings.TrimSpace(stored), "\n")[1:] {
		if !strings.HasPrefix(line, "#") {
			dataRows++
		}
	}
	require.Equal(t, 3, dataRows)
}

func TestExportJSONStoresEnvelope(t *testing.T) {
	sink := &memorySink{}
	svc := newTestService(t, sink)

	artifact, err := svc.Export(context.Background(), Request{
		Format:      enums.FormatJSON,
		Contacts:    sampleContacts(),
		Description: "Tous les contacts",
	})
	require.NoError(t, err)
	require.Equal(t, "MyCrew_Tous_2_contacts_2025-01-15.json", artifact.FileName)
	require.Contains(t, string(sink.files[artifact.StoredName]), `"totalContacts": 2`)
}

func TestExportsWithSameDescriptiveNameAreStoredApart(t *testing.T) {
	sink := &memorySink{}
	svc := newTestService(t, sink)
	list := sampleContacts()

	first, err := svc.Export(context.Background(), Request{
		Format:      enums.FormatCSV,
		Contacts:    list,
		Description: `Recherche: "martin"`,
	})
	require.NoError(t, err)
	second, err := svc.Export(context.Background(), Request{
		Format:      enums.FormatCSV,
		Contacts:    []contacts.Contact{list[1], list[0]},
		Description: `Recherche: "dupont"`,
	})
	require.NoError(t, err)

	require.Equal(t, first.FileName, second.FileName)
	require.NotEqual(t, first.Reference, second.Reference)
	require.Len(t, sink.files, 2)
	require.Contains(t, string(sink.files[first.StoredName]), "martin")
	require.Contains(t, string(sink.files[second.StoredName]), "dupont")
}

func TestExportSinkFailureReturnsNoArtifact(t *testing.T) {
	svc := newTestService(t, &memorySink{err: errors.New("disk full")})

	artifact, err := svc.Export(context.Background(), Request{
		Format:   enums.FormatJSON,
		Contacts: sampleContacts(),
	})
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodePersistence))
	require.Equal(t, Artifact{}, artifact)
}

func TestExportRejectsImportOnlyFormats(t *testing.T) {
	svc := newTestService(t, &memorySink{})

	_, err := svc.Export(context.Background(), Request{Format: enums.FormatVCard})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnsupportedFormat))
}

func TestExportContactJSONUsesSingleEnvelope(t *testing.T) {
	sink := &memorySink{}
	svc := newTestService(t, sink)
	c := sampleContacts()[0]

	artifact, err := svc.ExportContact(context.Background(), c, enums.FormatJSON)
	require.NoError(t, err)
	require.Equal(t, "Contact_Marie_Martin.json", artifact.FileName)
	body := string(sink.files[artifact.StoredName])
	require.Contains(t, body, `"contact": {`)
	require.NotContains(t, body, "totalContacts")
}

func TestExportContactTextCard(t *testing.T) {
	svc := newTestService(t, &memorySink{})
	c := sampleContacts()[1]

	artifact, err := svc.ExportContact(context.Background(), c, enums.FormatText)
	require.NoError(t, err)
	require.Contains(t, artifact.Text, "FICHE CONTACT")
	require.NotContains(t, artifact.Text, "LIEUX DE TRAVAIL")
}

func TestExportContactRejectsCSV(t *testing.T) {
	svc := newTestService(t, &memorySink{})

	_, err := svc.ExportContact(context.Background(), sampleContacts()[0], enums.FormatCSV)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnsupportedFormat))
}

func TestScanCodePayload(t *testing.T) {
	svc := newTestService(t, &memorySink{})

	payload, err := svc.ScanCode(context.Background(), sampleContacts()[0])
	require.NoError(t, err)
	require.Contains(t, payload, `"type":"MyCrew_Contact"`)
	require.Contains(t, payload, `"name":"Marie Martin"`)
}
