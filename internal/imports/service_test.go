package imports

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/internal/transfer"
	"github.com/angelmondragon/mycrew-backend/pkg/db/models"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/angelmondragon/mycrew-backend/pkg/redis"
)

type fixture struct {
	svc  Service
	repo *contacts.Repository
	mr   *miniredis.Miniredis
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	pending, err := NewRedisPendingStore(redis.Wrap(raw, "test"))
	require.NoError(t, err)

	repo := contacts.NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo:       repo,
		Pending:    pending,
		PendingTTL: time.Minute,
		Logger:     logger.Nop(),
	})
	require.NoError(t, err)
	return fixture{svc: svc, repo: repo, mr: mr}
}

func (f fixture) seed(t *testing.T, name, job string) contacts.Contact {
	t.Helper()
	c := contacts.Contact{
		ID:        uuid.New(),
		Name:      name,
		JobTitle:  job,
		Notes:     "ancienne fiche",
		Locations: []contacts.Location{contacts.DefaultLocation()},
	}
	require.NoError(t, f.repo.Write(context.Background(), func(tx *contacts.Repository) error {
		return tx.Insert(context.Background(), c)
	}))
	return c
}

func (f fixture) names(t *testing.T) []string {
	t.Helper()
	list, err := f.repo.List(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Name)
	}
	return out
}

func batchJSON(t *testing.T, list ...transfer.ContactData) []byte {
	t.Helper()
	data, err := transfer.EncodeListJSON(list, "Tous les contacts", time.Now())
	require.NoError(t, err)
	return data
}

func data(name, job string) transfer.ContactData {
	return transfer.ContactData{
		Name:      name,
		JobTitle:  job,
		Locations: []transfer.LocationData{{Country: "Worldwide", IsPrimary: true}},
	}
}

func TestImportCSVScenario(t *testing.T) {
	f := newFixture(t)
	csv := "Name,JobTitle,Phone,Email,Country,Region,Vehicle,Housed,TaxResident,LocationType,Notes\n" +
		`"Marie Martin","Chef opérateur","","","France","Bretagne",Oui,Non,Non,"Principal",""` + "\n"

	res, err := f.svc.Import(context.Background(), Upload{FileName: "contacts.csv", Data: []byte(csv)})
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, res.Status)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, MessageAdded, res.Message)

	list, err := f.repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	c := list[0]
	assert.Equal(t, "Marie Martin", c.Name)
	assert.Equal(t, "Chef opérateur", c.JobTitle)
	require.Len(t, c.Locations, 1)
	loc := c.Locations[0]
	assert.True(t, loc.IsPrimary)
	assert.Equal(t, "France", loc.Country)
	require.NotNil(t, loc.Region)
	assert.Equal(t, "Bretagne", *loc.Region)
	assert.True(t, loc.HasVehicle)
	assert.False(t, loc.IsHoused)
	assert.False(t, loc.IsLocalResident)
}

func TestImportJSONWithCollisionContinue(t *testing.T) {
	f := newFixture(t)
	old := f.seed(t, "Jean Dupont", "Monteur Image")

	payload := batchJSON(t, data("jean dupont", "Chef opérateur"), data("Lucie Bernard", "Monteur Image"))
	res, err := f.svc.Import(context.Background(), Upload{FileName: "export.json", Data: payload})
	require.NoError(t, err)
	require.Equal(t, StatusAwaitingDecision, res.Status)
	require.Equal(t, []string{"jean dupont"}, res.Duplicates)
	require.NotEmpty(t, res.ImportID)
	assert.Equal(t, []string{"Jean Dupont"}, f.names(t), "nothing written before the decision")

	res, err = f.svc.Resolve(context.Background(), res.ImportID, enums.ImportDecisionContinue)
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, res.Status)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 1, res.Replaced)
	assert.Contains(t, res.Message, "remplacé")

	list, err := f.repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, c := range list {
		assert.NotEqual(t, old.ID, c.ID)
	}
	assert.ElementsMatch(t, []string{"jean dupont", "Lucie Bernard"}, f.names(t))
}

func TestImportJSONWithCollisionCancel(t *testing.T) {
	f := newFixture(t)
	old := f.seed(t, "Jean Dupont", "Monteur Image")

	payload := batchJSON(t, data("Jean Dupont", "Chef opérateur"), data("Lucie Bernard", "Monteur Image"))
	res, err := f.svc.Import(context.Background(), Upload{FileName: "export.json", Data: payload})
	require.NoError(t, err)

	res, err = f.svc.Resolve(context.Background(), res.ImportID, enums.ImportDecisionCancel)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Status)

	list, err := f.repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, old.ID, list[0].ID)
	assert.Equal(t, "ancienne fiche", list[0].Notes)

	_, err = f.svc.Resolve(context.Background(), res.ImportID, enums.ImportDecisionContinue)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "a decision is consumed once")
}

func TestResolveAsksAgainWhenNewDuplicatesAppear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "Jean Dupont", "Monteur Image")

	payload := batchJSON(t, data("Jean Dupont", "Chef opérateur"), data("Lucie Bernard", "Monteur Image"))
	res, err := f.svc.Import(ctx, Upload{FileName: "export.json", Data: payload})
	require.NoError(t, err)
	require.Equal(t, []string{"Jean Dupont"}, res.Duplicates)

	// Lucie is added by hand while the decision is pending.
	lucie := f.seed(t, "Lucie Bernard", "Monteur Image")

	again, err := f.svc.Resolve(ctx, res.ImportID, enums.ImportDecisionContinue)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingDecision, again.Status)
	assert.Equal(t, res.ImportID, again.ImportID)
	assert.Equal(t, []string{"Jean Dupont", "Lucie Bernard"}, again.Duplicates)

	list, err := f.repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2, "nothing is written until the larger list is confirmed")
	stored, err := f.repo.FindByID(ctx, lucie.ID)
	require.NoError(t, err)
	assert.Equal(t, "ancienne fiche", stored.Notes)

	done, err := f.svc.Resolve(ctx, res.ImportID, enums.ImportDecisionContinue)
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, done.Status)
	assert.Equal(t, 2, done.Replaced)
	assert.ElementsMatch(t, []string{"Jean Dupont", "Lucie Bernard"}, f.names(t))
}

func TestDuplicateDetectionIgnoresCaseAndSpaces(t *testing.T) {
	existing := []contacts.Contact{{Name: "jean dupont"}}
	got := Duplicates([]transfer.ContactData{{Name: " Jean Dupont "}, {Name: "JEAN DUPONT"}, {Name: "Autre"}}, existing)
	assert.Equal(t, []string{" Jean Dupont "}, got)
}

func TestPendingImportExpires(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Jean Dupont", "Monteur Image")

	res, err := f.svc.Import(context.Background(), Upload{FileName: "a.json", Data: batchJSON(t, data("Jean Dupont", "Monteur Image"))})
	require.NoError(t, err)
	require.NotNil(t, res.ExpiresAt)

	f.mr.FastForward(2 * time.Minute)
	_, err = f.svc.Resolve(context.Background(), res.ImportID, enums.ImportDecisionContinue)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Len(t, f.names(t), 1)
}

func TestImportRejectsUnsupportedExtension(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Import(context.Background(), Upload{FileName: "contacts.xlsx", Data: []byte("x")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnsupportedFormat))
}

func TestImportRejectsEmptyAndGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Import(context.Background(), Upload{FileName: "a.json", Data: []byte("  ")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidFormat))

	_, err = f.svc.Import(context.Background(), Upload{FileName: "a.json", Data: []byte("not json")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidFormat))
}

func TestImportVCard(t *testing.T) {
	f := newFixture(t)
	vcf := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Claire Petit\r\nTEL;TYPE=CELL:0611223344\r\nORG:Studio\r\nEND:VCARD\r\n"

	res, err := f.svc.Import(context.Background(), Upload{FileName: "claire.vcf", Data: []byte(vcf)})
	require.NoError(t, err)
	require.Equal(t, 1, res.Applied)

	list, err := f.repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, enums.DefaultJob, list[0].JobTitle)
	assert.Equal(t, "0611223344", list[0].Phone)
	assert.Contains(t, list[0].Notes, transfer.VCardOriginNote)
	require.Len(t, list[0].Locations, 1)
	assert.Equal(t, enums.CountryWorldwide, list[0].Locations[0].Country)
}

func TestImportScanCode(t *testing.T) {
	f := newFixture(t)
	cd := data("Hugo Leroy", "Monteur Image")
	cd.IsFavorite = true
	payload, err := transfer.EncodeScanCode(cd)
	require.NoError(t, err)

	res, err := f.svc.ImportScanCode(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, res.Status)

	list, err := f.repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsFavorite)

	res, err = f.svc.ImportScanCode(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingDecision, res.Status)

	_, err = f.svc.ImportScanCode(context.Background(), `{"type":"Other","version":"1.0","data":{}}`)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnsupportedFormat))
}

func TestParseMapsUnknownJobToDefault(t *testing.T) {
	parsed, err := Parse(Upload{FileName: "x.json", Data: batchJSON(t, data("Zoé", "Astronaute"))}, transfer.DefaultTokens())
	require.NoError(t, err)
	require.Len(t, parsed.Contacts, 1)
	assert.Equal(t, enums.DefaultJob, parsed.Contacts[0].JobTitle)
	assert.True(t, strings.HasSuffix(parsed.Contacts[0].Notes, "Poste d'origine: Astronaute"))
}

func TestParseSingleEnvelopeClearsFavorite(t *testing.T) {
	cd := data("Zoé", "Monteur Image")
	cd.IsFavorite = true
	payload, err := transfer.EncodeContactJSON(cd, time.Now())
	require.NoError(t, err)

	parsed, err := Parse(Upload{FileName: "Contact_Zoe.json", Data: payload}, transfer.DefaultTokens())
	require.NoError(t, err)
	require.Len(t, parsed.Contacts, 1)
	assert.False(t, parsed.Contacts[0].IsFavorite)

	batch, err := Parse(Upload{FileName: "x.json", Data: batchJSON(t, cd)}, transfer.DefaultTokens())
	require.NoError(t, err)
	assert.True(t, batch.Contacts[0].IsFavorite)
}

func TestJSONRoundTripThroughStore(t *testing.T) {
	source := newFixture(t)
	region := "Occitanie"
	original := transfer.ContactData{
		Name:       "Inès Moreau",
		JobTitle:   "Monteur Image",
		Phone:      "0700000000",
		Email:      "ines@example.com",
		Notes:      "ligne 1\nligne 2",
		IsFavorite: true,
		Locations: []transfer.LocationData{
			{Country: "France", Region: &region, HasVehicle: true, IsPrimary: true},
			{Country: "Belgique", IsHoused: true},
		},
	}
	_, err := source.svc.Import(context.Background(), Upload{FileName: "a.json", Data: batchJSON(t, original)})
	require.NoError(t, err)

	stored, err := source.repo.List(context.Background())
	require.NoError(t, err)
	exported := batchJSON(t, transfer.FromContacts(stored)...)

	target := newFixture(t)
	_, err = target.svc.Import(context.Background(), Upload{FileName: "b.json", Data: exported})
	require.NoError(t, err)
	again, err := target.repo.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, transfer.FromContacts(stored), transfer.FromContacts(again))
	assert.Equal(t, original, transfer.FromContacts(again)[0])
}

func TestResolveRejectsInvalidDecision(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Resolve(context.Background(), "x", enums.ImportDecision("maybe"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
