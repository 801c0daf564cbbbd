package integrity

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/pkg/db/models"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/angelmondragon/mycrew-backend/pkg/metrics"
)

func loc(country string, primary bool) contacts.Location {
	return contacts.Location{ID: uuid.New(), Country: country, IsPrimary: primary}
}

func TestRepairLocationsDropsStructuralDuplicates(t *testing.T) {
	a := loc("France", false)
	b := loc("France", true) // same key as a, primary flag ignored
	c := loc("Belgique", false)

	r := RepairLocations([]contacts.Location{a, b, c})
	require.Len(t, r.Locations, 2)
	assert.Equal(t, a.ID, r.Locations[0].ID)
	assert.Equal(t, c.ID, r.Locations[1].ID)
	assert.Equal(t, []uuid.UUID{b.ID}, r.Removed)
	assert.True(t, r.Locations[0].IsPrimary)
	assert.Equal(t, []Fix{FixDuplicateLocations, FixMissingPrimary}, r.Fixes)
}

func TestRepairLocationsMultiplePrimariesKeepsFirstLocation(t *testing.T) {
	r := RepairLocations([]contacts.Location{loc("Suisse", false), loc("France", true), loc("Espagne", true)})
	require.Len(t, r.Locations, 3)
	assert.True(t, r.Locations[0].IsPrimary)
	assert.False(t, r.Locations[1].IsPrimary)
	assert.False(t, r.Locations[2].IsPrimary)
	assert.Equal(t, []Fix{FixMultiplePrimary}, r.Fixes)
}

func TestRepairLocationsEmptyGetsDefault(t *testing.T) {
	r := RepairLocations(nil)
	require.Len(t, r.Locations, 1)
	assert.Equal(t, enums.CountryWorldwide, r.Locations[0].Country)
	assert.True(t, r.Locations[0].IsPrimary)
	assert.Equal(t, []Fix{FixDefaultLocation}, r.Fixes)
}

func TestRepairLocationsHealthyListUnchanged(t *testing.T) {
	r := RepairLocations([]contacts.Location{loc("France", true), loc("Belgique", false)})
	assert.False(t, r.Changed())
	assert.Empty(t, r.Removed)
}

func TestRepairLocationsIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	countries := []string{"France", "Belgique", "Suisse"}
	for i := 0; i < 200; i++ {
		var locs []contacts.Location
		for j := rng.Intn(5); j > 0; j-- {
			l := loc(countries[rng.Intn(len(countries))], rng.Intn(2) == 0)
			l.HasVehicle = rng.Intn(2) == 0
			locs = append(locs, l)
		}
		first := RepairLocations(locs)
		second := RepairLocations(first.Locations)
		require.False(t, second.Changed(), "case %d", i)

		primaries := 0
		for _, l := range first.Locations {
			if l.IsPrimary {
				primaries++
			}
		}
		require.Equal(t, 1, primaries, "case %d", i)
	}
}

func newSweeper(t *testing.T) (*Sweeper, *contacts.Repository) {
	t.Helper()
	sweeper, repo, _ := newSweeperWithConn(t)
	return sweeper, repo
}

func newSweeperWithConn(t *testing.T) (*Sweeper, *contacts.Repository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	repo := contacts.NewRepository(conn)
	sweeper, err := NewSweeper(SweeperParams{
		Repo:    repo,
		Metrics: metrics.NewTransferMetrics(prometheus.NewRegistry()),
		Logger:  logger.Nop(),
	})
	require.NoError(t, err)
	return sweeper, repo, conn
}

func insertRaw(t *testing.T, repo *contacts.Repository, c contacts.Contact) {
	t.Helper()
	require.NoError(t, repo.Write(context.Background(), func(tx *contacts.Repository) error {
		return tx.Insert(context.Background(), c)
	}))
}

func TestSweeperRepairsStoreAndIsIdempotent(t *testing.T) {
	sweeper, repo := newSweeper(t)
	ctx := context.Background()

	dupA, dupB := loc("France", true), loc("France", true)
	broken := contacts.Contact{ID: uuid.New(), Name: "Broken", JobTitle: "Monteur Image",
		Locations: []contacts.Location{dupA, dupB, loc("Belgique", true)}}
	empty := contacts.Contact{ID: uuid.New(), Name: "Empty", JobTitle: "Monteur Image"}
	healthy := contacts.Contact{ID: uuid.New(), Name: "Healthy", JobTitle: "Monteur Image",
		Locations: []contacts.Location{loc("Suisse", true)}}
	insertRaw(t, repo, broken)
	insertRaw(t, repo, empty)
	insertRaw(t, repo, healthy)

	report, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.Repaired)
	assert.Equal(t, 1, report.RemovedLocations)
	assert.Equal(t, 1, report.Fixes[FixDefaultLocation])
	assert.Equal(t, 1, report.Fixes[FixMultiplePrimary])

	after, err := repo.List(ctx)
	require.NoError(t, err)
	byName := map[string]contacts.Contact{}
	for _, c := range after {
		byName[c.Name] = c
	}

	require.Len(t, byName["Broken"].Locations, 2)
	assert.Equal(t, dupA.ID, byName["Broken"].Locations[0].ID)
	assert.True(t, byName["Broken"].Locations[0].IsPrimary)
	assert.False(t, byName["Broken"].Locations[1].IsPrimary)

	require.Len(t, byName["Empty"].Locations, 1)
	assert.Equal(t, enums.CountryWorldwide, byName["Empty"].Locations[0].Country)

	assert.Equal(t, healthy.Locations[0].ID, byName["Healthy"].Locations[0].ID)

	second, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Repaired)

	again, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, after, again)
}

func TestSweeperStopsOnCancelledContext(t *testing.T) {
	sweeper, repo := newSweeper(t)
	insertRaw(t, repo, contacts.Contact{ID: uuid.New(), Name: "A", JobTitle: "Monteur Image"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sweeper.Run(ctx)
	require.Error(t, err)
}

func TestSweeperKeepsEditMadeAfterSnapshot(t *testing.T) {
	sweeper, repo, conn := newSweeperWithConn(t)
	ctx := context.Background()

	id := uuid.New()
	insertRaw(t, repo, contacts.Contact{ID: id, Name: "Edited", JobTitle: "Monteur Image",
		Locations: []contacts.Location{loc("France", true), loc("Belgique", true)}})

	// Once the sweep has loaded its snapshot, the user saves a new location
	// list through the normal write path.
	suisse := loc("Suisse", true)
	edited := false
	require.NoError(t, conn.Callback().Query().After("gorm:query").Register("test:concurrent_edit", func(tx *gorm.DB) {
		if edited || tx.Statement.Table != "work_locations" {
			return
		}
		edited = true
		require.NoError(t, repo.Write(ctx, func(w *contacts.Repository) error {
			return w.ReplaceLocations(ctx, id, []contacts.Location{suisse})
		}))
	}))

	report, err := sweeper.Run(ctx)
	require.NoError(t, err)
	require.True(t, edited)
	assert.Equal(t, 1, report.Scanned)
	assert.Zero(t, report.Repaired)

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "Suisse", got.Locations[0].Country)
	assert.True(t, got.Locations[0].IsPrimary)
}

func TestSweeperSkipsContactDeletedAfterSnapshot(t *testing.T) {
	sweeper, repo, conn := newSweeperWithConn(t)
	ctx := context.Background()

	id := uuid.New()
	insertRaw(t, repo, contacts.Contact{ID: id, Name: "Gone", JobTitle: "Monteur Image"})

	deleted := false
	require.NoError(t, conn.Callback().Query().After("gorm:query").Register("test:concurrent_delete", func(tx *gorm.DB) {
		if deleted || tx.Statement.Table != "work_locations" {
			return
		}
		deleted = true
		require.NoError(t, repo.Write(ctx, func(w *contacts.Repository) error {
			return w.Delete(ctx, id)
		}))
	}))

	report, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Failed)
	assert.Zero(t, report.Repaired)
}
