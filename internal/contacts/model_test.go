package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPrimaryLocationFallsBackToFirst(t *testing.T) {
	c := Contact{Locations: []Location{
		{Country: "Belgique"},
		{Country: "France", Region: strPtr("Bretagne")},
	}}
	primary, ok := c.PrimaryLocation()
	require.True(t, ok)
	assert.Equal(t, "Belgique", primary.Country)
	assert.Len(t, c.SecondaryLocations(), 1)
	assert.Equal(t, "Belgique", c.DisplayCity())

	c.Locations[1].IsPrimary = true
	primary, _ = c.PrimaryLocation()
	assert.Equal(t, "France", primary.Country)
	assert.Equal(t, "France / Bretagne", c.DisplayCity())
	secondary := c.SecondaryLocations()
	require.Len(t, secondary, 1)
	assert.Equal(t, "Belgique", secondary[0].Country)
}

func TestContactWithoutLocations(t *testing.T) {
	c := Contact{Name: "Solo"}
	_, ok := c.PrimaryLocation()
	assert.False(t, ok)
	assert.Empty(t, c.SecondaryLocations())
	assert.Equal(t, UnspecifiedCity, c.DisplayCity())
}

func TestLocationAttributes(t *testing.T) {
	loc := Location{HasVehicle: true, IsLocalResident: true}
	assert.Equal(t, []string{"Véhiculé", "Résidence fiscale"}, loc.Attributes())
	assert.Empty(t, Location{}.Attributes())
}

func TestEnsurePrimary(t *testing.T) {
	out, changed := EnsurePrimary([]Location{{Country: "A"}, {Country: "B"}})
	assert.True(t, changed)
	assert.True(t, out[0].IsPrimary)
	assert.False(t, out[1].IsPrimary)

	out, changed = EnsurePrimary([]Location{{Country: "A"}, {Country: "B", IsPrimary: true}, {Country: "C", IsPrimary: true}})
	assert.True(t, changed)
	assert.False(t, out[0].IsPrimary)
	assert.True(t, out[1].IsPrimary)
	assert.False(t, out[2].IsPrimary)

	_, changed = EnsurePrimary(out)
	assert.False(t, changed)

	out, changed = EnsurePrimary(nil)
	assert.False(t, changed)
	assert.Empty(t, out)
}

func TestNormalizeLocations(t *testing.T) {
	out := NormalizeLocations(nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Worldwide", out[0].Country)
	assert.True(t, out[0].IsPrimary)

	out = NormalizeLocations([]Location{
		{Country: " Belgique ", Region: strPtr("Bretagne")},
		{Country: "France", Region: strPtr("  ")},
		{Country: "France", Region: strPtr(" Corse ")},
	})
	require.Len(t, out, 3)
	assert.Equal(t, "Belgique", out[0].Country)
	assert.Nil(t, out[0].Region)
	assert.Nil(t, out[1].Region)
	assert.Equal(t, "Corse", *out[2].Region)
	assert.True(t, out[0].IsPrimary)
}

func TestDraftRoundTrip(t *testing.T) {
	c := Contact{
		Name:     "Marie Martin",
		JobTitle: "Chef opérateur",
		Locations: []Location{
			{Country: "France", Region: strPtr("Bretagne"), HasVehicle: true, IsPrimary: true},
		},
	}
	d := c.Draft()
	d.Name = "Marie M."
	copyBack := d.Contact(c.ID)
	assert.Equal(t, "Marie Martin", c.Name)
	assert.Equal(t, "Marie M.", copyBack.Name)
	require.Len(t, copyBack.Locations, 1)
	assert.NotEqual(t, c.Locations[0].ID, copyBack.Locations[0].ID)
	assert.True(t, copyBack.Locations[0].HasVehicle)
}

func TestSortFavoritesFirstThenName(t *testing.T) {
	list := []Contact{
		{Name: "zoé"},
		{Name: "Élodie"},
		{Name: "bruno", IsFavorite: true},
		{Name: "Alice"},
		{Name: "Yann", IsFavorite: true},
	}
	Sort(list)
	var names []string
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"bruno", "Yann", "Alice", "Élodie", "zoé"}, names)
}

func TestGroupByInitial(t *testing.T) {
	list := []Contact{{Name: "bruno"}, {Name: "Alice"}, {Name: "Benoit"}, {Name: "  "}}
	groups := GroupByInitial(list)
	require.Len(t, groups, 3)
	assert.Equal(t, "#", groups[0].Letter)
	assert.Equal(t, "A", groups[1].Letter)
	assert.Equal(t, "B", groups[2].Letter)
	require.Len(t, groups[2].Contacts, 2)
	assert.Equal(t, "bruno", groups[2].Contacts[0].Name)
}
