package transfer

import (
	"encoding/csv"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataRows(t *testing.T, raw []byte) [][]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(string(raw)))
	r.Comment = '#'
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows[1:]
}

func TestEncodeCSVOneRowPerLocation(t *testing.T) {
	list := sampleData()
	raw := EncodeCSV(list, "Pays: France", exportedAt, DefaultTokens())
	text := string(raw)

	lines := strings.Split(text, "\n")
	assert.Equal(t, strings.Join(CSVHeader, ","), lines[0])
	assert.Equal(t, "# Filtre: Pays: France", lines[1])
	assert.Equal(t, "# Nombre de contacts: 2", lines[2])
	assert.Equal(t, "# Date d'export: 2026-10-15", lines[3])

	rows := dataRows(t, raw)
	require.Len(t, rows, 3)
	assert.Equal(t, RowCount(list), len(rows))

	for _, row := range rows[:2] {
		assert.Equal(t, rows[0][:4], row[:4])
		assert.Equal(t, rows[0][10], row[10])
	}
	assert.Equal(t, []string{"France", "Bretagne", "Oui", "Non", "Non", "Principal"}, rows[0][4:10])
	assert.Equal(t, []string{"Belgique", "", "Non", "Oui", "Non", "Secondaire"}, rows[1][4:10])
	assert.Equal(t, []string{"", "", "", "", "", ""}, rows[2][4:10])
	assert.Contains(t, text, `"Disponible en juillet`+"\n"+`""Très"" fiable"`)
}

func TestCSVRoundTrip(t *testing.T) {
	in := sampleData()
	in[0].IsFavorite = false
	raw := EncodeCSV(in, "Tous les contacts", exportedAt, DefaultTokens())

	out, err := DecodeCSV(raw, DefaultTokens())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, "Jean Dupont", out[1].Name)
	assert.Empty(t, out[1].Locations)
}

func TestEncodeCSVKeepsDescriptionOnItsCommentLine(t *testing.T) {
	in := sampleData()
	forged := "Recherche: \"x\ny,y,y,y,y,y,y,y,y,y,y\r\nz\""
	raw := EncodeCSV(in, forged, exportedAt, DefaultTokens())

	lines := strings.Split(string(raw), "\n")
	assert.Equal(t, `# Filtre: Recherche: "x y,y,y,y,y,y,y,y,y,y,y z"`, lines[1])

	out, err := DecodeCSV(raw, DefaultTokens())
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for _, cd := range out {
		assert.NotEqual(t, "y", cd.Name)
	}
}

func TestDecodeCSVSingleRowScenario(t *testing.T) {
	raw := "Name,JobTitle,Phone,Email,Country,Region,Vehicle,Housed,TaxResident,LocationType,Notes\n" +
		`"Marie Martin","Chef opérateur","","","France","Bretagne",Oui,Non,Non,"Principal",""` + "\n"

	out, err := DecodeCSV([]byte(raw), DefaultTokens())
	require.NoError(t, err)
	require.Len(t, out, 1)
	c := out[0]
	assert.Equal(t, "Marie Martin", c.Name)
	assert.Equal(t, "Chef opérateur", c.JobTitle)
	require.Len(t, c.Locations, 1)
	loc := c.Locations[0]
	assert.Equal(t, "France", loc.Country)
	assert.Equal(t, "Bretagne", *loc.Region)
	assert.True(t, loc.HasVehicle)
	assert.False(t, loc.IsHoused)
	assert.False(t, loc.IsLocalResident)
	assert.True(t, loc.IsPrimary)
}

func TestDecodeCSVSkipsShortRowsAndMatchesTokensCaseInsensitively(t *testing.T) {
	raw := "# leading comment\n\n" +
		"Name,JobTitle,Phone,Email,Country,Region,Vehicle,Housed,TaxResident,LocationType,Notes\n" +
		"Too,Short\n" +
		"Alex,Cadreur,,,Suisse,,OUI,yes,non,Primary location\n"

	out, err := DecodeCSV([]byte(raw), DefaultTokens())
	require.NoError(t, err)
	require.Len(t, out, 1)
	loc := out[0].Locations[0]
	assert.True(t, loc.HasVehicle)
	assert.False(t, loc.IsHoused)
	assert.True(t, loc.IsPrimary)
	assert.Equal(t, "", out[0].Notes)
}

func TestDecodeCSVCustomTokens(t *testing.T) {
	tokens := Tokens{Yes: "Yes", No: "No"}
	raw := EncodeCSV(sampleData()[:1], "", exportedAt, tokens)
	assert.Contains(t, string(raw), ",Yes,No,No,")

	out, err := DecodeCSV(raw, tokens)
	require.NoError(t, err)
	assert.True(t, out[0].Locations[0].HasVehicle)
}

func TestDecodeCSVEmpty(t *testing.T) {
	_, err := DecodeCSV([]byte("# only comments\n"), DefaultTokens())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidFormat))

	_, err = DecodeCSV([]byte(strings.Join(CSVHeader, ",")+"\n"), DefaultTokens())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidFormat))
}
