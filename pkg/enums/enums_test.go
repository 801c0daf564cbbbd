package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobVocabulary(t *testing.T) {
	jobs := AllJobs()
	require.NotEmpty(t, jobs)
	assert.NotContains(t, jobs, DefaultJob)
	assert.True(t, IsValidJob(DefaultJob))
	assert.False(t, IsStandardJob(DefaultJob))
	assert.True(t, IsStandardJob("Chef opérateur"))
	assert.Equal(t, "Image", DepartmentOf("Chef opérateur"))
	assert.Equal(t, "", DepartmentOf("Astronaute"))
	assert.Len(t, Departments(), 11)
}

func TestSortLocalizedIgnoresCaseAndAccents(t *testing.T) {
	values := []string{"Électro", "zoé", "Alice", "edouard"}
	SortLocalized(values)
	assert.Equal(t, []string{"Alice", "edouard", "Électro", "zoé"}, values)
}

func TestCountriesAndRegions(t *testing.T) {
	assert.Equal(t, CountryWorldwide, Countries()[0])
	assert.Len(t, Countries(), 19)
	assert.Len(t, FrenchRegions(), 17)
	assert.True(t, IsValidCountry("Belgique"))
	assert.False(t, IsValidCountry("Atlantis"))
	assert.True(t, IsFrenchRegion("Bretagne"))
}

func TestFormats(t *testing.T) {
	f, ok := FormatFromExtension(".VCF")
	require.True(t, ok)
	assert.Equal(t, FormatVCard, f)

	_, ok = FormatFromExtension("xlsx")
	assert.False(t, ok)

	got, err := ParseExportFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, got)

	_, err = ParseExportFormat("vcard")
	assert.Error(t, err)

	d, err := ParseImportDecision("Continue")
	require.NoError(t, err)
	assert.Equal(t, ImportDecisionContinue, d)
}
