package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocationValuesRoundTrip(t *testing.T) {
	region := "Bretagne"
	in := LocationValues{{Country: "France", Region: &region, HasVehicle: true, IsPrimary: true}}

	raw, err := in.Value()
	require.NoError(t, err)

	var out LocationValues
	require.NoError(t, out.Scan(raw))
	require.Equal(t, in, out)
}

func TestLocationValuesScanNilAndEmpty(t *testing.T) {
	var out LocationValues
	require.NoError(t, out.Scan(nil))
	require.Empty(t, out)

	require.NoError(t, out.Scan([]byte("")))
	require.Empty(t, out)

	require.Error(t, out.Scan(42))

	raw, err := LocationValues(nil).Value()
	require.NoError(t, err)
	require.Equal(t, "[]", raw)
}
