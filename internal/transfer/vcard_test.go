package transfer

import (
	"testing"

	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoCards = "BEGIN:VCARD\r\n" +
	"VERSION:3.0\r\n" +
	"FN:Claire Bernard\r\n" +
	"TEL;TYPE=CELL:+33 6 11 22 33 44\r\n" +
	"EMAIL;TYPE=INTERNET:claire@example.com\r\n" +
	"ORG:Studio Nord;Image\r\n" +
	"NOTE:Rencontrée sur le tournage\r\n" +
	"END:VCARD\r\n" +
	"BEGIN:VCARD\r\n" +
	"VERSION:3.0\r\n" +
	"N:Petit;Lucas;;;\r\n" +
	"TEL:0102030405\r\n" +
	"END:VCARD\r\n"

func TestDecodeVCardMultipleRecords(t *testing.T) {
	out, err := DecodeVCard([]byte(twoCards))
	require.NoError(t, err)
	require.Len(t, out, 2)

	claire := out[0]
	assert.Equal(t, "Claire Bernard", claire.Name)
	assert.Equal(t, enums.DefaultJob, claire.JobTitle)
	assert.Equal(t, "+33 6 11 22 33 44", claire.Phone)
	assert.Equal(t, "claire@example.com", claire.Email)
	assert.Equal(t, "Rencontrée sur le tournage\nOrganisation: Studio Nord - Image\n"+VCardOriginNote, claire.Notes)
	require.Len(t, claire.Locations, 1)
	assert.Equal(t, LocationData{Country: "Worldwide", IsPrimary: true}, claire.Locations[0])

	lucas := out[1]
	assert.Equal(t, "Lucas Petit", lucas.Name)
	assert.Equal(t, "0102030405", lucas.Phone)
	assert.Equal(t, VCardOriginNote, lucas.Notes)
}

func TestDecodeVCard21BareParameters(t *testing.T) {
	raw := "BEGIN:VCARD\r\n" +
		"VERSION:2.1\r\n" +
		"N:Durand;Paul\r\n" +
		"FN:Paul Durand\r\n" +
		"TEL;CELL;VOICE:0601020304\r\n" +
		"TEL;WORK:0102030405\r\n" +
		"EMAIL;INTERNET:p@x.fr\r\n" +
		"NOTE;CHARSET=UTF-8:Régie\r\n" +
		"END:VCARD\r\n"

	out, err := DecodeVCard([]byte(raw))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Paul Durand", out[0].Name)
	assert.Equal(t, "0601020304", out[0].Phone)
	assert.Equal(t, "p@x.fr", out[0].Email)
	assert.Equal(t, "Régie\n"+VCardOriginNote, out[0].Notes)
}

func TestTypeBareParams(t *testing.T) {
	assert.Equal(t, "TEL;TYPE=CELL:06", typeBareParams("TEL;CELL:06"))
	assert.Equal(t, "TEL;TYPE=cell;PREF=1:06:07", typeBareParams("TEL;TYPE=cell;PREF=1:06:07"))
	assert.Equal(t, "FN:Paul", typeBareParams("FN:Paul"))
	assert.Equal(t, " folded;CELL:x", typeBareParams(" folded;CELL:x"))
}

func TestDecodeVCardDropsNamelessAndRepairsMissingEnd(t *testing.T) {
	raw := "BEGIN:VCARD\nVERSION:3.0\nTEL:123\nEND:VCARD\n" +
		"BEGIN:VCARD\nVERSION:3.0\nFN:Sans Fin\n"
	out, err := DecodeVCard([]byte(raw))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Sans Fin", out[0].Name)
}

func TestDecodeVCardInvalid(t *testing.T) {
	_, err := DecodeVCard([]byte("hello"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidFormat))

	_, err = DecodeVCard([]byte("BEGIN:VCARD\nTEL:1\nEND:VCARD\n"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidFormat))
}
