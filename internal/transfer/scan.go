package transfer

import (
	"encoding/json"
	"strings"

	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/tidwall/gjson"
)

// EncodeScanCode renders the compact payload embedded in a scan code.
func EncodeScanCode(cd ContactData) (string, error) {
	envelope := ScanEnvelope{
		Type:    ScanCodeType,
		Version: FormatVersion,
		Data:    normalizeForWire([]ContactData{cd})[0],
	}
	buf, err := json.Marshal(envelope)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode scan code")
	}
	return string(buf), nil
}

// DecodeScanCode validates the discriminator and extracts the contact.
func DecodeScanCode(payload string) (ContactData, error) {
	payload = strings.TrimSpace(payload)
	if !gjson.Valid(payload) {
		return ContactData{}, pkgerrors.New(pkgerrors.CodeUnsupportedFormat, "scan code not recognized")
	}
	root := gjson.Parse(payload)
	if root.Get("type").String() != ScanCodeType {
		return ContactData{}, pkgerrors.New(pkgerrors.CodeUnsupportedFormat, "scan code not recognized").
			WithDetails(map[string]any{"type": root.Get("type").String()})
	}
	cd, ok := extractContact(root.Get("data"))
	if !ok {
		return ContactData{}, pkgerrors.New(pkgerrors.CodeInvalidFormat, "scan code is missing name or job title")
	}
	return cd, nil
}
