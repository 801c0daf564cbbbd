package transfer

import (
	"bytes"
	"encoding/json"
	"time"

	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/tidwall/gjson"
)

// Shape tells which JSON structure a payload was decoded from.
type Shape string

const (
	ShapeBatch  Shape = "batch"
	ShapeSingle Shape = "single"
	ShapeManual Shape = "manual"
)

// Decoded is the outcome of parsing a JSON payload.
type Decoded struct {
	Shape    Shape
	Contacts []ContactData
	// Skipped counts records dropped by the tolerant extraction.
	Skipped int
}

// EncodeListJSON renders a pretty-printed batch envelope.
func EncodeListJSON(list []ContactData, description string, exportedAt time.Time) ([]byte, error) {
	if list == nil {
		list = []ContactData{}
	}
	envelope := ContactListExport{
		Version:           FormatVersion,
		ExportDate:        ExportDate{exportedAt},
		TotalContacts:     len(list),
		FilterDescription: description,
		Contacts:          normalizeForWire(list),
	}
	return marshalPretty(envelope)
}

// EncodeContactJSON renders a pretty-printed single-contact envelope.
func EncodeContactJSON(cd ContactData, exportedAt time.Time) ([]byte, error) {
	envelope := ContactExportData{
		Version:    FormatVersion,
		ExportDate: ExportDate{exportedAt},
		Contact:    normalizeForWire([]ContactData{cd})[0],
	}
	return marshalPretty(envelope)
}

func marshalPretty(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// normalizeForWire makes empty location lists encode as [] rather than null.
func normalizeForWire(list []ContactData) []ContactData {
	out := make([]ContactData, len(list))
	for i, cd := range list {
		if cd.Locations == nil {
			cd.Locations = []LocationData{}
		}
		out[i] = cd
	}
	return out
}

var (
	contactKeys  = []string{"name", "jobTitle", "phone", "email", "notes", "isFavorite", "locations"}
	locationKeys = []string{"country", "isLocalResident", "hasVehicle", "isHoused", "isPrimary"}
)

// DecodeJSON parses a batch envelope, then a single-contact envelope, then
// falls back to extracting contacts field by field. Records without a name or
// job title are skipped by the fallback. A payload that yields nothing is an
// invalid format.
func DecodeJSON(data []byte) (Decoded, error) {
	if !gjson.ValidBytes(data) {
		return Decoded{}, pkgerrors.New(pkgerrors.CodeInvalidFormat, "file is not valid JSON")
	}
	root := gjson.ParseBytes(data)

	if list, ok := decodeBatch(root); ok {
		return Decoded{Shape: ShapeBatch, Contacts: list}, nil
	}
	if cd, ok := decodeSingle(root); ok {
		return Decoded{Shape: ShapeSingle, Contacts: []ContactData{cd}}, nil
	}

	list, skipped := extractManual(root)
	if len(list) == 0 {
		return Decoded{}, pkgerrors.New(pkgerrors.CodeInvalidFormat, "no contact found in JSON payload").
			WithDetails(map[string]any{"skipped": skipped})
	}
	return Decoded{Shape: ShapeManual, Contacts: list, Skipped: skipped}, nil
}

func decodeBatch(root gjson.Result) ([]ContactData, bool) {
	if !root.IsObject() || !hasKeys(root, "version", "exportDate", "totalContacts", "filterDescription") {
		return nil, false
	}
	items := root.Get("contacts")
	if !items.IsArray() {
		return nil, false
	}
	for _, item := range items.Array() {
		if !isStrictContact(item) {
			return nil, false
		}
	}
	var envelope ContactListExport
	if err := json.Unmarshal([]byte(root.Raw), &envelope); err != nil {
		return nil, false
	}
	if envelope.Contacts == nil {
		envelope.Contacts = []ContactData{}
	}
	return envelope.Contacts, true
}

func decodeSingle(root gjson.Result) (ContactData, bool) {
	if !root.IsObject() || !hasKeys(root, "version", "exportDate") {
		return ContactData{}, false
	}
	item := root.Get("contact")
	if !isStrictContact(item) {
		return ContactData{}, false
	}
	var envelope ContactExportData
	if err := json.Unmarshal([]byte(root.Raw), &envelope); err != nil {
		return ContactData{}, false
	}
	return envelope.Contact, true
}

func isStrictContact(item gjson.Result) bool {
	if !item.IsObject() || !hasKeys(item, contactKeys...) {
		return false
	}
	if item.Get("name").Type != gjson.String || item.Get("jobTitle").Type != gjson.String {
		return false
	}
	locs := item.Get("locations")
	if !locs.IsArray() {
		return false
	}
	for _, loc := range locs.Array() {
		if !loc.IsObject() || !hasKeys(loc, locationKeys...) {
			return false
		}
	}
	return true
}

func hasKeys(obj gjson.Result, keys ...string) bool {
	for _, key := range keys {
		if !obj.Get(key).Exists() {
			return false
		}
	}
	return true
}

// extractManual walks whatever structure holds contact-like objects: a
// "contacts" array, a "contact" or "data" object, a bare array, or the root
// object itself.
func extractManual(root gjson.Result) ([]ContactData, int) {
	var candidates []gjson.Result
	switch {
	case root.IsArray():
		candidates = root.Array()
	case root.Get("contacts").IsArray():
		candidates = root.Get("contacts").Array()
	case root.Get("contact").IsObject():
		candidates = []gjson.Result{root.Get("contact")}
	case root.Get("data").IsObject():
		candidates = []gjson.Result{root.Get("data")}
	case root.IsObject():
		candidates = []gjson.Result{root}
	}

	out := make([]ContactData, 0, len(candidates))
	skipped := 0
	for _, item := range candidates {
		cd, ok := extractContact(item)
		if !ok {
			skipped++
			continue
		}
		out = append(out, cd)
	}
	return out, skipped
}

func extractContact(item gjson.Result) (ContactData, bool) {
	if !item.IsObject() {
		return ContactData{}, false
	}
	name := item.Get("name")
	job := item.Get("jobTitle")
	if name.Type != gjson.String || job.Type != gjson.String {
		return ContactData{}, false
	}
	cd := ContactData{
		Name:       name.String(),
		JobTitle:   job.String(),
		Phone:      stringField(item, "phone"),
		Email:      stringField(item, "email"),
		Notes:      stringField(item, "notes"),
		IsFavorite: boolField(item, "isFavorite"),
	}
	if cd.Name == "" || cd.JobTitle == "" {
		return ContactData{}, false
	}
	for _, loc := range item.Get("locations").Array() {
		if !loc.IsObject() {
			continue
		}
		ld := LocationData{
			Country:         stringField(loc, "country"),
			IsLocalResident: boolField(loc, "isLocalResident"),
			HasVehicle:      boolField(loc, "hasVehicle"),
			IsHoused:        boolField(loc, "isHoused"),
			IsPrimary:       boolField(loc, "isPrimary"),
		}
		if region := loc.Get("region"); region.Type == gjson.String && region.String() != "" {
			r := region.String()
			ld.Region = &r
		}
		cd.Locations = append(cd.Locations, ld)
	}
	return cd, true
}

func stringField(obj gjson.Result, key string) string {
	v := obj.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return v.String()
}

func boolField(obj gjson.Result, key string) bool {
	v := obj.Get(key)
	return v.IsBool() && v.Bool()
}
