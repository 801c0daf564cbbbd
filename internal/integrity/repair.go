package integrity

import (
	"strconv"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/google/uuid"
)

// Fix names one kind of correction applied to a contact.
type Fix string

const (
	FixDuplicateLocations Fix = "duplicate_locations"
	FixMissingPrimary     Fix = "missing_primary"
	FixMultiplePrimary    Fix = "multiple_primary"
	FixDefaultLocation    Fix = "default_location"
)

// Repair is the corrected location list of one contact.
type Repair struct {
	Locations []contacts.Location
	// Removed holds the ids of duplicate locations to delete.
	Removed []uuid.UUID
	Fixes   []Fix
}

func (r Repair) Changed() bool {
	return len(r.Fixes) > 0
}

// RepairLocations applies the three integrity rules in order: drop
// structurally identical locations keeping the first, leave exactly one
// primary (the first location when none or several are flagged), and add the
// default location to an empty list.
func RepairLocations(locs []contacts.Location) Repair {
	var r Repair

	seen := make(map[string]struct{}, len(locs))
	for _, loc := range locs {
		key := structuralKey(loc)
		if _, dup := seen[key]; dup {
			r.Removed = append(r.Removed, loc.ID)
			continue
		}
		seen[key] = struct{}{}
		r.Locations = append(r.Locations, loc)
	}
	if len(r.Removed) > 0 {
		r.Fixes = append(r.Fixes, FixDuplicateLocations)
	}

	primaries := 0
	for _, loc := range r.Locations {
		if loc.IsPrimary {
			primaries++
		}
	}
	switch {
	case primaries == 0 && len(r.Locations) > 0:
		r.Locations[0].IsPrimary = true
		r.Fixes = append(r.Fixes, FixMissingPrimary)
	case primaries > 1:
		for i := range r.Locations {
			r.Locations[i].IsPrimary = i == 0
		}
		r.Fixes = append(r.Fixes, FixMultiplePrimary)
	}

	if len(r.Locations) == 0 {
		r.Locations = []contacts.Location{contacts.DefaultLocation()}
		r.Fixes = append(r.Fixes, FixDefaultLocation)
	}
	return r
}

// structuralKey identifies a location by everything but its identity and
// primary flag.
func structuralKey(loc contacts.Location) string {
	region := ""
	if loc.Region != nil {
		region = *loc.Region
	}
	return loc.Country + "|" + region + "|" +
		strconv.FormatBool(loc.HasVehicle) + "|" +
		strconv.FormatBool(loc.IsHoused) + "|" +
		strconv.FormatBool(loc.IsLocalResident)
}
