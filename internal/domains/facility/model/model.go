package model

import "fmt"

const (
	EntityName = "facility"

	FieldID       = "facility_id"
	FieldCampus   = "campus"
	FieldCategory = "category"
	FieldSearch   = "search"
)

var Campuses = []string{"HCM", "NVH"}

var Categories = []string{
	"Lab", "Meeting", "Sport", "Hall", "Academic",
	"Teaching", "Administrative", "Sports", "Research",
}

// OperatingHours is the daily bookable window, local time "HH:MM".
type OperatingHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Facility is a read-only projection of a bookable resource owned by the
// booking core API. The workflow never mutates facilities.
type Facility struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Campus           string         `json:"campus"`
	Category         string         `json:"category"`
	Capacity         int            `json:"capacity"`
	OperatingHours   OperatingHours `json:"operating_hours"`
	Amenities        []string       `json:"amenities"`
	UnderMaintenance bool           `json:"under_maintenance"`
	UpdatedAtRaw     string         `json:"updated_at"`
}

// Validate enforces the catalog invariants on data fetched from upstream.
// A facility that violates them is treated as corrupt, not rendered.
func (f *Facility) Validate() error {
	if f.Capacity <= 0 {
		return fmt.Errorf("facility %s has non-positive capacity %d", f.ID, f.Capacity)
	}

	if f.OperatingHours.Open >= f.OperatingHours.Close {
		return fmt.Errorf("facility %s operating hours are inverted (%s-%s)",
			f.ID, f.OperatingHours.Open, f.OperatingHours.Close)
	}

	return nil
}

// BookableEquipment returns the amenities a requester may ask for: the
// facility's amenity list minus always-on utilities such as Wi-Fi.
func (f *Facility) BookableEquipment(alwaysOn []string) []string {
	utilities := make(map[string]struct{}, len(alwaysOn))
	for _, u := range alwaysOn {
		utilities[u] = struct{}{}
	}

	equipment := make([]string, 0, len(f.Amenities))

	for _, amenity := range f.Amenities {
		if _, ok := utilities[amenity]; ok {
			continue
		}

		equipment = append(equipment, amenity)
	}

	return equipment
}
