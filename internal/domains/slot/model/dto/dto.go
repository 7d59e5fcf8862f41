package dto

// SlotCell is one row of the availability grid. Bookable is the only field
// the booking form may trust; Status/Source exist for rendering.
type SlotCell struct {
	Label      string `json:"label"`
	TimeSlotID string `json:"time_slot_id,omitempty"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
	Source     string `json:"source,omitempty"`
	Bookable   bool   `json:"bookable"`
}

// SlotGrid is the rendered availability of one facility on one date.
type SlotGrid struct {
	FacilityID  string     `json:"facility_id"`
	Date        string     `json:"date"`
	GeneratedAt string     `json:"generated_at"`
	Cells       []SlotCell `json:"cells"`
}

// GetSlotsResponse carries one grid per requested date.
type GetSlotsResponse struct {
	Grids []SlotGrid `json:"grids"`
}
