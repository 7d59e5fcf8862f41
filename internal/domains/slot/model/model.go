package model

import "unibook/shared"

// Server-authoritative slot statuses. The client never invents one; it only
// derives render states from what the booking core returned.
const (
	StatusAvailable   = "available"
	StatusBooked      = "booked"
	StatusPending     = "pending"
	StatusMaintenance = "maintenance"
)

// Render states for grid cells. NotOffered marks an operating-hour row the
// backend returned no slot for, which is distinct from an available one.
// LeadTimeLocked overrides an available slot whose start is too close to now.
const (
	RenderAvailable      = "available"
	RenderBooked         = "booked"
	RenderPending        = "pending"
	RenderMaintenance    = "maintenance"
	RenderNotOffered     = "not_offered"
	RenderLeadTimeLocked = "lead_time_locked"
)

// Sources for a pending cell: a record the server confirmed, or a local
// optimistic hold that has not been confirmed yet.
const (
	SourceServer     = "server"
	SourceOptimistic = "optimistic"
)

// TimeSlot is one bookable interval fetched from the booking core for a
// single facility and date. Times are local "HH:MM", dates "YYYY-MM-DD".
type TimeSlot struct {
	ID         string `json:"id"`
	FacilityID string `json:"facility_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
}

// OptimisticHold marks a slot the current user just submitted a booking for,
// before the server copy of the record has been observed. Holds live in the
// cache under HoldCacheKey with a short TTL and are only ever reversed:
// they expire or are deleted, never promoted locally.
type OptimisticHold struct {
	BookingID  string `json:"booking_id"`
	FacilityID string `json:"facility_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
}

const (
	cacheFetchSlots = "slot:fetch"
	cacheHolds      = "slot:holds"
)

// FetchCacheKey keys the raw upstream slot list for one facility and date.
func FetchCacheKey(facilityID, date string) string {
	return shared.BuildCacheKey(cacheFetchSlots, facilityID, date)
}

// HoldCacheKey keys the optimistic holds for one facility and date.
func HoldCacheKey(facilityID, date string) string {
	return shared.BuildCacheKey(cacheHolds, facilityID, date)
}
