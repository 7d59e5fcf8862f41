package model

const (
	EntityName = "booking"

	FieldStatus     = "status"
	FieldCampus     = "campus"
	FieldCategory   = "category"
	FieldFacilityID = "facility_id"
	FieldRequester  = "requester_id"
	FieldSearch     = "search"
)

// PresenceRecord is the check-in or check-out evidence for a booking: at
// least one photo on the media host plus an optional note.
type PresenceRecord struct {
	AtRaw     string   `json:"at"`
	Note      string   `json:"note,omitempty"`
	ImageURLs []string `json:"image_urls"`
}

// Feedback is the post-use review, attachable once per completed booking.
type Feedback struct {
	Rating           int    `json:"rating"`
	Comments         string `json:"comments,omitempty"`
	ReportIssue      bool   `json:"report_issue"`
	IssueDescription string `json:"issue_description,omitempty"`
}

// Booking is the booking core's record of one request to occupy a time slot.
// Raw timestamp fields keep the backend's string form; presentation goes
// through the timeparse adapter because older endpoints emit a locale format.
type Booking struct {
	ID             string `json:"id"`
	RequesterID    string `json:"requester_id"`
	RequesterName  string `json:"requester_name,omitempty"`
	RequesterEmail string `json:"requester_email,omitempty"`

	FacilityID   string `json:"facility_id"`
	FacilityName string `json:"facility_name,omitempty"`
	Campus       string `json:"campus,omitempty"`
	Category     string `json:"category,omitempty"`

	TimeSlotID string `json:"time_slot_id,omitempty"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`

	Purpose             string            `json:"purpose"`
	AttendeeCount       int               `json:"attendee_count"`
	EquipmentRequests   []string          `json:"equipment_requests,omitempty"`
	SpecialRequirements map[string]string `json:"special_requirements,omitempty"`

	Status        Status `json:"status"`
	RejectReason  string `json:"reject_reason,omitempty"`
	ApproverID    string `json:"approver_id,omitempty"`
	ApprovedAtRaw string `json:"approved_at,omitempty"`
	CreatedAtRaw  string `json:"created_at,omitempty"`

	CheckIn  *PresenceRecord `json:"check_in,omitempty"`
	CheckOut *PresenceRecord `json:"check_out,omitempty"`
	Feedback *Feedback       `json:"feedback,omitempty"`
}

// OwnedBy reports whether the record belongs to the given requester.
func (b *Booking) OwnedBy(userID string) bool {
	return b.RequesterID != "" && b.RequesterID == userID
}

// CheckedIn reports whether presence capture has started for this booking.
func (b *Booking) CheckedIn() bool {
	return b.CheckIn != nil && len(b.CheckIn.ImageURLs) > 0
}
