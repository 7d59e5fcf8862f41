package dto

import (
	"unibook/internal/domains/booking/model"
	"unibook/shared"
	"unibook/shared/constant"
	"unibook/shared/timeparse"
)

type CreateBookingRequest struct {
	FacilityID          string            `json:"facility_id"          validate:"required"`
	TimeSlotID          string            `json:"time_slot_id"         validate:"required"`
	Date                string            `json:"date"                 validate:"required,datetime=2006-01-02"`
	StartTime           string            `json:"start_time"           validate:"required,datetime=15:04"`
	EndTime             string            `json:"end_time"             validate:"required,datetime=15:04"`
	Purpose             string            `json:"purpose"              validate:"required,max=500"`
	AttendeeCount       int               `json:"attendee_count"       validate:"required,min=1"`
	EquipmentRequests   []string          `json:"equipment_requests"   validate:"omitempty,max=20"`
	SpecialRequirements map[string]string `json:"special_requirements" validate:"omitempty,max=20"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

const (
	BatchActionApprove = "approve"
	BatchActionReject  = "reject"
)

type BatchDecisionRequest struct {
	Action     string   `json:"action"      validate:"required,oneof=approve reject"`
	BookingIDs []string `json:"booking_ids" validate:"required,min=1,max=50"`
	Reason     string   `json:"reason"      validate:"required_if=Action reject"`
}

type FeedbackRequest struct {
	Rating           int    `json:"rating"            validate:"required,min=1,max=5"`
	Comments         string `json:"comments"          validate:"omitempty,max=1000"`
	ReportIssue      bool   `json:"report_issue"`
	IssueDescription string `json:"issue_description" validate:"required_if=ReportIssue true,omitempty,max=1000"`
}

type PresenceResponse struct {
	At        string   `json:"at"`
	Note      string   `json:"note,omitempty"`
	ImageURLs []string `json:"image_urls"`
}

type FeedbackResponse struct {
	Rating           int    `json:"rating"`
	Comments         string `json:"comments,omitempty"`
	ReportIssue      bool   `json:"report_issue"`
	IssueDescription string `json:"issue_description,omitempty"`
}

// BookingResponse is the rendered record. Source distinguishes a confirmed
// server record from a just-submitted optimistic one so callers can never
// mistake a draft for an authoritative state.
type BookingResponse struct {
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

	Status       string `json:"status"`
	Source       string `json:"source"`
	RejectReason string `json:"reject_reason,omitempty"`
	ApproverID   string `json:"approver_id,omitempty"`
	ApprovedAt   string `json:"approved_at,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`

	CheckIn  *PresenceResponse `json:"check_in,omitempty"`
	CheckOut *PresenceResponse `json:"check_out,omitempty"`
	Feedback *FeedbackResponse `json:"feedback,omitempty"`

	// Affordances the current viewer may trigger, derived from status and
	// ownership so no caller hand-rolls the state machine.
	CanCancel   bool `json:"can_cancel"`
	CanApprove  bool `json:"can_approve"`
	CanReject   bool `json:"can_reject"`
	CanCheckIn  bool `json:"can_check_in"`
	CanCheckOut bool `json:"can_check_out"`
	CanFeedback bool `json:"can_feedback"`
}

func (r *BookingResponse) FromModel(booking model.Booking, source string) {
	r.ID = booking.ID
	r.RequesterID = booking.RequesterID
	r.RequesterName = booking.RequesterName
	r.RequesterEmail = booking.RequesterEmail
	r.FacilityID = booking.FacilityID
	r.FacilityName = booking.FacilityName
	r.Campus = booking.Campus
	r.Category = booking.Category
	r.TimeSlotID = booking.TimeSlotID
	r.Date = booking.Date
	r.StartTime = booking.StartTime
	r.EndTime = booking.EndTime
	r.Purpose = booking.Purpose
	r.AttendeeCount = booking.AttendeeCount
	r.EquipmentRequests = booking.EquipmentRequests
	r.SpecialRequirements = booking.SpecialRequirements
	r.Status = string(booking.Status)
	r.Source = source
	r.RejectReason = booking.RejectReason
	r.ApproverID = booking.ApproverID
	r.ApprovedAt = formatOptional(booking.ApprovedAtRaw)
	r.CreatedAt = formatOptional(booking.CreatedAtRaw)

	if booking.CheckIn != nil {
		r.CheckIn = presenceFromModel(booking.CheckIn)
	}

	if booking.CheckOut != nil {
		r.CheckOut = presenceFromModel(booking.CheckOut)
	}

	if booking.Feedback != nil {
		r.Feedback = &FeedbackResponse{
			Rating:           booking.Feedback.Rating,
			Comments:         booking.Feedback.Comments,
			ReportIssue:      booking.Feedback.ReportIssue,
			IssueDescription: booking.Feedback.IssueDescription,
		}
	}

	r.CanCancel = booking.Status.Cancellable()
	r.CanApprove = booking.Status.Decidable()
	r.CanReject = booking.Status.Decidable()
	r.CanCheckIn = booking.Status == model.StatusApproved && !booking.CheckedIn()
	r.CanCheckOut = booking.Status == model.StatusApproved && booking.CheckedIn()
	r.CanFeedback = booking.Status == model.StatusCompleted && booking.Feedback == nil
}

func presenceFromModel(record *model.PresenceRecord) *PresenceResponse {
	return &PresenceResponse{
		At:        formatOptional(record.AtRaw),
		Note:      record.Note,
		ImageURLs: record.ImageURLs,
	}
}

// formatOptional renders a backend timestamp, keeping absent values empty
// and unparsable ones as N/A.
func formatOptional(raw string) string {
	if raw == "" {
		return ""
	}

	return timeparse.FormatBackend(raw, constant.DateFormat)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int, source string) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod, source)
	}
}

// BatchItemResult reports the outcome for one booking in a batch decision.
type BatchItemResult struct {
	BookingID string `json:"booking_id"`
	Applied   bool   `json:"applied"`
	Reason    string `json:"reason,omitempty"`
}

type BatchDecisionResponse struct {
	Action  string            `json:"action"`
	Results []BatchItemResult `json:"results"`
	Applied int               `json:"applied"`
	Skipped int               `json:"skipped"`
}
