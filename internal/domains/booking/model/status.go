package model

import (
	"encoding/json"
	"strings"
)

// Status is the closed booking lifecycle enumeration. The booking core and
// its older endpoints emit several spellings ("PENDING", "Pending_Approval",
// "CANCELED"); Normalize is the single place they collapse into this set.
type Status string

const (
	StatusUnknown         Status = "Unknown"
	StatusPendingApproval Status = "Pending_Approval"
	StatusApproved        Status = "Approved"
	StatusRejected        Status = "Rejected"
	StatusCancelled       Status = "Cancelled"
	StatusCompleted       Status = "Completed"
	StatusNoShow          Status = "No_Show"
)

var statusAliases = map[string]Status{
	"pending_approval": StatusPendingApproval,
	"pending":          StatusPendingApproval,
	"approved":         StatusApproved,
	"confirmed":        StatusApproved,
	"rejected":         StatusRejected,
	"cancelled":        StatusCancelled,
	"canceled":         StatusCancelled,
	"completed":        StatusCompleted,
	"no_show":          StatusNoShow,
	"noshow":           StatusNoShow,
	"no-show":          StatusNoShow,
}

// KnownStatuses lists the canonical lifecycle statuses, for messages that
// name the accepted filter values.
func KnownStatuses() []string {
	return []string{
		string(StatusPendingApproval),
		string(StatusApproved),
		string(StatusRejected),
		string(StatusCancelled),
		string(StatusCompleted),
		string(StatusNoShow),
	}
}

// Normalize maps a raw backend status string onto the closed enumeration.
// Unrecognized values become StatusUnknown rather than leaking through.
func Normalize(raw string) Status {
	if status, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}

	return StatusUnknown
}

// UnmarshalJSON normalizes at the decode boundary so no raw status string
// ever reaches workflow code.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Normalize(raw)

	return nil
}

// IsTerminal reports whether no further transition can leave this status.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	default:
		return false
	}
}

// Cancellable reports whether the requester may still cancel.
func (s Status) Cancellable() bool {
	return s == StatusPendingApproval || s == StatusApproved
}

// Decidable reports whether an admin approve/reject decision still applies.
func (s Status) Decidable() bool {
	return s == StatusPendingApproval
}
