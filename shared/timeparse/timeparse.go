// Package timeparse adapts timestamps coming back from
// the booking core API. Some endpoints emit a locale-specific
// "dd/mm/yyyy HH:mm:ss" string, others RFC3339; callers must never have to
// care which one they got.
package timeparse

import (
	"time"
	"unibook/shared/constant"
	"unibook/shared/timezone"
)

// NotAvailable is what unparsable backend timestamps render as.
const NotAvailable = "N/A"

// Backend parses a raw backend timestamp. The legacy locale format is tried
// first, then RFC3339, then a bare date. ok is false when no format matches;
// the zero time is returned and the value should render as NotAvailable
// rather than propagate as an error.
func Backend(raw string) (t time.Time, ok bool) {
	if raw == "" {
		return time.Time{}, false
	}

	if t, err := timezone.Parse(constant.BackendLegacyFormat, raw); err == nil {
		return t, true
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return timezone.ToAppTime(t), true
	}

	if t, err := timezone.Parse(constant.DayFormat, raw); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// FormatBackend renders a raw backend timestamp for responses, falling back
// to NotAvailable when the value cannot be parsed.
func FormatBackend(raw, layout string) string {
	t, ok := Backend(raw)
	if !ok {
		return NotAvailable
	}

	return timezone.Format(t, layout)
}
