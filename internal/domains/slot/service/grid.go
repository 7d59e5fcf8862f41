package service

import (
	"fmt"
	"time"
	"unibook/internal/domains/facility/model"
	slotModel "unibook/internal/domains/slot/model"
	"unibook/internal/domains/slot/model/dto"
	"unibook/shared/constant"
	"unibook/shared/timezone"
)

// BuildGrid renders the availability grid for one facility and date. It is a
// pure transformation over already-fetched data: one cell per slot-duration
// increment between the facility's open and close times, each matched to a
// fetched slot by exact (date, start) equality. Unmatched cells render
// not_offered. The lead-time lock is computed against the passed now, so
// callers must re-invoke with a fresh clock rather than cache the output.
func BuildGrid(
	facility model.Facility,
	date string,
	slots []slotModel.TimeSlot,
	holds []slotModel.OptimisticHold,
	now time.Time,
	slotDuration time.Duration,
	leadTime time.Duration,
) (dto.SlotGrid, error) {
	day, err := time.ParseInLocation(constant.DayFormat, date, timezone.GetLocation())
	if err != nil {
		return dto.SlotGrid{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	open, err := clockOn(day, facility.OperatingHours.Open)
	if err != nil {
		return dto.SlotGrid{}, fmt.Errorf("invalid open time: %w", err)
	}

	close, err := clockOn(day, facility.OperatingHours.Close)
	if err != nil {
		return dto.SlotGrid{}, fmt.Errorf("invalid close time: %w", err)
	}

	slotsByStart := make(map[string]slotModel.TimeSlot, len(slots))

	for _, slot := range slots {
		if slot.Date != date {
			continue
		}

		slotsByStart[slot.StartTime] = slot
	}

	holdsByStart := make(map[string]slotModel.OptimisticHold, len(holds))

	for _, hold := range holds {
		if hold.Date != date {
			continue
		}

		holdsByStart[hold.StartTime] = hold
	}

	grid := dto.SlotGrid{
		FacilityID:  facility.ID,
		Date:        date,
		GeneratedAt: timezone.Format(now, constant.DateFormat),
	}

	for start := open; !start.Add(slotDuration).After(close); start = start.Add(slotDuration) {
		label := start.Format(constant.ClockFormat)
		cell := dto.SlotCell{
			Label:     label,
			StartTime: label,
			EndTime:   start.Add(slotDuration).Format(constant.ClockFormat),
		}

		slot, offered := slotsByStart[label]
		if !offered {
			cell.Status = slotModel.RenderNotOffered

			grid.Cells = append(grid.Cells, cell)

			continue
		}

		cell.TimeSlotID = slot.ID
		cell.Status, cell.Bookable = renderState(slot, start, now, leadTime)

		if cell.Status != slotModel.RenderNotOffered {
			cell.Source = slotModel.SourceServer
		}

		if _, held := holdsByStart[label]; held && cell.Status == slotModel.RenderAvailable {
			cell.Status = slotModel.RenderPending
			cell.Source = slotModel.SourceOptimistic
			cell.Bookable = false
		}

		grid.Cells = append(grid.Cells, cell)
	}

	return grid, nil
}

// renderState maps a server slot status onto a render state. An available
// slot starting under the lead time from now is locked regardless of what
// the server said; the gate is strict, so a slot exactly at the boundary
// stays bookable.
func renderState(slot slotModel.TimeSlot, start, now time.Time, leadTime time.Duration) (string, bool) {
	switch slot.Status {
	case slotModel.StatusAvailable:
		if start.Sub(now) < leadTime {
			return slotModel.RenderLeadTimeLocked, false
		}

		return slotModel.RenderAvailable, true
	case slotModel.StatusBooked:
		return slotModel.RenderBooked, false
	case slotModel.StatusPending:
		return slotModel.RenderPending, false
	case slotModel.StatusMaintenance:
		return slotModel.RenderMaintenance, false
	default:
		return slotModel.RenderNotOffered, false
	}
}

func clockOn(day time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse(constant.ClockFormat, clock)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(
		day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		day.Location(),
	), nil
}
