package service_test

import (
	"testing"
	"time"
	facilityModel "unibook/internal/domains/facility/model"
	"unibook/internal/domains/slot/model"
	"unibook/internal/domains/slot/model/dto"
	"unibook/internal/domains/slot/service"
	"unibook/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gridDate = "2025-12-25"
	slotHour = time.Hour
	leadTime = 3 * time.Hour
)

func labFacility() facilityModel.Facility {
	return facilityModel.Facility{
		ID:       "fac-1",
		Name:     "Physics Lab A",
		Campus:   "HCM",
		Capacity: 30,
		OperatingHours: facilityModel.OperatingHours{
			Open:  "08:00",
			Close: "17:00",
		},
	}
}

func slotAt(start, status string) model.TimeSlot {
	end, _ := time.Parse("15:04", start)

	return model.TimeSlot{
		ID:         "slot-" + start,
		FacilityID: "fac-1",
		Date:       gridDate,
		StartTime:  start,
		EndTime:    end.Add(slotHour).Format("15:04"),
		Status:     status,
	}
}

func onGridDate(t *testing.T, clock string) time.Time {
	t.Helper()

	parsed, err := time.ParseInLocation("2006-01-02 15:04", gridDate+" "+clock, timezone.GetLocation())
	require.NoError(t, err)

	return parsed
}

func TestBuildGridRowCount(t *testing.T) {
	// 08:00-17:00 with hourly slots yields nine rows, the last 16:00-17:00.
	now := onGridDate(t, "00:00")

	grid, err := service.BuildGrid(labFacility(), gridDate, nil, nil, now, slotHour, leadTime)
	require.NoError(t, err)

	require.Len(t, grid.Cells, 9)
	assert.Equal(t, "08:00", grid.Cells[0].StartTime)
	assert.Equal(t, "16:00", grid.Cells[8].StartTime)
	assert.Equal(t, "17:00", grid.Cells[8].EndTime)
}

func TestBuildGridUnmatchedRowsRenderNotOffered(t *testing.T) {
	now := onGridDate(t, "00:00")
	slots := []model.TimeSlot{slotAt("09:00", model.StatusAvailable)}

	grid, err := service.BuildGrid(labFacility(), gridDate, slots, nil, now, slotHour, leadTime)
	require.NoError(t, err)

	for _, cell := range grid.Cells {
		if cell.StartTime == "09:00" {
			assert.Equal(t, model.RenderAvailable, cell.Status)
			assert.True(t, cell.Bookable)
			assert.Equal(t, "slot-09:00", cell.TimeSlotID)

			continue
		}

		assert.Equal(t, model.RenderNotOffered, cell.Status, "cell %s", cell.StartTime)
		assert.False(t, cell.Bookable, "cell %s", cell.StartTime)
	}
}

func TestBuildGridServerStatuses(t *testing.T) {
	now := onGridDate(t, "00:00")
	slots := []model.TimeSlot{
		slotAt("09:00", model.StatusAvailable),
		slotAt("10:00", model.StatusBooked),
		slotAt("11:00", model.StatusPending),
		slotAt("12:00", model.StatusMaintenance),
	}

	grid, err := service.BuildGrid(labFacility(), gridDate, slots, nil, now, slotHour, leadTime)
	require.NoError(t, err)

	byStart := cellsByStart(grid.Cells)

	assert.Equal(t, model.RenderAvailable, byStart["09:00"].Status)
	assert.Equal(t, model.RenderBooked, byStart["10:00"].Status)
	assert.Equal(t, model.RenderPending, byStart["11:00"].Status)
	assert.Equal(t, model.RenderMaintenance, byStart["12:00"].Status)

	for _, start := range []string{"10:00", "11:00", "12:00"} {
		assert.False(t, byStart[start].Bookable, "cell %s", start)
		assert.Equal(t, model.SourceServer, byStart[start].Source, "cell %s", start)
	}
}

func TestBuildGridLeadTimeLock(t *testing.T) {
	slots := []model.TimeSlot{
		slotAt("09:00", model.StatusAvailable),
		slotAt("13:00", model.StatusAvailable),
	}

	// At 07:30 the 09:00 slot starts in 1h30m, inside the three hour lead
	// time, so it locks. The 13:00 slot is still clear.
	now := onGridDate(t, "07:30")

	grid, err := service.BuildGrid(labFacility(), gridDate, slots, nil, now, slotHour, leadTime)
	require.NoError(t, err)

	byStart := cellsByStart(grid.Cells)
	assert.Equal(t, model.RenderLeadTimeLocked, byStart["09:00"].Status)
	assert.False(t, byStart["09:00"].Bookable)
	assert.Equal(t, model.RenderAvailable, byStart["13:00"].Status)
	assert.True(t, byStart["13:00"].Bookable)
}

func TestBuildGridLeadTimeBoundaryStaysBookable(t *testing.T) {
	slots := []model.TimeSlot{slotAt("12:00", model.StatusAvailable)}

	// Exactly three hours out: the gate is strict, the slot is still open.
	now := onGridDate(t, "09:00")

	grid, err := service.BuildGrid(labFacility(), gridDate, slots, nil, now, slotHour, leadTime)
	require.NoError(t, err)

	byStart := cellsByStart(grid.Cells)
	assert.Equal(t, model.RenderAvailable, byStart["12:00"].Status)
	assert.True(t, byStart["12:00"].Bookable)
}

func TestBuildGridOptimisticHoldOverlay(t *testing.T) {
	now := onGridDate(t, "00:00")
	slots := []model.TimeSlot{
		slotAt("09:00", model.StatusAvailable),
		slotAt("10:00", model.StatusBooked),
	}
	holds := []model.OptimisticHold{
		{BookingID: "bk-1", FacilityID: "fac-1", Date: gridDate, StartTime: "09:00"},
		{BookingID: "bk-2", FacilityID: "fac-1", Date: gridDate, StartTime: "10:00"},
	}

	grid, err := service.BuildGrid(labFacility(), gridDate, slots, holds, now, slotHour, leadTime)
	require.NoError(t, err)

	byStart := cellsByStart(grid.Cells)

	// The hold turns an available cell pending and marks it optimistic.
	assert.Equal(t, model.RenderPending, byStart["09:00"].Status)
	assert.Equal(t, model.SourceOptimistic, byStart["09:00"].Source)
	assert.False(t, byStart["09:00"].Bookable)

	// A server-confirmed state always wins over a stale hold.
	assert.Equal(t, model.RenderBooked, byStart["10:00"].Status)
	assert.Equal(t, model.SourceServer, byStart["10:00"].Source)
}

func TestBuildGridIsDeterministic(t *testing.T) {
	now := onGridDate(t, "07:30")
	slots := []model.TimeSlot{
		slotAt("09:00", model.StatusAvailable),
		slotAt("13:00", model.StatusAvailable),
	}

	first, err := service.BuildGrid(labFacility(), gridDate, slots, nil, now, slotHour, leadTime)
	require.NoError(t, err)

	second, err := service.BuildGrid(labFacility(), gridDate, slots, nil, now, slotHour, leadTime)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildGridRejectsBadInput(t *testing.T) {
	now := onGridDate(t, "00:00")

	_, err := service.BuildGrid(labFacility(), "25/12/2025", nil, nil, now, slotHour, leadTime)
	assert.Error(t, err)

	broken := labFacility()
	broken.OperatingHours.Open = "late"

	_, err = service.BuildGrid(broken, gridDate, nil, nil, now, slotHour, leadTime)
	assert.Error(t, err)
}

func cellsByStart(cells []dto.SlotCell) map[string]dto.SlotCell {
	byStart := make(map[string]dto.SlotCell, len(cells))
	for _, cell := range cells {
		byStart[cell.StartTime] = cell
	}

	return byStart
}
