package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"
	"unibook/config"
	"unibook/infras/otel/mocks"
	s3Mocks "unibook/infras/s3/mocks"
	bookingMocks "unibook/internal/domains/booking/mocks"
	"unibook/internal/domains/booking/model"
	"unibook/internal/domains/booking/model/dto"
	"unibook/internal/domains/booking/repository"
	"unibook/internal/domains/booking/service"
	facilityMocks "unibook/internal/domains/facility/mocks"
	facilityModel "unibook/internal/domains/facility/model"
	slotModel "unibook/internal/domains/slot/model"
	"unibook/shared/cache"
	cacheMocks "unibook/shared/cache/mocks"
	"unibook/shared/constant"
	gDto "unibook/shared/dto"
	"unibook/shared/failure"
	"unibook/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	repo         *bookingMocks.MockBooking
	facilityRepo *facilityMocks.MockFacility
	cache        *cacheMocks.MockRedisCache
	s3           *s3Mocks.MockS3
	svc          service.Booking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Booking.LeadTimeHours = 3
	cfg.Booking.CheckInWindowMinutes = 30
	cfg.Booking.CheckOutWindowMinutes = 30
	cfg.Booking.AlwaysOnUtilities = []string{"Wi-Fi", "Lighting", "Air Conditioning"}
	cfg.Booking.OptimisticTTLSeconds = 120
	cfg.Cache.TTL = 300

	f := &fixture{
		repo:         bookingMocks.NewMockBooking(ctrl),
		facilityRepo: facilityMocks.NewMockFacility(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
		s3:           s3Mocks.NewMockS3(ctrl),
	}

	f.svc = service.New(f.repo, f.facilityRepo, cfg, f.cache, f.s3, mocks.NewOtel())

	return f
}

// expectInvalidation wires the async cache invalidation that follows every
// successful mutation and returns a wait function for it.
func (f *fixture) expectInvalidation() func() {
	done := make(chan struct{}, 2)

	f.cache.EXPECT().
		Clear(gomock.Any(), "booking:gets*").
		DoAndReturn(func(_ context.Context, _ string) error {
			done <- struct{}{}

			return nil
		})

	f.cache.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string) error {
			done <- struct{}{}

			return nil
		})

	return func() {
		<-done
		<-done
	}
}

func studentCtx(userID string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleStudent)

	return ctx
}

func adminCtx(campus string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdmin)
	ctx = context.WithValue(ctx, constant.ContextKeyUserCampus, campus)

	return ctx
}

func meetingRoom() facilityModel.Facility {
	return facilityModel.Facility{
		ID:       "fac-1",
		Name:     "Meeting Room B",
		Campus:   constant.CampusHCM,
		Capacity: 12,
		OperatingHours: facilityModel.OperatingHours{
			Open:  "08:00",
			Close: "17:00",
		},
		Amenities: []string{"Wi-Fi", "Projector", "Whiteboard"},
	}
}

func futureDay() string {
	return timezone.Now().AddDate(0, 0, 7).Format(constant.DayFormat)
}

func validCreateRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		FacilityID:    "fac-1",
		TimeSlotID:    "slot-10",
		Date:          futureDay(),
		StartTime:     "10:00",
		EndTime:       "11:00",
		Purpose:       "Group project meeting",
		AttendeeCount: 6,
	}
}

func pendingBooking(id, owner string) model.Booking {
	return model.Booking{
		ID:          id,
		RequesterID: owner,
		FacilityID:  "fac-1",
		Date:        futureDay(),
		StartTime:   "10:00",
		EndTime:     "11:00",
		Purpose:     "Group project meeting",
		Status:      model.StatusPendingApproval,
	}
}

func TestBookingService_CreateRejectsAttendeeCountOutsideCapacity(t *testing.T) {
	f := newFixture(t)

	f.facilityRepo.EXPECT().
		Get(gomock.Any(), "fac-1").
		Return(meetingRoom(), nil)

	req := validCreateRequest()
	req.AttendeeCount = 13

	_, err := f.svc.Create(studentCtx("stu-1"), req)
	require.Error(t, err)
	assert.True(t, failure.IsClientFault(err))
	assert.Contains(t, err.Error(), "between 1 and 12")
}

func TestBookingService_CreateRejectsBlankPurpose(t *testing.T) {
	f := newFixture(t)

	// Whitespace only. The request must die locally; neither the facility
	// catalog nor the booking core may be called.
	req := validCreateRequest()
	req.Purpose = "   "

	_, err := f.svc.Create(studentCtx("stu-1"), req)
	require.Error(t, err)
	assert.True(t, failure.IsClientFault(err))
	assert.Contains(t, err.Error(), "purpose")
}

func TestBookingService_CreateRejectsUnofferedEquipment(t *testing.T) {
	f := newFixture(t)

	f.facilityRepo.EXPECT().
		Get(gomock.Any(), "fac-1").
		Return(meetingRoom(), nil)

	req := validCreateRequest()
	req.EquipmentRequests = []string{"Projector", "3D Printer"}

	_, err := f.svc.Create(studentCtx("stu-1"), req)
	require.Error(t, err)
	assert.True(t, failure.IsClientFault(err))
	assert.Contains(t, err.Error(), "3D Printer")
}

func TestBookingService_CreateTreatsAlwaysOnUtilityAsUnoffered(t *testing.T) {
	f := newFixture(t)

	f.facilityRepo.EXPECT().
		Get(gomock.Any(), "fac-1").
		Return(meetingRoom(), nil)

	// Wi-Fi is in the facility's amenity list but is an always-on utility,
	// not bookable equipment.
	req := validCreateRequest()
	req.EquipmentRequests = []string{"Wi-Fi"}

	_, err := f.svc.Create(studentCtx("stu-1"), req)
	require.Error(t, err)
	assert.True(t, failure.IsClientFault(err))
}

func TestBookingService_CreateRejectsInsideLeadTime(t *testing.T) {
	f := newFixture(t)

	// One hour from now is inside the three hour lead time. The facility is
	// never fetched and nothing reaches the booking core.
	soon := timezone.Now().Add(time.Hour)

	req := validCreateRequest()
	req.Date = soon.Format(constant.DayFormat)
	req.StartTime = soon.Format(constant.ClockFormat)

	_, err := f.svc.Create(studentCtx("stu-1"), req)
	require.Error(t, err)
	assert.True(t, failure.IsClientFault(err))
	assert.Contains(t, err.Error(), "3 hours")
}

func TestBookingService_CreateRejectsFacilityUnderMaintenance(t *testing.T) {
	f := newFixture(t)

	closed := meetingRoom()
	closed.UnderMaintenance = true

	f.facilityRepo.EXPECT().
		Get(gomock.Any(), "fac-1").
		Return(closed, nil)

	_, err := f.svc.Create(studentCtx("stu-1"), validCreateRequest())
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBookingService_CreateSuccess(t *testing.T) {
	f := newFixture(t)

	f.facilityRepo.EXPECT().
		Get(gomock.Any(), "fac-1").
		Return(meetingRoom(), nil)

	created := pendingBooking("bk-1", "stu-1")

	f.repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, payload repository.CreatePayload) (model.Booking, error) {
			assert.Equal(t, "stu-1", payload.RequesterID)
			assert.Equal(t, "fac-1", payload.FacilityID)

			return created, nil
		})

	// The optimistic hold list starts empty and gets one entry.
	f.cache.EXPECT().
		Get(gomock.Any(), slotModel.HoldCacheKey("fac-1", created.Date), gomock.Any()).
		Return(cache.Nil)

	f.cache.EXPECT().
		Save(gomock.Any(), slotModel.HoldCacheKey("fac-1", created.Date), gomock.Any(), 120).
		Return(nil)

	wait := f.expectInvalidation()

	res, err := f.svc.Create(studentCtx("stu-1"), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "bk-1", res.ID)
	assert.Equal(t, string(model.StatusPendingApproval), res.Status)
	assert.Equal(t, slotModel.SourceOptimistic, res.Source)
	assert.True(t, res.CanCancel)
	assert.False(t, res.CanCheckIn)

	wait()
}

func TestBookingService_CreateSurfacesUpstreamConflict(t *testing.T) {
	f := newFixture(t)

	f.facilityRepo.EXPECT().
		Get(gomock.Any(), "fac-1").
		Return(meetingRoom(), nil)

	f.repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(model.Booking{}, failure.Upstream(http.StatusConflict, "Slot was booked by someone else"))

	_, err := f.svc.Create(studentCtx("stu-1"), validCreateRequest())
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.Contains(t, err.Error(), "Slot was booked by someone else")
}

func TestBookingService_GetEnforcesOwnership(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(pendingBooking("bk-1", "stu-1"), nil).
		Times(2)

	_, err := f.svc.Get(studentCtx("stu-2"), "bk-1")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))

	// Staff can read any record.
	res, err := f.svc.Get(adminCtx(constant.CampusHCM), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "bk-1", res.ID)
}

func TestBookingService_CancelRejectsNonOwner(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(pendingBooking("bk-1", "stu-1"), nil)

	_, err := f.svc.Cancel(studentCtx("stu-2"), "bk-1")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
}

func TestBookingService_CancelRejectsTerminalStatus(t *testing.T) {
	tests := []struct {
		name   string
		status model.Status
	}{
		{name: "completed", status: model.StatusCompleted},
		{name: "rejected", status: model.StatusRejected},
		{name: "cancelled", status: model.StatusCancelled},
		{name: "no show", status: model.StatusNoShow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			booking := pendingBooking("bk-1", "stu-1")
			booking.Status = tt.status

			f.repo.EXPECT().
				Get(gomock.Any(), "bk-1").
				Return(booking, nil)

			_, err := f.svc.Cancel(studentCtx("stu-1"), "bk-1")
			require.Error(t, err)
			assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		})
	}
}

func TestBookingService_CancelSuccess(t *testing.T) {
	f := newFixture(t)

	booking := pendingBooking("bk-1", "stu-1")

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	cancelled := booking
	cancelled.Status = model.StatusCancelled

	f.repo.EXPECT().
		Cancel(gomock.Any(), "bk-1").
		Return(cancelled, nil)

	// The optimistic hold for this booking is released; it was the only one,
	// so the whole hold entry goes away.
	f.cache.EXPECT().
		Get(gomock.Any(), slotModel.HoldCacheKey("fac-1", booking.Date), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value any) error {
			holds := value.(*[]slotModel.OptimisticHold)
			*holds = []slotModel.OptimisticHold{{BookingID: "bk-1", FacilityID: "fac-1", Date: booking.Date, StartTime: "10:00"}}

			return nil
		})

	f.cache.EXPECT().
		Delete(gomock.Any(), slotModel.HoldCacheKey("fac-1", booking.Date)).
		Return(nil)

	wait := f.expectInvalidation()

	res, err := f.svc.Cancel(studentCtx("stu-1"), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusCancelled), res.Status)
	assert.False(t, res.CanCancel)

	wait()
}

func TestBookingService_RejectRequiresReason(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Reject(adminCtx(constant.CampusHCM), "bk-1", "   ")
	require.Error(t, err)
	assert.True(t, failure.IsClientFault(err))
	assert.Contains(t, err.Error(), "reason")
}

func TestBookingService_ApproveRejectsDecidedBooking(t *testing.T) {
	f := newFixture(t)

	booking := pendingBooking("bk-1", "stu-1")
	booking.Status = model.StatusApproved

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	_, err := f.svc.Approve(adminCtx(constant.CampusHCM), "bk-1")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBookingService_ApproveSuccess(t *testing.T) {
	f := newFixture(t)

	booking := pendingBooking("bk-1", "stu-1")

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	approved := booking
	approved.Status = model.StatusApproved

	f.repo.EXPECT().
		Approve(gomock.Any(), "bk-1").
		Return(approved, nil)

	wait := f.expectInvalidation()

	res, err := f.svc.Approve(adminCtx(constant.CampusHCM), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusApproved), res.Status)
	assert.True(t, res.CanCheckIn)

	wait()
}

func TestBookingService_BatchDecideSkipsDecidedBookings(t *testing.T) {
	f := newFixture(t)

	pending := pendingBooking("bk-1", "stu-1")

	alreadyApproved := pendingBooking("bk-2", "stu-2")
	alreadyApproved.Status = model.StatusApproved

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(pending, nil)
	f.repo.EXPECT().
		Get(gomock.Any(), "bk-2").
		Return(alreadyApproved, nil)

	approved := pending
	approved.Status = model.StatusApproved

	f.repo.EXPECT().
		Approve(gomock.Any(), "bk-1").
		Return(approved, nil)

	wait := f.expectInvalidation()

	res, err := f.svc.BatchDecide(adminCtx(constant.CampusHCM), dto.BatchDecisionRequest{
		Action:     dto.BatchActionApprove,
		BookingIDs: []string{"bk-1", "bk-2"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Results, 2)
	assert.True(t, res.Results[0].Applied)
	assert.False(t, res.Results[1].Applied)
	assert.Contains(t, res.Results[1].Reason, "not pending approval")

	wait()
}

func TestBookingService_BatchRejectRequiresReason(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BatchDecide(adminCtx(constant.CampusHCM), dto.BatchDecisionRequest{
		Action:     dto.BatchActionReject,
		BookingIDs: []string{"bk-1"},
	})
	require.Error(t, err)
	assert.True(t, failure.IsClientFault(err))
}

func TestBookingService_GetAllScopesToReviewerCampus(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(cache.Nil)

	saved := make(chan struct{}, 1)
	f.cache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ any, _ int) error {
			saved <- struct{}{}

			return nil
		})

	f.repo.EXPECT().
		List(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) ([]model.Booking, int, error) {
			require.Len(t, filter.Filters, 1)
			assert.Equal(t, model.FieldCampus, filter.Filters[0].Field)
			assert.Equal(t, constant.CampusNVH, filter.Filters[0].Value)

			return []model.Booking{pendingBooking("bk-1", "stu-1")}, 1, nil
		})

	res, err := f.svc.GetAll(adminCtx(constant.CampusNVH), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)

	<-saved
}
