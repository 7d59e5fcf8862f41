package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"
	"unibook/config"
	"unibook/infras/otel"
	"unibook/infras/s3"
	"unibook/internal/domains/booking/model"
	"unibook/internal/domains/booking/model/dto"
	"unibook/internal/domains/booking/repository"
	facilityRepo "unibook/internal/domains/facility/repository"
	slotModel "unibook/internal/domains/slot/model"
	"unibook/shared"
	"unibook/shared/cache"
	"unibook/shared/constant"
	gDto "unibook/shared/dto"
	"unibook/shared/failure"
	"unibook/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetAllBooking = "booking:gets"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	GetMine(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.BookingResponse, error)
	Approve(ctx context.Context, id string) (dto.BookingResponse, error)
	Reject(ctx context.Context, id, reason string) (dto.BookingResponse, error)
	BatchDecide(ctx context.Context, req dto.BatchDecisionRequest) (dto.BatchDecisionResponse, error)
	CheckIn(ctx context.Context, id, note string, images []*multipart.FileHeader) (dto.BookingResponse, error)
	CheckOut(ctx context.Context, id, note string, images []*multipart.FileHeader) (dto.BookingResponse, error)
	SubmitFeedback(ctx context.Context, id string, req dto.FeedbackRequest) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo         repository.Booking
	facilityRepo facilityRepo.Facility
	cfg          *config.Config
	cache        cache.RedisCache
	s3           s3.S3
	otel         otel.Otel
}

func New(repo repository.Booking, facilityRepo facilityRepo.Facility, cfg *config.Config, cache cache.RedisCache, s3 s3.S3, otel otel.Otel) Booking {
	return &serviceImpl{
		repo:         repo,
		facilityRepo: facilityRepo,
		cfg:          cfg,
		cache:        cache,
		s3:           s3,
		otel:         otel,
	}
}

// Create validates the request against the facility's catalog entry before
// anything leaves the process, then relays it to the booking core. The core
// stays the sole arbiter of slot conflicts; on success the slot is marked
// with a short-lived optimistic hold until a server grid confirms it.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	purpose := trimmed(req.Purpose)
	if purpose == constant.Empty {
		return res, failure.BadRequestFromString("a booking purpose is required")
	}

	start, err := slotTime(req.Date, req.StartTime)
	if err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid slot start %q %q", req.Date, req.StartTime))
	}

	leadTime := time.Duration(s.cfg.Booking.LeadTimeHours) * time.Hour
	if start.Sub(timezone.Now()) < leadTime {
		return res, failure.BadRequestFromString(fmt.Sprintf("bookings must be made at least %d hours before the slot starts", s.cfg.Booking.LeadTimeHours))
	}

	facility, err := s.facilityRepo.Get(ctx, req.FacilityID)
	if err != nil {
		log.Error().Err(err).Str("facility_id", req.FacilityID).Msg("failed to get facility for booking")

		return res, fmt.Errorf("failed to get facility: %w", err)
	}

	if facility.UnderMaintenance {
		return res, failure.Conflict(fmt.Sprintf("%s is under maintenance and cannot be booked", facility.Name))
	}

	if req.AttendeeCount < 1 || req.AttendeeCount > facility.Capacity {
		return res, failure.BadRequestFromString(fmt.Sprintf("attendee count must be between 1 and %d", facility.Capacity))
	}

	offered := make(map[string]struct{})
	for _, item := range facility.BookableEquipment(s.cfg.Booking.AlwaysOnUtilities) {
		offered[item] = struct{}{}
	}

	for _, item := range req.EquipmentRequests {
		if _, ok := offered[item]; !ok {
			return res, failure.BadRequestFromString(fmt.Sprintf("%s is not offered at this facility", item))
		}
	}

	userID, _, _ := actor(ctx)

	booking, err := s.repo.Create(ctx, repository.CreatePayload{
		FacilityID:          req.FacilityID,
		TimeSlotID:          req.TimeSlotID,
		Date:                req.Date,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		Purpose:             purpose,
		AttendeeCount:       req.AttendeeCount,
		EquipmentRequests:   req.EquipmentRequests,
		SpecialRequirements: req.SpecialRequirements,
		RequesterID:         userID,
	})
	if err != nil {
		log.Error().Err(err).Str("facility_id", req.FacilityID).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.holdSlot(ctx, booking)
	s.invalidateAfterMutation(ctx, booking)

	res.FromModel(booking, slotModel.SourceOptimistic)

	return res, nil
}

// GetAll is the reviewer listing. Staff only ever see their own campus, which
// is taken from the token claims rather than the request.
func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	_, _, campus := actor(ctx)
	if campus != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldCampus,
			Value:    campus,
			Operator: gDto.FilterOperatorEq,
		})
	}

	return s.list(ctx, params, filter)
}

// GetMine lists the requester's own bookings across every status.
func (s *serviceImpl) GetMine(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.GetMine")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _, _ := actor(ctx)
	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldRequester,
		Value:    userID,
		Operator: gDto.FilterOperatorEq,
	})

	return s.list(ctx, params, filter)
}

func (s *serviceImpl) list(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	models, total, err := s.repo.List(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, params.Limit, slotModel.SourceServer)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

// Get returns a single booking. Requesters may only read their own records;
// staff may read any.
func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.fetch(ctx, id)
	if err != nil {
		return res, err
	}

	userID, role, _ := actor(ctx)
	if !isStaff(role) && !booking.OwnedBy(userID) {
		return res, failure.ResourceRestrictedError
	}

	res.FromModel(booking, slotModel.SourceServer)

	return res, nil
}

// Cancel withdraws the requester's own booking while it is still pending or
// approved. Terminal records stay as they are.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.fetch(ctx, id)
	if err != nil {
		return res, err
	}

	userID, _, _ := actor(ctx)
	if !booking.OwnedBy(userID) {
		return res, failure.ResourceRestrictedError
	}

	if !booking.Status.Cancellable() {
		return res, failure.Conflict(fmt.Sprintf("a %s booking can no longer be cancelled", booking.Status))
	}

	cancelled, err := s.repo.Cancel(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to cancel booking")

		return res, fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.releaseSlot(ctx, cancelled)
	s.invalidateAfterMutation(ctx, cancelled)

	res.FromModel(cancelled, slotModel.SourceServer)

	return res, nil
}

func (s *serviceImpl) fetch(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return model.Booking{}, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// holdSlot records an optimistic hold for the just-submitted booking so slot
// grids render the cell pending immediately. The hold expires on its own; it
// is never promoted locally.
func (s *serviceImpl) holdSlot(ctx context.Context, booking model.Booking) {
	c := context.WithoutCancel(ctx)
	key := slotModel.HoldCacheKey(booking.FacilityID, booking.Date)

	var holds []slotModel.OptimisticHold
	if err := s.cache.Get(c, key, &holds); err != nil && err != cache.Nil {
		log.Error().Err(err).Str("cacheKey", key).Msg("failed to load optimistic holds")
	}

	holds = append(holds, slotModel.OptimisticHold{
		BookingID:  booking.ID,
		FacilityID: booking.FacilityID,
		Date:       booking.Date,
		StartTime:  booking.StartTime,
	})

	if err := s.cache.Save(c, key, holds, s.cfg.Booking.OptimisticTTLSeconds); err != nil {
		log.Error().Err(err).Str("cacheKey", key).Msg("failed to save optimistic hold")
	}
}

// releaseSlot drops any optimistic hold left over for a booking that just
// reached a terminal state.
func (s *serviceImpl) releaseSlot(ctx context.Context, booking model.Booking) {
	c := context.WithoutCancel(ctx)
	key := slotModel.HoldCacheKey(booking.FacilityID, booking.Date)

	var holds []slotModel.OptimisticHold
	if err := s.cache.Get(c, key, &holds); err != nil {
		return
	}

	remaining := holds[:0]
	for _, hold := range holds {
		if hold.BookingID != booking.ID {
			remaining = append(remaining, hold)
		}
	}

	if len(remaining) == 0 {
		if err := s.cache.Delete(c, key); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to delete optimistic holds")
		}

		return
	}

	if err := s.cache.Save(c, key, remaining, s.cfg.Booking.OptimisticTTLSeconds); err != nil {
		log.Error().Err(err).Str("cacheKey", key).Msg("failed to save optimistic holds")
	}
}

// invalidateAfterMutation drops the cached booking lists and the raw slot
// list for the affected facility and date, so the next grid render refetches.
func (s *serviceImpl) invalidateAfterMutation(ctx context.Context, booking model.Booking) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)

		if booking.FacilityID != constant.Empty && booking.Date != constant.Empty {
			if err := s.cache.Delete(c, slotModel.FetchCacheKey(booking.FacilityID, booking.Date)); err != nil {
				log.Error().Err(err).Msg("failed to invalidate slot cache")
			}
		}
	}()
}

func slotTime(date, clock string) (time.Time, error) {
	return time.ParseInLocation(constant.DayFormat+" "+constant.ClockFormat, date+" "+clock, timezone.GetLocation())
}

func actor(ctx context.Context) (userID, role, campus string) {
	userID, _ = ctx.Value(constant.ContextKeyUserID).(string)
	role, _ = ctx.Value(constant.ContextKeyUserRole).(string)
	campus, _ = ctx.Value(constant.ContextKeyUserCampus).(string)

	return userID, role, campus
}

func isStaff(role string) bool {
	return role == constant.RoleAdmin || role == constant.RoleFacilityManager
}

func trimmed(value string) string {
	return strings.TrimSpace(value)
}
