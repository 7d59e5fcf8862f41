package service

import (
	"context"
	"fmt"
	"time"
	"unibook/config"
	"unibook/infras/otel"
	facilityRepo "unibook/internal/domains/facility/repository"
	"unibook/internal/domains/slot/model"
	"unibook/internal/domains/slot/model/dto"
	"unibook/internal/domains/slot/repository"
	"unibook/shared/cache"
	"unibook/shared/constant"
	"unibook/shared/failure"
	"unibook/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	maxGridDays = 7
)

type Slot interface {
	GetGrids(ctx context.Context, facilityID, date string, days int) (dto.GetSlotsResponse, error)
}

type serviceImpl struct {
	repo         repository.Slot
	facilityRepo facilityRepo.Facility
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(repo repository.Slot, facilityRepo facilityRepo.Facility, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Slot {
	return &serviceImpl{
		repo:         repo,
		facilityRepo: facilityRepo,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

// GetGrids builds one availability grid per requested date. Fetched slot
// lists are cached briefly, but grids themselves never are: the lead-time
// lock must be recomputed against the wall clock on every render, since a
// slot can cross the lead-time boundary while a page stays open.
func (s *serviceImpl) GetGrids(ctx context.Context, facilityID, date string, days int) (res dto.GetSlotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Slot.GetGrids")
	defer scope.End()
	defer scope.TraceIfError(err)

	if days < 1 {
		days = 1
	}

	if days > maxGridDays {
		return res, failure.BadRequestFromString(fmt.Sprintf("days must be between 1 and %d", maxGridDays))
	}

	firstDay, err := time.ParseInLocation(constant.DayFormat, date, timezone.GetLocation())
	if err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}

	facility, err := s.facilityRepo.Get(ctx, facilityID)
	if err != nil {
		log.Error().Err(err).Str("facility_id", facilityID).Msg("failed to get facility for slot grid")

		return res, fmt.Errorf("failed to get facility: %w", err)
	}

	slotDuration := time.Duration(s.cfg.Booking.SlotDurationMinutes) * time.Minute
	leadTime := time.Duration(s.cfg.Booking.LeadTimeHours) * time.Hour

	res.Grids = make([]dto.SlotGrid, 0, days)

	for i := 0; i < days; i++ {
		gridDate := firstDay.AddDate(0, 0, i).Format(constant.DayFormat)

		slots, err := s.fetchSlots(ctx, facilityID, gridDate)
		if err != nil {
			log.Error().Err(err).Str("facility_id", facilityID).Str("date", gridDate).Msg("failed to fetch slots")

			return dto.GetSlotsResponse{}, fmt.Errorf("failed to fetch slots: %w", err)
		}

		holds := s.fetchHolds(ctx, facilityID, gridDate)

		grid, err := BuildGrid(facility, gridDate, slots, holds, timezone.Now(), slotDuration, leadTime)
		if err != nil {
			return dto.GetSlotsResponse{}, failure.BadRequest(err)
		}

		res.Grids = append(res.Grids, grid)
	}

	return res, nil
}

func (s *serviceImpl) fetchSlots(ctx context.Context, facilityID, date string) ([]model.TimeSlot, error) {
	cacheKey := model.FetchCacheKey(facilityID, date)

	var cached []model.TimeSlot
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	slots, err := s.repo.ListByDate(ctx, facilityID, date)
	if err != nil {
		return nil, err
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, slots, s.cfg.Cache.SlotTTL); err != nil {
			log.Error().Err(err).Msg("failed to save slots to cache")
		}
	}()

	return slots, nil
}

// fetchHolds loads the optimistic holds for a facility and date. Holds are a
// best-effort overlay; a cache miss or error just means no overlay.
func (s *serviceImpl) fetchHolds(ctx context.Context, facilityID, date string) []model.OptimisticHold {
	var holds []model.OptimisticHold
	if err := s.cache.Get(ctx, model.HoldCacheKey(facilityID, date), &holds); err != nil {
		return nil
	}

	return holds
}
