package service_test

import (
	"context"
	"testing"
	"unibook/config"
	"unibook/infras/otel/mocks"
	facilityMocks "unibook/internal/domains/facility/mocks"
	"unibook/internal/domains/facility/model"
	"unibook/internal/domains/facility/model/dto"
	"unibook/internal/domains/facility/service"
	"unibook/shared/cache"
	cacheMocks "unibook/shared/cache/mocks"
	gDto "unibook/shared/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func facilityTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Booking.AlwaysOnUtilities = []string{"Wi-Fi", "Lighting", "Air Conditioning"}
	cfg.Cache.TTL = 300

	return cfg
}

func seminarRoom() model.Facility {
	return model.Facility{
		ID:       "fac-1",
		Name:     "Seminar Room 3",
		Campus:   "NVH",
		Category: "Meeting",
		Capacity: 20,
		OperatingHours: model.OperatingHours{
			Open:  "08:00",
			Close: "17:00",
		},
		Amenities: []string{"Wi-Fi", "Projector"},
	}
}

func TestFacilityService_GetAllCacheMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := facilityMocks.NewMockFacility(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	svc := service.New(mockRepo, facilityTestConfig(), mockCache, mocks.NewOtel())

	mockCache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(cache.Nil)

	saved := make(chan struct{}, 1)
	mockCache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), 300).
		DoAndReturn(func(_ context.Context, _ string, _ any, _ int) error {
			saved <- struct{}{}

			return nil
		})

	mockRepo.EXPECT().
		List(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Facility{seminarRoom()}, 1, nil)

	res, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
	require.NoError(t, err)

	require.Len(t, res.Facilities, 1)
	assert.Equal(t, "Seminar Room 3", res.Facilities[0].Name)
	// Wi-Fi is an always-on utility, so only the projector is bookable.
	assert.Equal(t, []string{"Projector"}, res.Facilities[0].Equipment)
	assert.Equal(t, 1, res.TotalData)

	<-saved
}

func TestFacilityService_GetAllCacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := facilityMocks.NewMockFacility(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	svc := service.New(mockRepo, facilityTestConfig(), mockCache, mocks.NewOtel())

	mockCache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value any) error {
			cached := value.(*dto.GetFacilitiesResponse)
			cached.TotalData = 1
			cached.Facilities = []dto.FacilityResponse{{ID: "fac-1", Name: "Seminar Room 3"}}

			return nil
		})

	res, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
	require.NoError(t, err)

	require.Len(t, res.Facilities, 1)
	assert.Equal(t, "fac-1", res.Facilities[0].ID)
}

func TestFacilityService_GetCacheMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := facilityMocks.NewMockFacility(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	svc := service.New(mockRepo, facilityTestConfig(), mockCache, mocks.NewOtel())

	mockCache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(cache.Nil)

	saved := make(chan struct{}, 1)
	mockCache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), 300).
		DoAndReturn(func(_ context.Context, _ string, _ any, _ int) error {
			saved <- struct{}{}

			return nil
		})

	mockRepo.EXPECT().
		Get(gomock.Any(), "fac-1").
		Return(seminarRoom(), nil)

	res, err := svc.Get(context.Background(), "fac-1")
	require.NoError(t, err)
	assert.Equal(t, "fac-1", res.ID)

	<-saved
}
