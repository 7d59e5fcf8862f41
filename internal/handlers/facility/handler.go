package facility

import (
	"net/http"
	"strconv"
	"unibook/infras/otel"
	"unibook/internal/domains/facility/model"
	"unibook/internal/domains/facility/service"
	slotService "unibook/internal/domains/slot/service"
	"unibook/shared/constant"
	gDto "unibook/shared/dto"
	"unibook/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service     service.Facility
	slotService slotService.Slot
	otel        otel.Otel
}

func New(service service.Facility, slotService slotService.Slot, otel otel.Otel) Handler {
	return Handler{
		service:     service,
		slotService: slotService,
		otel:        otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/facilities", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetFacilities)
		routerGroup.Get("/{id}", handler.GetFacilityByID)
		routerGroup.Get("/{id}/slots", handler.GetFacilitySlots)
	})
}

// GetFacilities retrieves the facility catalog.
// @Summary Get all facilities
// @Description Retrieve bookable facilities with optional filtering and pagination.
// @Tags Facility
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param campus query string false "Filter by campus (HCM, NVH)"
// @Param category query string false "Filter by category"
// @Param search query string false "Search by facility name"
// @Success 200 {object} response.Data[dto.GetFacilitiesResponse] "List of facilities"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/facilities [get]
// @Security BearerAuth
func (handler *Handler) GetFacilities(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetFacilities")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	campus := r.URL.Query().Get(constant.RequestParamCampus)
	category := r.URL.Query().Get(model.FieldCategory)
	search := r.URL.Query().Get(constant.RequestParamSearch)

	filterGroup := gDto.FilterGroup{}

	if campus != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldCampus,
			Operator: gDto.FilterOperatorEq,
			Value:    campus,
		})
	}

	if category != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldCategory,
			Operator: gDto.FilterOperatorEq,
			Value:    category,
		})
	}

	if search != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldSearch,
			Operator: gDto.FilterOperatorSearch,
			Value:    search,
		})
	}

	facilities, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get facilities")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Facilities retrieved successfully")

	response.WithJSON(w, http.StatusOK, facilities)
}

// GetFacilityByID retrieves a facility by its ID.
// @Summary Get a facility by ID
// @Description Retrieve a facility by its unique identifier.
// @Tags Facility
// @Accept json
// @Produce json
// @Param id path string true "Facility ID"
// @Success 200 {object} response.Data[dto.FacilityResponse] "Facility details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/facilities/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetFacilityByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetFacilityByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	facility, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get facility by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Facility retrieved successfully")

	response.WithJSON(w, http.StatusOK, facility)
}

// GetFacilitySlots renders availability grids for a facility.
// @Summary Get facility availability grids
// @Description Render one availability grid per day starting at the given date. Grids are recomputed on every call so lead-time locks track the clock.
// @Tags Facility
// @Accept json
// @Produce json
// @Param id path string true "Facility ID"
// @Param date query string true "First date to render (YYYY-MM-DD)"
// @Param days query int false "Number of consecutive days (1-7, default 1)"
// @Success 200 {object} response.Data[dto.GetSlotsResponse] "Availability grids"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/facilities/{id}/slots [get]
// @Security BearerAuth
func (handler *Handler) GetFacilitySlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetFacilitySlots")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	date := r.URL.Query().Get(constant.RequestParamDate)

	days := 1
	if raw := r.URL.Query().Get(constant.RequestParamDays); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil {
			days = parsed
		}
	}

	grids, err := handler.slotService.GetGrids(ctx, id, date, days)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get facility slots")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Facility slots retrieved successfully")

	response.WithJSON(w, http.StatusOK, grids)
}
