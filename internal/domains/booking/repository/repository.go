package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"net/url"
	"strconv"
	"unibook/infras/otel"
	"unibook/infras/upstream"
	"unibook/internal/domains/booking/model"
	"unibook/shared/constant"
	gDto "unibook/shared/dto"
)

const (
	bookingsPath = "/bookings"
)

// CreatePayload is the create-booking call shape the booking core expects.
type CreatePayload struct {
	FacilityID          string            `json:"facility_id"`
	TimeSlotID          string            `json:"time_slot_id"`
	Date                string            `json:"date"`
	StartTime           string            `json:"start_time"`
	EndTime             string            `json:"end_time"`
	Purpose             string            `json:"purpose"`
	AttendeeCount       int               `json:"attendee_count"`
	EquipmentRequests   []string          `json:"equipment_requests,omitempty"`
	SpecialRequirements map[string]string `json:"special_requirements,omitempty"`
	RequesterID         string            `json:"requester_id"`
}

// PresencePayload carries check-in/check-out evidence upstream. Images are
// already on the media host by the time this is sent; only URLs travel.
type PresencePayload struct {
	Note      string   `json:"note,omitempty"`
	ImageURLs []string `json:"image_urls"`
}

// Booking relays workflow transitions to the booking core API, which is the
// sole arbiter of conflicts and lifecycle state.
type Booking interface {
	Create(ctx context.Context, payload CreatePayload) (model.Booking, error)
	List(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Booking, int, error)
	Get(ctx context.Context, id string) (model.Booking, error)
	Cancel(ctx context.Context, id string) (model.Booking, error)
	Approve(ctx context.Context, id string) (model.Booking, error)
	Reject(ctx context.Context, id, reason string) (model.Booking, error)
	CheckIn(ctx context.Context, id string, evidence PresencePayload) (model.Booking, error)
	CheckOut(ctx context.Context, id string, evidence PresencePayload) (model.Booking, error)
	SubmitFeedback(ctx context.Context, id string, feedback model.Feedback) (model.Booking, error)
}

type repositoryImpl struct {
	client upstream.Client
	otel   otel.Otel
}

func New(client upstream.Client, ot otel.Otel) Booking {
	return &repositoryImpl{
		client: client,
		otel:   ot,
	}
}

type listEnvelope struct {
	Items      []model.Booking `json:"items"`
	Pagination struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

func (repo *repositoryImpl) Create(ctx context.Context, payload CreatePayload) (res model.Booking, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Booking.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = repo.client.Post(ctx, bookingsPath, payload, &res)

	return res, err
}

func (repo *repositoryImpl) List(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res []model.Booking, total int, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Booking.List")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := url.Values{}
	query.Set(constant.RequestParamPage, strconv.Itoa(params.Page))
	query.Set(constant.RequestParamLimit, strconv.Itoa(params.Limit))
	filter.ToQuery(query)

	var envelope listEnvelope
	if err = repo.client.Get(ctx, bookingsPath, query, &envelope); err != nil {
		return nil, 0, err
	}

	return envelope.Items, envelope.Pagination.Total, nil
}

func (repo *repositoryImpl) Get(ctx context.Context, id string) (res model.Booking, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Booking.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = repo.client.Get(ctx, bookingsPath+"/"+url.PathEscape(id), nil, &res)

	return res, err
}

func (repo *repositoryImpl) Cancel(ctx context.Context, id string) (res model.Booking, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Booking.Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = repo.client.Post(ctx, bookingsPath+"/"+url.PathEscape(id)+"/cancel", nil, &res)

	return res, err
}

func (repo *repositoryImpl) Approve(ctx context.Context, id string) (res model.Booking, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Booking.Approve")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = repo.client.Post(ctx, bookingsPath+"/"+url.PathEscape(id)+"/approve", nil, &res)

	return res, err
}

func (repo *repositoryImpl) Reject(ctx context.Context, id, reason string) (res model.Booking, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Booking.Reject")
	defer scope.End()
	defer scope.TraceIfError(err)

	body := map[string]string{"reason": reason}

	err = repo.client.Post(ctx, bookingsPath+"/"+url.PathEscape(id)+"/reject", body, &res)

	return res, err
}

func (repo *repositoryImpl) CheckIn(ctx context.Context, id string, evidence PresencePayload) (res model.Booking, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Booking.CheckIn")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = repo.client.Post(ctx, bookingsPath+"/"+url.PathEscape(id)+"/checkin", evidence, &res)

	return res, err
}

func (repo *repositoryImpl) CheckOut(ctx context.Context, id string, evidence PresencePayload) (res model.Booking, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Booking.CheckOut")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = repo.client.Post(ctx, bookingsPath+"/"+url.PathEscape(id)+"/checkout", evidence, &res)

	return res, err
}

func (repo *repositoryImpl) SubmitFeedback(ctx context.Context, id string, feedback model.Feedback) (res model.Booking, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Booking.SubmitFeedback")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = repo.client.Post(ctx, bookingsPath+"/"+url.PathEscape(id)+"/feedback", feedback, &res)

	return res, err
}
