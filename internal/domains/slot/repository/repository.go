package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"net/url"
	"unibook/infras/otel"
	"unibook/infras/upstream"
	"unibook/internal/domains/slot/model"
	"unibook/shared/constant"
)

// Slot fetches the server-generated time slots for a facility and date. Slots
// are produced upstream from operating hours minus existing bookings; this
// layer never synthesizes one.
type Slot interface {
	ListByDate(ctx context.Context, facilityID, date string) ([]model.TimeSlot, error)
}

type repositoryImpl struct {
	client upstream.Client
	otel   otel.Otel
}

func New(client upstream.Client, ot otel.Otel) Slot {
	return &repositoryImpl{
		client: client,
		otel:   ot,
	}
}

type listEnvelope struct {
	Items []model.TimeSlot `json:"items"`
}

func (repo *repositoryImpl) ListByDate(ctx context.Context, facilityID, date string) (res []model.TimeSlot, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Slot.ListByDate")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := url.Values{}
	query.Set(constant.RequestParamDate, date)

	var envelope listEnvelope
	if err = repo.client.Get(ctx, "/facilities/"+url.PathEscape(facilityID)+"/timeslots", query, &envelope); err != nil {
		return nil, err
	}

	return envelope.Items, nil
}
