package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"net/url"
	"strconv"
	"unibook/infras/otel"
	"unibook/infras/upstream"
	"unibook/internal/domains/facility/model"
	"unibook/shared/constant"
	gDto "unibook/shared/dto"

	"github.com/rs/zerolog/log"
)

const (
	listPath   = "/facilities"
	detailPath = "/facilities/"
)

// Facility reads the facility catalog from the booking core API. The catalog
// is owned there; this layer is a fetch-only projection.
type Facility interface {
	List(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Facility, int, error)
	Get(ctx context.Context, id string) (model.Facility, error)
}

type repositoryImpl struct {
	client upstream.Client
	otel   otel.Otel
}

func New(client upstream.Client, ot otel.Otel) Facility {
	return &repositoryImpl{
		client: client,
		otel:   ot,
	}
}

type listEnvelope struct {
	Items      []model.Facility `json:"items"`
	Pagination struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

func (repo *repositoryImpl) List(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res []model.Facility, total int, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Facility.List")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := url.Values{}
	query.Set(constant.RequestParamPage, strconv.Itoa(params.Page))
	query.Set(constant.RequestParamLimit, strconv.Itoa(params.Limit))
	filter.ToQuery(query)

	var envelope listEnvelope
	if err = repo.client.Get(ctx, listPath, query, &envelope); err != nil {
		return nil, 0, err
	}

	facilities := make([]model.Facility, 0, len(envelope.Items))

	for _, facility := range envelope.Items {
		if validationErr := facility.Validate(); validationErr != nil {
			log.Warn().Err(validationErr).Str("facility_id", facility.ID).Msg("dropping corrupt facility record from upstream")

			continue
		}

		facilities = append(facilities, facility)
	}

	return facilities, envelope.Pagination.Total, nil
}

func (repo *repositoryImpl) Get(ctx context.Context, id string) (res model.Facility, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Facility.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = repo.client.Get(ctx, detailPath+url.PathEscape(id), nil, &res); err != nil {
		return model.Facility{}, err
	}

	if validationErr := res.Validate(); validationErr != nil {
		return model.Facility{}, validationErr
	}

	return res, nil
}
