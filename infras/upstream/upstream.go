package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unibook/config"
	"unibook/infras/otel"
	"unibook/shared/constant"
	"unibook/shared/failure"

	"github.com/rs/zerolog/log"
)

// Client talks to the booking core API, the authoritative owner of
// facilities, time slots and booking records. Every request carries the
// configured timeout so a delayed backend can never pin a handler.
type Client interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body any, out any) error
}

type clientImpl struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	otel       otel.Otel
}

func New(cfg *config.Config, ot otel.Otel) Client {
	timeout := time.Duration(cfg.External.BookingCore.TimeoutSeconds) * time.Second

	return &clientImpl{
		baseURL: cfg.External.BookingCore.BaseURL,
		apiKey:  cfg.External.BookingCore.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		otel: ot,
	}
}

// errorEnvelope is the structured error shape the booking core returns.
// The message is surfaced to the user verbatim.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *clientImpl) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *clientImpl) Post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *clientImpl) do(ctx context.Context, method, path string, query url.Values, body, out any) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelUpstreamScopeName, constant.OtelUpstreamScopeName+"."+method+" "+path)
	defer scope.End()
	defer scope.TraceIfError(err)

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader

	if body != nil {
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return failure.InternalError(fmt.Errorf("failed to encode upstream request: %w", marshalErr))
		}

		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return failure.InternalError(fmt.Errorf("failed to create upstream request: %w", err))
	}

	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	if c.apiKey != "" {
		req.Header.Set(constant.RequestHeaderAPIKey, c.apiKey)
	}

	if userID, ok := ctx.Value(constant.ContextKeyUserID).(string); ok && userID != "" {
		req.Header.Set("X-Acting-User", userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Msg("booking core unreachable")

		return failure.ConnectivityError
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return failure.InternalError(fmt.Errorf("failed to decode upstream response: %w", err))
	}

	return nil
}

// decodeError relays the upstream message verbatim when one is present, so
// the user sees exactly what the booking core said. A body we cannot read
// degrades to a generic failure with the upstream status code.
func (c *clientImpl) decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure.Upstream(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != "" {
			return failure.Upstream(resp.StatusCode, envelope.Error)
		}

		if envelope.Message != "" {
			return failure.Upstream(resp.StatusCode, envelope.Message)
		}
	}

	return failure.Upstream(resp.StatusCode, http.StatusText(resp.StatusCode))
}
