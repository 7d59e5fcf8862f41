package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"unibook/config"
	"unibook/infras/otel/mocks"
	"unibook/infras/upstream"
	"unibook/shared/constant"
	"unibook/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(baseURL string) upstream.Client {
	cfg := &config.Config{}
	cfg.External.BookingCore.BaseURL = baseURL
	cfg.External.BookingCore.APIKey = "secret-key"
	cfg.External.BookingCore.TimeoutSeconds = 2

	return upstream.New(cfg, mocks.NewOtel())
}

func TestClientGetDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/facilities", r.URL.Path)
		assert.Equal(t, "HCM", r.URL.Query().Get("campus"))
		assert.Equal(t, "secret-key", r.Header.Get(constant.RequestHeaderAPIKey))

		json.NewEncoder(w).Encode(map[string]string{"id": "fac-1"})
	}))
	defer server.Close()

	client := newClient(server.URL)

	var out struct {
		ID string `json:"id"`
	}

	query := url.Values{}
	query.Set("campus", "HCM")

	err := client.Get(context.Background(), "/facilities", query, &out)
	require.NoError(t, err)
	assert.Equal(t, "fac-1", out.ID)
}

func TestClientForwardsActingUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stu-1", r.Header.Get("X-Acting-User"))

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newClient(server.URL)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "stu-1")

	err := client.Post(ctx, "/bookings/bk-1/cancel", nil, nil)
	require.NoError(t, err)
}

func TestClientRelaysStructuredErrorVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "Slot was booked by someone else"})
	}))
	defer server.Close()

	client := newClient(server.URL)

	err := client.Post(context.Background(), "/bookings", map[string]string{"facility_id": "fac-1"}, nil)
	require.Error(t, err)

	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.Equal(t, "Slot was booked by someone else", err.Error())
}

func TestClientDegradesUnreadableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer server.Close()

	client := newClient(server.URL)

	err := client.Get(context.Background(), "/facilities", nil, nil)
	require.Error(t, err)

	assert.Equal(t, http.StatusBadGateway, failure.GetCode(err))
	assert.Equal(t, http.StatusText(http.StatusBadGateway), err.Error())
}

func TestClientMapsNetworkFailureToConnectivityError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newClient(server.URL)

	err := client.Get(context.Background(), "/facilities", nil, nil)
	require.Error(t, err)
	assert.Equal(t, failure.ConnectivityError, err)
}
