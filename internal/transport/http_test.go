package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/subscription-gateway/internal/config"
	"github.com/ignite/subscription-gateway/internal/subscription"
)

func TestHTTPTransportSubmit(t *testing.T) {
	var gotAuth string
	var gotBody subscribeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/subscriptions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(subscribeResponse{
			SubscriptionID: "sub_remote_1",
			Message:        "subscribed",
		})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(config.TransportConfig{
		BaseURL:        srv.URL,
		APIKey:         "secret-key",
		TimeoutSeconds: 5,
	})

	res, err := tr.Submit(context.Background(), subscription.Data{
		Email:  "user@example.com",
		Source: "landing-hero",
	})
	require.NoError(t, err)
	assert.Equal(t, "sub_remote_1", res.SubscriptionID)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "user@example.com", gotBody.Email)
	assert.Equal(t, "landing-hero", gotBody.Source)
}

func TestHTTPTransportProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(subscribeResponse{Error: "list archived"})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(config.TransportConfig{BaseURL: srv.URL, TimeoutSeconds: 5})

	_, err := tr.Submit(context.Background(), subscription.Data{Email: "user@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list archived")
}

func TestHTTPTransportMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(config.TransportConfig{BaseURL: srv.URL, TimeoutSeconds: 5})

	_, err := tr.Submit(context.Background(), subscription.Data{Email: "user@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing subscription id")
}
