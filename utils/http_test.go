package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"price-hunter/internal/types"
)

func testConfig() *types.Config {
	config := types.DefaultConfig()
	config.RequestDelay = 10 * time.Millisecond // Faster for testing
	config.Timeout = 5 * time.Second
	return config
}

func TestNewHTTPClient(t *testing.T) {
	config := types.DefaultConfig()
	logger := logrus.New()

	client := NewHTTPClient(config, logger)

	assert.NotNil(t, client)
	assert.Equal(t, config, client.config)
	assert.Equal(t, logger, client.logger)
	assert.NotNil(t, client.client)
	assert.NotNil(t, client.limiter)

	client.Close()
}

func TestHTTPClient_GetJSON_Success(t *testing.T) {
	var gotUA, gotLang, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		gotCustom = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"ok","count":2}`))
	}))
	defer server.Close()

	config := testConfig()
	client := NewHTTPClient(config, logrus.New())
	defer client.Close()

	var out struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	err := client.GetJSON(context.Background(), server.URL, map[string]string{"Referer": "https://example.com/"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Name)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, config.UserAgent, gotUA)
	assert.Equal(t, config.AcceptLanguage, gotLang)
	assert.Equal(t, "https://example.com/", gotCustom)
}

func TestHTTPClient_PostJSON_SendsBody(t *testing.T) {
	var received map[string]string
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&received)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewHTTPClient(testConfig(), logrus.New())
	defer client.Close()

	var out map[string]interface{}
	err := client.PostJSON(context.Background(), server.URL, nil, map[string]string{"q": "iphone"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "iphone", received["q"])
}

func TestHTTPClient_Get_NotFound(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(testConfig(), logrus.New())
	defer client.Close()

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), server.URL, nil, &out)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 404")
	assert.Equal(t, 1, calls, "requests are not retried")
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>blocked</html>`))
	}))
	defer server.Close()

	client := NewHTTPClient(testConfig(), logrus.New())
	defer client.Close()

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), server.URL, nil, &out)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode JSON response")
}

func TestHTTPClient_Get_ContextCancelled(t *testing.T) {
	config := testConfig()
	config.RequestDelay = 100 * time.Millisecond
	client := NewHTTPClient(config, logrus.New())
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	var out map[string]interface{}
	err := client.GetJSON(ctx, "http://example.com", nil, &out)

	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPClient_Close(t *testing.T) {
	client := NewHTTPClient(types.DefaultConfig(), logrus.New())

	// Should not panic
	client.Close()
}
