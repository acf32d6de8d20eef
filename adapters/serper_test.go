package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"price-hunter/internal/types"
	"price-hunter/pricing"
)

func newTestSerper(t *testing.T, handler http.HandlerFunc) *SerperAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := types.DefaultConfig()
	config.RequestDelay = 0
	config.Timeout = 5 * time.Second
	config.SerperAPIKey = "test-key"
	config.SerperURL = server.URL + "/shopping"

	logger, _ := test.NewNullLogger()
	return NewSerperAdapter(config, logger)
}

func TestSerperAdapter_GetStoreName(t *testing.T) {
	logger, _ := test.NewNullLogger()
	assert.Equal(t, "Google Shopping", NewSerperAdapter(types.DefaultConfig(), logger).GetStoreName())
}

func TestSerperAdapter_Search(t *testing.T) {
	var body map[string]string
	adapter := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/shopping", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"shopping": [
			{"title": "Apple iPhone 15 128GB", "price": "R$ 4.199,00", "link": "https://loja.example.com/iphone-15", "imageUrl": "https://img.example.com/1.jpg", "source": "Magazine Luiza"},
			{"title": "iPhone 15 128GB Preto", "price": "R$ 3.899,00", "link": "https://outra.example.com/p/2", "source": ""},
			{"title": "Capa iPhone 15", "price": "R$ 29,90", "link": "https://loja.example.com/capa", "source": "Loja"},
			{"title": "iPhone 15 sem link", "price": "R$ 1,00", "link": "", "source": "Loja"},
			{"title": "iPhone 15 128GB Azul", "price": "Consulte", "link": "https://loja.example.com/azul", "source": "Loja"}
		]}`))
	})

	candidates, err := adapter.Search(context.Background(), "iphone 15")

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"q": "iphone 15", "gl": "br", "hl": "pt-br"}, body)
	require.Len(t, candidates, 3)

	assert.Equal(t, types.Candidate{
		Title:          "Apple iPhone 15 128GB",
		Price:          4199,
		FormattedPrice: "R$ 4.199,00",
		Image:          "https://img.example.com/1.jpg",
		Link:           "https://loja.example.com/iphone-15",
		Store:          "Magazine Luiza",
	}, candidates[0])

	assert.Equal(t, "Google Shopping", candidates[1].Store)
	assert.Equal(t, 3899.0, candidates[1].Price)

	assert.Equal(t, "iPhone 15 128GB Azul", candidates[2].Title)
	assert.Equal(t, pricing.SentinelPrice, candidates[2].Price)
	assert.Equal(t, "Consulte", candidates[2].FormattedPrice)
}

func TestSerperAdapter_MissingKey(t *testing.T) {
	called := false
	adapter := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	adapter.config.SerperAPIKey = ""

	candidates, err := adapter.Search(context.Background(), "iphone 15")

	assert.Nil(t, candidates)
	assert.EqualError(t, err, "SERPER_API_KEY not configured")
	assert.False(t, called)
}

func TestSerperAdapter_ErrorStatus(t *testing.T) {
	adapter := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := adapter.Search(context.Background(), "iphone 15")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shopping search failed")
	assert.Contains(t, err.Error(), "unexpected status code: 403")
}

func TestSerperAdapter_InvalidJSON(t *testing.T) {
	adapter := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"shopping": [`))
	})

	_, err := adapter.Search(context.Background(), "iphone 15")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode JSON response")
}

func TestSerperAdapter_EmptyShopping(t *testing.T) {
	adapter := newTestSerper(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	candidates, err := adapter.Search(context.Background(), "iphone 15")

	require.NoError(t, err)
	assert.Empty(t, candidates)
}
