package rentcast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homesearch/internal/config"
	"homesearch/internal/metrics"
	"homesearch/internal/model"
)

const sampleListings = `[
  {
    "id": "1",
    "formattedAddress": "123 Main St, San Francisco, CA 94103",
    "propertyType": "Condo",
    "price": 1250000,
    "bedrooms": 2,
    "bathrooms": 2,
    "squareFootage": 1100,
    "lotSize": 0,
    "status": "Active",
    "yearBuilt": 2005
  },
  {
    "id": "2",
    "formattedAddress": "9 Elm St, San Francisco, CA 94103",
    "propertyType": "Single Family",
    "price": 1900000
  }
]`

func testConfig(baseURL string) *config.RentCastConfig {
	return &config.RentCastConfig{
		APIKey:   "secret",
		BaseURL:  baseURL,
		PageSize: 500,
		CallAPI:  true,
		Timeout:  5,
	}
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]model.ListingRecord
	puts int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]model.ListingRecord)}
}

func (c *mapCache) GetListings(_ context.Context, key string) ([]model.ListingRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data[key]
	return r, ok, nil
}

func (c *mapCache) PutListings(_ context.Context, key string, records []model.ListingRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = records
	c.puts++
	return nil
}

func TestFetchListings_Success(t *testing.T) {
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleListings))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	res := client.FetchListings(context.Background(), model.SearchFilter{
		ZipCode:              str("94103"),
		MinimumPrice:         f64(1000000),
		MinimumSquareFootage: f64(800),
		MaximumSquareFootage: f64(2000),
	})

	require.False(t, res.IsError(), res.Error)
	assert.Equal(t, "secret", gotKey)
	assert.Contains(t, gotQuery, "zipCode=94103")
	assert.Contains(t, gotQuery, "price=999999.9:*")
	assert.Contains(t, gotQuery, "squareFootage=799.9:2000.1")

	require.Len(t, res.Data, 2)
	first := res.Data[0]
	assert.Equal(t, "123 Main St, San Francisco, CA 94103", *first.Address)
	assert.Equal(t, "Condo", *first.PropertyType)
	assert.Equal(t, 1250000.0, *first.Price)
	assert.Equal(t, 1100.0, *first.SquareFootage)
	assert.Nil(t, res.Data[1].Bedrooms)

	assert.JSONEq(t, `{"data":[
		{"address":"123 Main St, San Francisco, CA 94103","property_type":"Condo","price":1250000,"bedrooms":2,"bathrooms":2,"square_footage":1100,"lot_size":0},
		{"address":"9 Elm St, San Francisco, CA 94103","property_type":"Single Family","price":1900000}
	]}`, res.String())
}

func TestFetchListings_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	res := NewClient(testConfig(srv.URL)).FetchListings(context.Background(), model.SearchFilter{})

	assert.True(t, res.IsError())
	assert.Equal(t, "HTTP 404", res.Error)
	assert.Nil(t, res.Data)
	assert.JSONEq(t, `{"error":"HTTP 404"}`, res.String())
}

func TestFetchListings_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	var res model.ToolResult
	require.NotPanics(t, func() {
		res = NewClient(testConfig(url)).FetchListings(context.Background(), model.SearchFilter{})
	})
	assert.True(t, res.IsError())
	assert.NotEmpty(t, res.Error)
}

func TestFetchListings_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	res := NewClient(testConfig(srv.URL)).FetchListings(context.Background(), model.SearchFilter{})
	assert.True(t, res.IsError())
	assert.Contains(t, res.Error, "failed to decode listings")
}

func TestFetchListings_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	res := NewClient(testConfig(srv.URL)).FetchListings(context.Background(), model.SearchFilter{})
	require.False(t, res.IsError())
	assert.JSONEq(t, `{"data":[]}`, res.String())
}

func TestFetchListings_OfflineKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.CallAPI = false
	res := NewClient(cfg).FetchListings(context.Background(), model.SearchFilter{})

	assert.Equal(t, "0", gotKey)
	assert.Equal(t, "HTTP 401", res.Error)
}

func TestFetchListings_CachesOnlySuccess(t *testing.T) {
	var hits atomic.Int32
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sampleListings))
	}))
	defer srv.Close()

	cache := newMapCache()
	reg := prometheus.NewRegistry()
	client := NewClient(testConfig(srv.URL), WithCache(cache), WithMetrics(metrics.New(reg)))
	ctx := context.Background()
	zip := model.SearchFilter{ZipCode: str("94103")}

	first := client.FetchListings(ctx, zip)
	second := client.FetchListings(ctx, zip)
	require.False(t, first.IsError())
	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, cache.puts)

	fail.Store(true)
	other := model.SearchFilter{ZipCode: str("10001")}
	assert.Equal(t, "HTTP 500", client.FetchListings(ctx, other).Error)
	assert.Equal(t, "HTTP 500", client.FetchListings(ctx, other).Error)
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, 1, cache.puts)
}

func TestRequestURL(t *testing.T) {
	client := NewClient(testConfig("https://api.rentcast.io/v1/listings/sale"))
	assert.Equal(t,
		"https://api.rentcast.io/v1/listings/sale?limit=500&status=Active&propertyType=Condo",
		client.RequestURL(model.SearchFilter{PropertyType: str("Condo")}))
}
