package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interpretek/booking-core/internal/core"
	"github.com/interpretek/booking-core/internal/domain/model"
	apperrors "github.com/interpretek/booking-core/internal/errors"
)

// mapCache is a minimal in-memory CacheRepository for cache-path tests.
type mapCache struct {
	core.CacheRepository

	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func TestNewClient(t *testing.T) {
	t.Run("requires base url", func(t *testing.T) {
		_, err := NewClient(Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base url")
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		client, err := NewClient(Config{BaseURL: "http://directory.local/"})
		require.NoError(t, err)
		assert.Equal(t, "http://directory.local", client.baseURL)
	})
}

func TestClient_GetTranslator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translators/tr-1", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(model.Translator{
			ID:   "tr-1",
			Name: "Amira",
			Pairs: []model.LanguagePair{
				{From: "swedish", To: "arabic"},
			},
			Certification: model.CertificationCertified,
			AcceptsPhone:  true,
		})
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	tr, err := client.GetTranslator(context.Background(), "tr-1")
	require.NoError(t, err)
	assert.Equal(t, "tr-1", tr.ID)
	assert.Equal(t, "Amira", tr.Name)
	assert.Equal(t, model.CertificationCertified, tr.Certification)
	assert.True(t, tr.AcceptsPhone)
}

func TestClient_GetCustomer_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such identity", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.GetCustomer(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestClient_GetCustomer_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "directory exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.GetCustomer(context.Background(), "cust-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory exploded")
}

func TestClient_KindOf(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		want    model.UserKind
		wantErr bool
	}{
		{name: "customer", kind: "customer", want: model.UserKindCustomer},
		{name: "translator", kind: "translator", want: model.UserKindTranslator},
		{name: "unknown kind rejected", kind: "robot", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/identities/user-1", r.URL.Path)
				_ = json.NewEncoder(w).Encode(map[string]string{"kind": tt.kind})
			}))
			defer srv.Close()

			client, err := NewClient(Config{BaseURL: srv.URL})
			require.NoError(t, err)

			kind, err := client.KindOf(context.Background(), "user-1")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown kind")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestClient_ListTranslators(t *testing.T) {
	t.Run("fetches and caches the listing", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			assert.Equal(t, "/translators", r.URL.Path)
			_ = json.NewEncoder(w).Encode([]*model.Translator{
				{ID: "tr-1", AcceptsPhone: true},
				{ID: "tr-2", AcceptsPhone: true},
			})
		}))
		defer srv.Close()

		cache := newMapCache()
		client, err := NewClient(Config{BaseURL: srv.URL, Cache: cache})
		require.NoError(t, err)

		first, err := client.ListTranslators(context.Background())
		require.NoError(t, err)
		require.Len(t, first, 2)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, cache.sets)

		// Second call is served from the cache.
		second, err := client.ListTranslators(context.Background())
		require.NoError(t, err)
		require.Len(t, second, 2)
		assert.Equal(t, "tr-1", second[0].ID)
		assert.Equal(t, 1, calls)
	})

	t.Run("corrupt cache entry falls through to the origin", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			_ = json.NewEncoder(w).Encode([]*model.Translator{{ID: "tr-1"}})
		}))
		defer srv.Close()

		cache := newMapCache()
		cache.entries[translatorsCacheKey] = []byte("{not json")

		client, err := NewClient(Config{BaseURL: srv.URL, Cache: cache})
		require.NoError(t, err)

		translators, err := client.ListTranslators(context.Background())
		require.NoError(t, err)
		require.Len(t, translators, 1)
		assert.Equal(t, 1, calls)
	})

	t.Run("works without a cache", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode([]*model.Translator{})
		}))
		defer srv.Close()

		client, err := NewClient(Config{BaseURL: srv.URL})
		require.NoError(t, err)

		translators, err := client.ListTranslators(context.Background())
		require.NoError(t, err)
		assert.Empty(t, translators)
	})
}
