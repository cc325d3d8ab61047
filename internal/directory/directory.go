// Package directory resolves customer and translator identities from the
// identity platform over HTTP, with a short redis-backed cache in front of
// the translator listing used by notification fan-out.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/interpretek/booking-core/internal/core"
	"github.com/interpretek/booking-core/internal/domain/model"
	apperrors "github.com/interpretek/booking-core/internal/errors"
)

const defaultListCacheTTL = 30 * time.Second

// Config captures runtime configuration for the directory client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
	// Cache, when set, caches the translator listing between fan-outs.
	Cache        core.CacheRepository
	ListCacheTTL time.Duration
	Logger       *slog.Logger
}

// Client is the HTTP implementation of core.UserDirectory.
type Client struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	cache        core.CacheRepository
	listCacheTTL time.Duration
	logger       *slog.Logger
}

var _ core.UserDirectory = (*Client)(nil)

// NewClient builds a directory client. Callers must provide a base URL.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("directory base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	ttl := cfg.ListCacheTTL
	if ttl <= 0 {
		ttl = defaultListCacheTTL
	}

	var logger *slog.Logger
	if cfg.Logger != nil {
		logger = cfg.Logger.With("component", "user_directory")
	}

	return &Client{
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		client:       hc,
		cache:        cfg.Cache,
		listCacheTTL: ttl,
		logger:       logger,
	}, nil
}

// GetTranslator resolves one translator profile.
func (c *Client) GetTranslator(ctx context.Context, id string) (*model.Translator, error) {
	var tr model.Translator
	if err := c.getJSON(ctx, "/translators/"+url.PathEscape(id), &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// GetCustomer resolves one customer profile.
func (c *Client) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	var cust model.Customer
	if err := c.getJSON(ctx, "/customers/"+url.PathEscape(id), &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

// KindOf reports whether the id names a customer or a translator.
func (c *Client) KindOf(ctx context.Context, id string) (model.UserKind, error) {
	var out struct {
		Kind model.UserKind `json:"kind"`
	}
	if err := c.getJSON(ctx, "/identities/"+url.PathEscape(id), &out); err != nil {
		return "", err
	}
	switch out.Kind {
	case model.UserKindCustomer, model.UserKindTranslator:
		return out.Kind, nil
	default:
		return "", apperrors.Internalf("directory returned unknown kind %q for %s", out.Kind, id)
	}
}

const translatorsCacheKey = "booking:directory:translators"

// ListTranslators returns all active translators, serving from the cache
// when a recent listing exists.
func (c *Client) ListTranslators(ctx context.Context) ([]*model.Translator, error) {
	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, translatorsCacheKey); err == nil && raw != nil {
			var cached []*model.Translator
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			// Corrupt cache entry; fall through to the origin.
		}
	}

	var translators []*model.Translator
	if err := c.getJSON(ctx, "/translators", &translators); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if raw, err := json.Marshal(translators); err == nil {
			if err := c.cache.Set(ctx, translatorsCacheKey, raw, c.listCacheTTL); err != nil && c.logger != nil {
				c.logger.WarnContext(ctx, "cache translator listing", "error", err)
			}
		}
	}
	return translators, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("directory request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFoundf("directory identity not found: %s", path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.Internalf("directory %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode directory response: %w", err)
	}
	return nil
}
