package location

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/routevox/trip-planner/pkg/common"
	redisClient "github.com/routevox/trip-planner/pkg/redis"
	"github.com/routevox/trip-planner/pkg/resilience"
)

const (
	placesCachePrefix   = "places:"
	placesCacheTTL      = 1 * time.Hour
	validateCachePrefix = "validate:"
	validateCacheTTL    = 24 * time.Hour
	geocodeCachePrefix  = "geocode:"
	geocodeCacheTTL     = 24 * time.Hour
	nearbyCachePrefix   = "nearby:"
	nearbyCacheTTL      = 10 * time.Minute

	// biasRadiusMeters is the location bias radius for text searches.
	biasRadiusMeters = "50000"
)

// GoogleSources talks to the Google places, address validation and
// geocoding endpoints and implements all resolver source interfaces.
type GoogleSources struct {
	apiKey     string
	httpClient *http.Client
	redis      redisClient.ClientInterface
	breaker    *resilience.CircuitBreaker

	placesBaseURL     string
	validationBaseURL string
	geocodingBaseURL  string

	retryConfig resilience.RetryConfig

	// Optional: restrict results to a region/language.
	RegionBias   string
	LanguageBias string
}

// NewGoogleSources creates a provider client. The redis client may be nil,
// which disables response caching.
func NewGoogleSources(apiKey, placesBaseURL, validationBaseURL, geocodingBaseURL string, redis redisClient.ClientInterface) *GoogleSources {
	return &GoogleSources{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		redis:             redis,
		placesBaseURL:     placesBaseURL,
		validationBaseURL: validationBaseURL,
		geocodingBaseURL:  geocodingBaseURL,
		retryConfig:       resilience.DefaultRetryConfig(),
	}
}

// SetCircuitBreaker enables circuit breaker protection for external API calls.
func (g *GoogleSources) SetCircuitBreaker(cb *resilience.CircuitBreaker) {
	g.breaker = cb
}

// doGet executes a GET request, optionally wrapped by the circuit breaker.
func (g *GoogleSources) doGet(ctx context.Context, reqURL string) ([]byte, error) {
	return g.do(ctx, http.MethodGet, reqURL, nil)
}

// doPost executes a POST request with a JSON body.
func (g *GoogleSources) doPost(ctx context.Context, reqURL string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, common.NewInternalErrorWithError("failed to encode provider request", err)
	}
	return g.do(ctx, http.MethodPost, reqURL, body)
}

func (g *GoogleSources) do(ctx context.Context, method, reqURL string, body []byte) ([]byte, error) {
	attempt := func(ctx context.Context) (interface{}, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resilience.IsRetryableHTTPStatus(resp.StatusCode) {
			return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	call := func(ctx context.Context) (interface{}, error) {
		return resilience.RetryWithName(ctx, g.retryConfig, attempt, "location-provider")
	}

	if g.breaker != nil {
		result, err := g.breaker.Execute(ctx, call)
		if err != nil {
			return nil, common.NewUpstreamError("location provider circuit open or request failed", err)
		}
		return result.([]byte), nil
	}

	result, err := call(ctx)
	if err != nil {
		return nil, common.NewUpstreamError("location provider request failed", err)
	}
	return result.([]byte), nil
}

// Cache helpers

func (g *GoogleSources) getCached(ctx context.Context, key string, out interface{}) bool {
	if g.redis == nil {
		return false
	}
	data, err := g.redis.GetString(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(data), out) == nil
}

func (g *GoogleSources) putCached(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if g.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	g.redis.SetWithExpiration(ctx, key, data, ttl)
}
