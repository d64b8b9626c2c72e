package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/routevox/trip-planner/pkg/common"
	"github.com/routevox/trip-planner/pkg/geo"
	"github.com/routevox/trip-planner/pkg/logger"
	"go.uber.org/zap"
)

// geocodeMaxCandidates caps how many interpretations the fallback geocoder
// reports. More than three only adds noise to confirmation dialogs.
const geocodeMaxCandidates = 3

// geocodeBiasDegrees is the half-width of the viewport bias box, roughly
// 50km at mid latitudes.
const geocodeBiasDegrees = 0.45

// Geocode converts free text into up to three coordinate candidates, most
// relevant first.
func (g *GoogleSources) Geocode(ctx context.Context, query string, bias *geo.Point) ([]SourceResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, common.NewBadRequestError("query is required", nil)
	}

	cacheKey := fmt.Sprintf("%s%s:%s", geocodeCachePrefix, biasKey(bias), strings.ToLower(strings.TrimSpace(query)))
	var cached []SourceResult
	if g.getCached(ctx, cacheKey, &cached) {
		return cached, nil
	}

	params := url.Values{}
	params.Set("address", query)
	params.Set("key", g.apiKey)
	if bias != nil {
		params.Set("bounds", fmt.Sprintf("%f,%f|%f,%f",
			bias.Lat-geocodeBiasDegrees, bias.Lng-geocodeBiasDegrees,
			bias.Lat+geocodeBiasDegrees, bias.Lng+geocodeBiasDegrees))
	}
	if g.RegionBias != "" {
		params.Set("region", g.RegionBias)
	}
	if g.LanguageBias != "" {
		params.Set("language", g.LanguageBias)
	}

	reqURL := fmt.Sprintf("%s/json?%s", g.geocodingBaseURL, params.Encode())
	body, err := g.doGet(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Status  string `json:"status"`
		Results []struct {
			PlaceID          string `json:"place_id"`
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
		ErrorMessage string `json:"error_message"`
	}

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, common.NewInternalServerError("failed to parse geocoding response")
	}

	if apiResp.Status != "OK" && apiResp.Status != "ZERO_RESULTS" {
		logger.WarnContext(ctx, "geocoding API error", zap.String("status", apiResp.Status), zap.String("error", apiResp.ErrorMessage))
		return nil, common.NewUpstreamError(fmt.Sprintf("geocoding API error: %s", apiResp.Status), nil)
	}

	results := make([]SourceResult, 0, geocodeMaxCandidates)
	for _, r := range apiResp.Results {
		results = append(results, SourceResult{
			Latitude:         r.Geometry.Location.Lat,
			Longitude:        r.Geometry.Location.Lng,
			FormattedAddress: r.FormattedAddress,
			PlaceID:          r.PlaceID,
		})
		if len(results) == geocodeMaxCandidates {
			break
		}
	}

	if len(results) > 0 {
		g.putCached(ctx, cacheKey, results, geocodeCacheTTL)
	}
	return results, nil
}
