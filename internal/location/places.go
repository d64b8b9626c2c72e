package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/routevox/trip-planner/pkg/common"
	"github.com/routevox/trip-planner/pkg/geo"
	"github.com/routevox/trip-planner/pkg/logger"
	"go.uber.org/zap"
)

// TextSearch finds the best-rated place matching a free-text query,
// optionally biased towards a point.
func (g *GoogleSources) TextSearch(ctx context.Context, query string, bias *geo.Point) (*SourceResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, common.NewBadRequestError("query is required", nil)
	}

	cacheKey := fmt.Sprintf("%stext:%s:%s", placesCachePrefix, biasKey(bias), strings.ToLower(strings.TrimSpace(query)))
	var cached SourceResult
	if g.getCached(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", g.apiKey)
	if bias != nil {
		params.Set("location", fmt.Sprintf("%f,%f", bias.Lat, bias.Lng))
		params.Set("radius", biasRadiusMeters)
	}
	if g.RegionBias != "" {
		params.Set("region", g.RegionBias)
	}
	if g.LanguageBias != "" {
		params.Set("language", g.LanguageBias)
	}

	reqURL := fmt.Sprintf("%s/textsearch/json?%s", g.placesBaseURL, params.Encode())
	body, err := g.doGet(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Status  string `json:"status"`
		Results []struct {
			PlaceID          string `json:"place_id"`
			Name             string `json:"name"`
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
		return nil, common.NewInternalServerError("failed to parse places response")
	}

	if apiResp.Status == "ZERO_RESULTS" || (apiResp.Status == "OK" && len(apiResp.Results) == 0) {
		return nil, ErrNoResults
	}
	if apiResp.Status != "OK" {
		logger.WarnContext(ctx, "places API error", zap.String("status", apiResp.Status), zap.String("error", apiResp.ErrorMessage))
		return nil, common.NewUpstreamError(fmt.Sprintf("places API error: %s", apiResp.Status), nil)
	}

	top := apiResp.Results[0]
	result := &SourceResult{
		Latitude:         top.Geometry.Location.Lat,
		Longitude:        top.Geometry.Location.Lng,
		FormattedAddress: top.FormattedAddress,
		DisplayName:      top.Name,
		PlaceID:          top.PlaceID,
	}

	g.putCached(ctx, cacheKey, result, placesCacheTTL)
	return result, nil
}

// NearestByKeyword ranks places matching a keyword by straight-line
// distance from a point, closest first.
func (g *GoogleSources) NearestByKeyword(ctx context.Context, keyword string, at geo.Point, limit int) ([]NearbyPlace, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, common.NewBadRequestError("keyword is required", nil)
	}
	if limit <= 0 {
		limit = 5
	}

	cacheKey := fmt.Sprintf("%s%.4f,%.4f:%s", nearbyCachePrefix, at.Lat, at.Lng, strings.ToLower(strings.TrimSpace(keyword)))
	var cached []NearbyPlace
	if g.getCached(ctx, cacheKey, &cached) {
		return clampNearby(cached, limit), nil
	}

	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("location", fmt.Sprintf("%f,%f", at.Lat, at.Lng))
	params.Set("rankby", "distance")
	params.Set("key", g.apiKey)
	if g.LanguageBias != "" {
		params.Set("language", g.LanguageBias)
	}

	reqURL := fmt.Sprintf("%s/nearbysearch/json?%s", g.placesBaseURL, params.Encode())
	body, err := g.doGet(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Status  string `json:"status"`
		Results []struct {
			PlaceID  string  `json:"place_id"`
			Name     string  `json:"name"`
			Vicinity string  `json:"vicinity"`
			Rating   float64 `json:"rating"`
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
			OpeningHours *struct {
				OpenNow bool `json:"open_now"`
			} `json:"opening_hours"`
		} `json:"results"`
		ErrorMessage string `json:"error_message"`
	}

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, common.NewInternalServerError("failed to parse places response")
	}

	if apiResp.Status != "OK" && apiResp.Status != "ZERO_RESULTS" {
		logger.WarnContext(ctx, "places API error", zap.String("status", apiResp.Status), zap.String("error", apiResp.ErrorMessage))
		return nil, common.NewUpstreamError(fmt.Sprintf("places API error: %s", apiResp.Status), nil)
	}

	places := make([]NearbyPlace, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		place := NearbyPlace{
			SourceResult: SourceResult{
				Latitude:         r.Geometry.Location.Lat,
				Longitude:        r.Geometry.Location.Lng,
				FormattedAddress: r.Vicinity,
				DisplayName:      r.Name,
				PlaceID:          r.PlaceID,
			},
			DistanceKm: geo.Haversine(at.Lat, at.Lng, r.Geometry.Location.Lat, r.Geometry.Location.Lng),
			Rating:     r.Rating,
		}
		if r.OpeningHours != nil {
			open := r.OpeningHours.OpenNow
			place.OpenNow = &open
		}
		places = append(places, place)
	}

	sort.SliceStable(places, func(i, j int) bool {
		return places[i].DistanceKm < places[j].DistanceKm
	})

	g.putCached(ctx, cacheKey, places, nearbyCacheTTL)
	return clampNearby(places, limit), nil
}

func clampNearby(places []NearbyPlace, limit int) []NearbyPlace {
	if len(places) > limit {
		return places[:limit]
	}
	return places
}

func biasKey(bias *geo.Point) string {
	if bias == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f,%.4f", bias.Lat, bias.Lng)
}
