package location

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/routevox/trip-planner/pkg/common"
	"github.com/routevox/trip-planner/pkg/logger"
	"go.uber.org/zap"
)

// ValidateAddress checks a postal address for completeness and returns its
// geocode. Found is false when the validator could not place the address at
// all, which is an answer rather than a failure.
func (g *GoogleSources) ValidateAddress(ctx context.Context, address, regionCode string) (*ValidationResult, error) {
	if strings.TrimSpace(address) == "" {
		return nil, common.NewBadRequestError("address is required", nil)
	}
	if regionCode == "" {
		regionCode = g.RegionBias
	}

	cacheKey := fmt.Sprintf("%s%s:%s", validateCachePrefix, regionCode, strings.ToLower(strings.TrimSpace(address)))
	var cached ValidationResult
	if g.getCached(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	payload := map[string]interface{}{
		"address": map[string]interface{}{
			"addressLines": []string{address},
		},
	}
	if regionCode != "" {
		payload["address"].(map[string]interface{})["regionCode"] = strings.ToUpper(regionCode)
	}

	reqURL := fmt.Sprintf("%s/v1:validateAddress?key=%s", g.validationBaseURL, g.apiKey)
	body, err := g.doPost(ctx, reqURL, payload)
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Result struct {
			Verdict struct {
				AddressComplete          bool `json:"addressComplete"`
				HasUnconfirmedComponents bool `json:"hasUnconfirmedComponents"`
			} `json:"verdict"`
			Address struct {
				FormattedAddress          string   `json:"formattedAddress"`
				UnconfirmedComponentTypes []string `json:"unconfirmedComponentTypes"`
			} `json:"address"`
			Geocode struct {
				Location struct {
					Latitude  float64 `json:"latitude"`
					Longitude float64 `json:"longitude"`
				} `json:"location"`
				PlaceID string `json:"placeId"`
			} `json:"geocode"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, common.NewInternalServerError("failed to parse address validation response")
	}

	if apiResp.Error != nil {
		logger.WarnContext(ctx, "address validation API error",
			zap.String("status", apiResp.Error.Status),
			zap.String("error", apiResp.Error.Message))
		return nil, common.NewUpstreamError(fmt.Sprintf("address validation API error: %s", apiResp.Error.Status), nil)
	}

	result := &ValidationResult{
		AddressComplete: apiResp.Result.Verdict.AddressComplete,
	}
	if apiResp.Result.Verdict.HasUnconfirmedComponents {
		result.UnconfirmedComponents = apiResp.Result.Address.UnconfirmedComponentTypes
		if len(result.UnconfirmedComponents) == 0 {
			result.UnconfirmedComponents = []string{"unknown"}
		}
	}

	loc := apiResp.Result.Geocode.Location
	if loc.Latitude != 0 || loc.Longitude != 0 {
		result.Found = true
		result.Latitude = loc.Latitude
		result.Longitude = loc.Longitude
		result.FormattedAddress = apiResp.Result.Address.FormattedAddress
		result.PlaceID = apiResp.Result.Geocode.PlaceID
	}

	g.putCached(ctx, cacheKey, result, validateCacheTTL)
	return result, nil
}
