package location

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/routevox/trip-planner/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockNearby struct {
	mock.Mock
}

func (m *mockNearby) NearestByKeyword(ctx context.Context, keyword string, at geo.Point, limit int) ([]NearbyPlace, error) {
	args := m.Called(ctx, keyword, at, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]NearbyPlace), args.Error(1)
}

func setupJSONContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	bodyBytes, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func setupQueryContext(path string, query map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	params := url.Values{}
	for k, v := range query {
		params.Set(k, v)
	}
	c.Request = httptest.NewRequest(http.MethodGet, path+"?"+params.Encode(), nil)

	return c, w
}

func TestHandler_ResolveLocation_Success(t *testing.T) {
	// Arrange
	engine, places, _, geocoder := newTestEngine()
	handler := NewHandler(engine, new(mockNearby))

	places.On("TextSearch", mock.Anything, mock.Anything, mock.Anything).Return(&SourceResult{
		Latitude: 40.8296, Longitude: -73.9262,
		FormattedAddress: "1 E 161 St, The Bronx, NY",
		DisplayName:      "Yankee Stadium",
	}, nil)
	geocoder.On("Geocode", mock.Anything, mock.Anything, mock.Anything).Return([]SourceResult{
		{Latitude: 40.8302, Longitude: -73.9270, FormattedAddress: "Yankee Stadium, The Bronx, NY"},
	}, nil)

	c, w := setupJSONContext(http.MethodPost, "/api/v1/geocode", map[string]interface{}{
		"location": map[string]interface{}{"original": "Yankee Stadium", "kind": "landmark"},
	})

	// Act
	handler.ResolveLocation(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool     `json:"success"`
		Data    Resolved `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, SourcePlaces, response.Data.Source)
}

func TestHandler_ResolveLocation_AmbiguityReturns409(t *testing.T) {
	// Arrange
	engine, places, _, geocoder := newTestEngine()
	handler := NewHandler(engine, new(mockNearby))

	places.On("TextSearch", mock.Anything, mock.Anything, mock.Anything).Return(&SourceResult{
		Latitude: 40.8296, Longitude: -73.9262, FormattedAddress: "The Bronx, NY",
	}, nil)
	geocoder.On("Geocode", mock.Anything, mock.Anything, mock.Anything).Return([]SourceResult{
		{Latitude: 40.7505, Longitude: -73.9934, FormattedAddress: "Manhattan, NY"},
	}, nil)

	c, w := setupJSONContext(http.MethodPost, "/api/v1/geocode", map[string]interface{}{
		"location": map[string]interface{}{"original": "the stadium", "kind": "landmark"},
	})

	// Act
	handler.ResolveLocation(c)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)

	var response struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string `json:"error_code"`
			Details   struct {
				Alternatives []Alternative `json:"alternatives"`
			} `json:"details"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "confirmation_required", response.Error.ErrorCode)
	assert.Len(t, response.Error.Details.Alternatives, 2)
}

func TestHandler_ResolveLocation_BadKindRejected(t *testing.T) {
	// Arrange
	engine, _, _, _ := newTestEngine()
	handler := NewHandler(engine, new(mockNearby))

	c, w := setupJSONContext(http.MethodPost, "/api/v1/geocode", map[string]interface{}{
		"location": map[string]interface{}{"original": "somewhere", "kind": "postal"},
	})

	// Act
	handler.ResolveLocation(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ResolveLocation_OutOfRangeBiasRejected(t *testing.T) {
	// Arrange
	engine, _, _, _ := newTestEngine()
	handler := NewHandler(engine, new(mockNearby))

	c, w := setupJSONContext(http.MethodPost, "/api/v1/geocode", map[string]interface{}{
		"location": "somewhere",
		"bias":     map[string]float64{"lat": 91.0, "lng": 0.0},
	})

	// Act
	handler.ResolveLocation(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_NearbyPlaces_Success(t *testing.T) {
	// Arrange
	engine, _, _, _ := newTestEngine()
	nearby := new(mockNearby)
	handler := NewHandler(engine, nearby)

	nearby.On("NearestByKeyword", mock.Anything, "pharmacy", geo.Point{Lat: 40.7128, Lng: -74.0060}, 5).
		Return([]NearbyPlace{
			{SourceResult: SourceResult{DisplayName: "Near Pharmacy"}, DistanceKm: 0.2},
		}, nil)

	c, w := setupQueryContext("/api/v1/places/nearby", map[string]string{
		"keyword":   "pharmacy",
		"latitude":  "40.7128",
		"longitude": "-74.0060",
	})

	// Act
	handler.NearbyPlaces(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	nearby.AssertExpectations(t)
}

func TestHandler_NearbyPlaces_MissingKeyword(t *testing.T) {
	// Arrange
	engine, _, _, _ := newTestEngine()
	handler := NewHandler(engine, new(mockNearby))

	c, w := setupQueryContext("/api/v1/places/nearby", map[string]string{
		"latitude":  "40.7128",
		"longitude": "-74.0060",
	})

	// Act
	handler.NearbyPlaces(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_NearbyPlaces_InvalidCoordinates(t *testing.T) {
	// Arrange
	engine, _, _, _ := newTestEngine()
	handler := NewHandler(engine, new(mockNearby))

	c, w := setupQueryContext("/api/v1/places/nearby", map[string]string{
		"keyword":  "pharmacy",
		"latitude": "not-a-number",
	})

	// Act
	handler.NearbyPlaces(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
