package routing

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/routevox/trip-planner/internal/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	c.Request = req

	return c, w
}

func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	return response
}

func TestHandler_ComputeRoute_Success(t *testing.T) {
	// Arrange
	resolver := new(mockResolver)
	router := new(mockRouter)
	handler := NewHandler(NewAssembler(resolver, router))

	resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything).
		Return(resolvedAt(40.7128, -74.0060, "Somewhere, NY"), nil).Twice()
	router.On("ComputeRoute", mock.Anything, mock.Anything).Return(&Route{
		DistanceMeters:  5400,
		DurationSeconds: 780,
		EncodedPolyline: testPolyline,
	}, nil)

	c, w := setupTestContext(http.MethodPost, "/api/v1/routes", map[string]interface{}{
		"stops": []interface{}{"downtown", "midtown"},
	})

	// Act
	handler.ComputeRoute(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(w)
	assert.Equal(t, true, response["success"])
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(5400), data["distance_meters"])
}

func TestHandler_ComputeRoute_AmbiguityReturns409(t *testing.T) {
	// Arrange
	resolver := new(mockResolver)
	router := new(mockRouter)
	handler := NewHandler(NewAssembler(resolver, router))

	resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &location.ConfirmationRequiredError{
			Reason: "geocoding returned 2 candidates up to 2000.0 km apart",
			Alternatives: []location.Alternative{
				{Source: location.SourceGeocoding, Latitude: 39.8, Longitude: -89.6, FormattedAddress: "Springfield, IL"},
				{Source: location.SourceGeocoding, Latitude: 42.1, Longitude: -72.6, FormattedAddress: "Springfield, MA"},
			},
		})

	c, w := setupTestContext(http.MethodPost, "/api/v1/routes", map[string]interface{}{
		"stops": []interface{}{"springfield", "midtown"},
	})

	// Act
	handler.ComputeRoute(c)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
	response := parseResponse(w)
	assert.Equal(t, false, response["success"])

	errInfo := response["error"].(map[string]interface{})
	assert.Equal(t, "confirmation_required", errInfo["error_code"])

	details := errInfo["details"].(map[string]interface{})
	assert.Equal(t, float64(0), details["failing_stop_index"])
	assert.Len(t, details["alternatives"].([]interface{}), 2)
	assert.Len(t, details["stops"].([]interface{}), 2)
}

func TestHandler_ComputeRoute_SingleStopRejected(t *testing.T) {
	// Arrange
	handler := NewHandler(NewAssembler(new(mockResolver), new(mockRouter)))

	c, w := setupTestContext(http.MethodPost, "/api/v1/routes", map[string]interface{}{
		"stops": []interface{}{"downtown"},
	})

	// Act
	handler.ComputeRoute(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ComputeRoute_UnknownKindRejected(t *testing.T) {
	// Arrange
	handler := NewHandler(NewAssembler(new(mockResolver), new(mockRouter)))

	c, w := setupTestContext(http.MethodPost, "/api/v1/routes", map[string]interface{}{
		"stops": []interface{}{
			map[string]interface{}{"original": "downtown", "kind": "postal"},
			"midtown",
		},
	})

	// Act
	handler.ComputeRoute(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ComputeRoute_InvalidJSON(t *testing.T) {
	// Arrange
	handler := NewHandler(NewAssembler(new(mockResolver), new(mockRouter)))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/routes", bytes.NewReader([]byte("{not json")))

	// Act
	handler.ComputeRoute(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
