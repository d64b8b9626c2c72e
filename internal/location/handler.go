package location

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/routevox/trip-planner/pkg/common"
	"github.com/routevox/trip-planner/pkg/geo"
	"github.com/routevox/trip-planner/pkg/validation"
)

// Handler handles HTTP requests for single-location resolution.
type Handler struct {
	engine *Engine
	nearby NearbySearcher
}

// NewHandler creates a new location handler.
func NewHandler(engine *Engine, nearby NearbySearcher) *Handler {
	return &Handler{engine: engine, nearby: nearby}
}

// RegisterRoutes mounts the location endpoints on a router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/geocode", h.ResolveLocation)
	rg.GET("/places/nearby", h.NearbyPlaces)
}

// ResolveLocation resolves one location description into coordinates.
func (h *Handler) ResolveLocation(c *gin.Context) {
	var req struct {
		Location *Descriptor `json:"location" binding:"required"`
		Bias     *geo.Point  `json:"bias"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateStruct(req.Location); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Bias != nil {
		if err := validation.ValidateStruct(req.Bias); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Location.Original == "" && !req.Location.IsResolved() {
		common.ErrorResponse(c, http.StatusBadRequest, "location text is required")
		return
	}

	resolved, err := h.engine.Resolve(c.Request.Context(), req.Location, req.Bias)
	if err != nil {
		var confirm *ConfirmationRequiredError
		if errors.As(err, &confirm) {
			common.ConfirmationResponse(c, confirm.Reason, confirm)
			return
		}
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to resolve location")
		return
	}

	common.SuccessResponse(c, resolved)
}

// NearbyPlaces finds the closest places matching a keyword.
func (h *Handler) NearbyPlaces(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "keyword is required")
		return
	}

	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil || lat < -90 || lat > 90 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid latitude")
		return
	}
	lng, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil || lng < -180 || lng > 180 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid longitude")
		return
	}

	limit := 5
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 20 {
			limit = parsed
		}
	}

	places, err := h.nearby.NearestByKeyword(c.Request.Context(), keyword, geo.Point{Lat: lat, Lng: lng}, limit)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to search nearby places")
		return
	}

	common.SuccessResponse(c, gin.H{
		"keyword": keyword,
		"places":  places,
	})
}
