package routing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/routevox/trip-planner/internal/location"
	"github.com/routevox/trip-planner/pkg/common"
	"github.com/routevox/trip-planner/pkg/geo"
	"github.com/routevox/trip-planner/pkg/validation"
)

// Handler handles HTTP requests for route assembly.
type Handler struct {
	assembler *Assembler
}

// NewHandler creates a new routing handler.
func NewHandler(assembler *Assembler) *Handler {
	return &Handler{assembler: assembler}
}

// RegisterRoutes mounts the routing endpoints on a router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/routes", h.ComputeRoute)
}

// ComputeRoute resolves an ordered batch of stops and routes through them.
// An ambiguous stop returns 409 with the whole batch and the candidate
// interpretations so the client can ask the user.
func (h *Handler) ComputeRoute(c *gin.Context) {
	var req struct {
		Stops         []*location.Descriptor `json:"stops" binding:"required,min=2"`
		UserLocation  *geo.Point             `json:"user_location"`
		RouteMidpoint *geo.Point             `json:"route_midpoint"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	for _, d := range req.Stops {
		if d == nil {
			continue
		}
		if err := validation.ValidateStruct(d); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	for _, p := range []*geo.Point{req.UserLocation, req.RouteMidpoint} {
		if p == nil {
			continue
		}
		if err := validation.ValidateStruct(p); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	route, err := h.assembler.Assemble(c.Request.Context(), Request{
		Stops:         req.Stops,
		UserLocation:  req.UserLocation,
		RouteMidpoint: req.RouteMidpoint,
	})
	if err != nil {
		var confirm *location.ConfirmationRequiredError
		if errors.As(err, &confirm) {
			common.ConfirmationResponse(c, confirm.Reason, confirm)
			return
		}
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to compute route")
		return
	}

	common.SuccessResponse(c, route)
}
