package speedprofile

import (
	"github.com/gin-gonic/gin"

	"github.com/waypace/walk-eta/pkg/common"
)

// Handler exposes speed profile management over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up speed profile routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	profiles := router.Group("/users/:user_id/speed-profile")
	{
		profiles.GET("", h.GetProfile)
		profiles.PUT("", h.UpdateProfile)
		profiles.GET("/history", h.GetHistory)
		profiles.POST("/observations", h.RecordObservation)
	}
}

type activityQuery struct {
	Activity string `form:"activity,default=walking"`
}

// GetProfile returns the user's walking speed profile. Users without stored
// data get the population default.
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "user_id", "user ID")
	if !ok {
		return
	}
	var query activityQuery
	if !common.BindQuery(c, &query) {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID, query.Activity)
	if common.HandleServiceError(c, err, "failed to load speed profile") {
		return
	}

	common.SuccessResponse(c, profile)
}

type updateProfileRequest struct {
	Activity     string   `json:"activity"`
	SpeedKmh     float64  `json:"speed_kmh" binding:"required,walk_speed"`
	SlowSpeedKmh *float64 `json:"slow_speed_kmh" binding:"omitempty,walk_speed"`
}

// UpdateProfile sets the speed by hand, bypassing the learned average.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	var req updateProfileRequest
	if !common.BindJSON(c, &req) {
		return
	}

	profile, err := h.service.SetManualSpeed(c.Request.Context(), userID, req.Activity, req.SpeedKmh, req.SlowSpeedKmh)
	if common.HandleServiceError(c, err, "failed to update speed profile") {
		return
	}

	common.SuccessResponse(c, profile)
}

type historyQuery struct {
	Activity string `form:"activity,default=walking"`
	Limit    int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

// GetHistory returns recent speed observations, newest first.
func (h *Handler) GetHistory(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	var query historyQuery
	if !common.BindQuery(c, &query) {
		return
	}

	history, err := h.service.History(c.Request.Context(), userID, query.Activity, query.Limit)
	if common.HandleServiceError(c, err, "failed to load speed history") {
		return
	}

	common.SuccessResponse(c, history)
}

type observationRequest struct {
	Activity    string  `json:"activity"`
	SpeedKmh    float64 `json:"speed_kmh" binding:"required"`
	ReferenceID string  `json:"reference_id"`
}

// RecordObservation folds a measured speed into the profile.
func (h *Handler) RecordObservation(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	var req observationRequest
	if !common.BindJSON(c, &req) {
		return
	}

	profile, err := h.service.RecordObservation(c.Request.Context(), userID, req.Activity, req.SpeedKmh, req.ReferenceID)
	if common.HandleServiceError(c, err, "failed to record observation") {
		return
	}

	common.SuccessResponse(c, profile)
}
