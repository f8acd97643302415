package triplog

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/waypace/walk-eta/pkg/common"
	// registers the latitude/longitude binding tags used below
	_ "github.com/waypace/walk-eta/pkg/validation"
)

// Handler exposes trip log management over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up trip log routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	trips := router.Group("/users/:user_id/trips")
	{
		trips.POST("", h.CreateTrip)
		trips.GET("", h.ListTrips)
		trips.GET("/stats", h.GetStats)
		trips.GET("/:trip_id", h.GetTrip)
		trips.DELETE("/:trip_id", h.DeleteTrip)
	}
}

type createTripRequest struct {
	RouteMode string  `json:"route_mode" binding:"required,oneof=walking transit"`
	StartName string  `json:"start_name" binding:"required"`
	EndName   string  `json:"end_name" binding:"required"`
	StartLat  float64 `json:"start_lat" binding:"required,latitude"`
	StartLng  float64 `json:"start_lng" binding:"required,longitude"`
	EndLat    float64 `json:"end_lat" binding:"required,latitude"`
	EndLng    float64 `json:"end_lng" binding:"required,longitude"`

	TotalDistanceM   float64  `json:"total_distance_m" binding:"required,gt=0"`
	WalkingDistanceM *float64 `json:"walking_distance_m" binding:"omitempty,gte=0"`
	TransportModes   []string `json:"transport_modes"`
	CrossingCount    int      `json:"crossing_count" binding:"omitempty,gte=0"`

	UserFactor    *float64 `json:"user_factor" binding:"omitempty,gt=0"`
	SlopeFactor   *float64 `json:"slope_factor" binding:"omitempty,gt=0"`
	WeatherFactor *float64 `json:"weather_factor" binding:"omitempty,gt=0"`

	EstimatedSeconds     float64  `json:"estimated_seconds" binding:"required,gt=0"`
	ActualSeconds        float64  `json:"actual_seconds" binding:"required,gt=0"`
	ActiveWalkingSeconds float64  `json:"active_walking_seconds" binding:"omitempty,gte=0"`
	PausedSeconds        float64  `json:"paused_seconds" binding:"omitempty,gte=0"`
	PauseCount           int      `json:"pause_count" binding:"omitempty,gte=0"`
	MeasuredSpeedKmh     *float64 `json:"measured_speed_kmh" binding:"omitempty,gt=0"`

	StartedAt time.Time `json:"started_at" binding:"required"`
	EndedAt   time.Time `json:"ended_at" binding:"required"`
}

// CreateTrip stores a finished guidance session.
func (h *Handler) CreateTrip(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	var req createTripRequest
	if !common.BindJSON(c, &req) {
		return
	}

	log := &TripLog{
		UserID:               userID,
		RouteMode:            req.RouteMode,
		StartName:            req.StartName,
		EndName:              req.EndName,
		StartLat:             req.StartLat,
		StartLng:             req.StartLng,
		EndLat:               req.EndLat,
		EndLng:               req.EndLng,
		TotalDistanceM:       req.TotalDistanceM,
		WalkingDistanceM:     req.WalkingDistanceM,
		TransportModes:       req.TransportModes,
		CrossingCount:        req.CrossingCount,
		UserFactor:           req.UserFactor,
		SlopeFactor:          req.SlopeFactor,
		WeatherFactor:        req.WeatherFactor,
		EstimatedSeconds:     req.EstimatedSeconds,
		ActualSeconds:        req.ActualSeconds,
		ActiveWalkingSeconds: req.ActiveWalkingSeconds,
		PausedSeconds:        req.PausedSeconds,
		PauseCount:           req.PauseCount,
		MeasuredSpeedKmh:     req.MeasuredSpeedKmh,
		StartedAt:            req.StartedAt,
		EndedAt:              req.EndedAt,
	}

	saved, err := h.service.Record(c.Request.Context(), log)
	if common.HandleServiceError(c, err, "failed to save trip log") {
		return
	}

	common.CreatedResponse(c, saved)
}

type listTripsQuery struct {
	RouteMode *string    `form:"route_mode" binding:"omitempty,oneof=walking transit"`
	FromDate  *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate    *time.Time `form:"to_date" time_format:"2006-01-02"`
	Limit     int        `form:"limit,default=50" binding:"omitempty,min=1,max=100"`
	Offset    int        `form:"offset,default=0" binding:"omitempty,min=0"`
}

// ListTrips returns the user's trips, newest first.
func (h *Handler) ListTrips(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	var query listTripsQuery
	if !common.BindQuery(c, &query) {
		return
	}

	filters := &Filters{
		RouteMode: query.RouteMode,
		FromDate:  query.FromDate,
		ToDate:    query.ToDate,
	}
	logs, total, err := h.service.List(c.Request.Context(), userID, filters, query.Limit, query.Offset)
	if common.HandleServiceError(c, err, "failed to list trip logs") {
		return
	}

	common.SuccessResponseWithMeta(c, logs, &common.Meta{
		Limit:  query.Limit,
		Offset: query.Offset,
		Total:  int64(total),
	})
}

// GetTrip returns one trip log.
func (h *Handler) GetTrip(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "user_id", "user ID")
	if !ok {
		return
	}
	tripID, ok := common.ParseUUIDParam(c, "trip_id", "trip ID")
	if !ok {
		return
	}

	log, err := h.service.Get(c.Request.Context(), tripID, userID)
	if common.HandleServiceError(c, err, "failed to load trip log") {
		return
	}

	common.SuccessResponse(c, log)
}

// DeleteTrip removes one trip log.
func (h *Handler) DeleteTrip(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "user_id", "user ID")
	if !ok {
		return
	}
	tripID, ok := common.ParseUUIDParam(c, "trip_id", "trip ID")
	if !ok {
		return
	}

	err := h.service.Delete(c.Request.Context(), tripID, userID)
	if common.HandleServiceError(c, err, "failed to delete trip log") {
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}

type statsQuery struct {
	Days int `form:"days,default=30" binding:"omitempty,min=1,max=365"`
}

// GetStats summarises the user's trips over a trailing day window.
func (h *Handler) GetStats(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	var query statsQuery
	if !common.BindQuery(c, &query) {
		return
	}

	stats, err := h.service.StatsSummary(c.Request.Context(), userID, query.Days)
	if common.HandleServiceError(c, err, "failed to aggregate trip stats") {
		return
	}

	common.SuccessResponse(c, stats)
}
