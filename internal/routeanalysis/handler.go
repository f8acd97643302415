package routeanalysis

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waypace/walk-eta/internal/weather"
	"github.com/waypace/walk-eta/pkg/common"
	"github.com/waypace/walk-eta/pkg/geo"
	// registers the latitude/longitude binding tags used below
	_ "github.com/waypace/walk-eta/pkg/validation"
)

// Handler exposes route analysis over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up route analysis routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/routes/analysis", h.AnalyzeRoute)
}

type pointRequest struct {
	Lat  float64 `json:"lat" binding:"required,latitude"`
	Lng  float64 `json:"lng" binding:"required,longitude"`
	Name string  `json:"name"`
}

type analyzeRequest struct {
	Origin           pointRequest   `json:"origin" binding:"required"`
	Destination      pointRequest   `json:"destination" binding:"required"`
	ObservedSpeedMps *float64       `json:"observed_speed_mps" binding:"omitempty,gt=0"`
	Weather          *weather.Input `json:"weather"`
}

// AnalyzeRoute returns the personalized walking-time correction for a route
// between two points.
func (h *Handler) AnalyzeRoute(c *gin.Context) {
	var req analyzeRequest
	if !common.BindJSON(c, &req) {
		return
	}

	analysis, err := h.service.Analyze(c.Request.Context(), Request{
		Origin:           geo.Coordinate{Lat: req.Origin.Lat, Lng: req.Origin.Lng},
		Destination:      geo.Coordinate{Lat: req.Destination.Lat, Lng: req.Destination.Lng},
		OriginName:       req.Origin.Name,
		DestinationName:  req.Destination.Name,
		ObservedSpeedMps: req.ObservedSpeedMps,
		Weather:          req.Weather,
	})
	if err != nil {
		// A degraded analysis still carries usable uncorrected totals
		if analysis != nil && analysis.Degraded {
			var appErr *common.AppError
			message := "analysis degraded"
			if errors.As(err, &appErr) {
				message = appErr.Message
			}
			c.JSON(http.StatusBadGateway, common.Response{
				Success: false,
				Data:    analysis,
				Error: &common.ErrorInfo{
					Code:    http.StatusBadGateway,
					Message: message,
				},
			})
			return
		}
		common.HandleServiceError(c, err, "route analysis failed")
		return
	}

	common.SuccessResponse(c, analysis)
}
