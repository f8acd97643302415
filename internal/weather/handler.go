package weather

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waypace/walk-eta/pkg/common"
	"github.com/waypace/walk-eta/pkg/validation"
)

// Handler exposes the weather coefficient over HTTP.
type Handler struct {
	service *Service
	model   *Model
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		model:   NewModel(false),
	}
}

// RegisterRoutes sets up weather routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/weather/factor", h.GetFactor)
}

type factorQuery struct {
	Lat float64 `form:"lat" binding:"required"`
	Lng float64 `form:"lng" binding:"required"`
}

type factorResponse struct {
	Observation Input      `json:"observation"`
	Prediction  Prediction `json:"prediction"`
	TimeFactor  float64    `json:"time_factor"`
}

// GetFactor returns the current walking speed coefficient for a location.
func (h *Handler) GetFactor(c *gin.Context) {
	var query factorQuery
	if !common.BindQuery(c, &query) {
		return
	}
	if err := validation.ValidateCoordinates(query.Lat, query.Lng); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	input, err := h.service.CurrentInput(c.Request.Context(), query.Lat, query.Lng)
	if err != nil {
		common.AppErrorResponse(c, common.NewDependencyError("weather data unavailable", err))
		return
	}

	prediction := h.model.Coefficient(input)
	common.SuccessResponse(c, factorResponse{
		Observation: input,
		Prediction:  prediction,
		TimeFactor:  TimeFactor(prediction.Coefficient),
	})
}
