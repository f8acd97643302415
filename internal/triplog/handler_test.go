package triplog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func createTripBody(mutate func(gin.H)) gin.H {
	body := gin.H{
		"route_mode":             RouteModeWalking,
		"start_name":             "집",
		"end_name":               "시청역",
		"start_lat":              37.55,
		"start_lng":              126.95,
		"end_lat":                37.565,
		"end_lng":                126.977,
		"total_distance_m":       1200.0,
		"estimated_seconds":      1080.0,
		"actual_seconds":         1150.0,
		"active_walking_seconds": 980.0,
		"started_at":             "2026-08-30T09:00:00Z",
		"ended_at":               "2026-08-30T09:19:10Z",
	}
	if mutate != nil {
		mutate(body)
	}
	return body
}

func TestCreateTripEndpoint(t *testing.T) {
	store := &memStore{}
	router := newTestRouter(NewService(store, nil))
	userID := uuid.New()

	w := doRequest(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%s/trips", userID), createTripBody(nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool    `json:"success"`
		Data    TripLog `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEqual(t, uuid.Nil, resp.Data.ID)
	assert.Equal(t, userID, resp.Data.UserID)
	assert.InDelta(t, 1200.0, resp.Data.TotalDistanceM, 1e-9)
	require.Len(t, store.logs, 1)
}

func TestCreateTripRejectsBadLatitude(t *testing.T) {
	router := newTestRouter(NewService(&memStore{}, nil))
	userID := uuid.New()

	body := createTripBody(func(b gin.H) { b["start_lat"] = 95.0 })
	w := doRequest(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%s/trips", userID), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTripRejectsUnknownRouteMode(t *testing.T) {
	router := newTestRouter(NewService(&memStore{}, nil))
	userID := uuid.New()

	body := createTripBody(func(b gin.H) { b["route_mode"] = "driving" })
	w := doRequest(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%s/trips", userID), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTripsEndpointPaginates(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, nil)
	router := newTestRouter(svc)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), completedTrip(userID))
		require.NoError(t, err)
	}

	w := doRequest(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%s/trips?limit=2", userID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []TripLog `json:"data"`
		Meta struct {
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Meta.Limit)
	assert.Equal(t, int64(3), resp.Meta.Total)
}

func TestListTripsRejectsOversizedLimit(t *testing.T) {
	router := newTestRouter(NewService(&memStore{}, nil))
	userID := uuid.New()

	w := doRequest(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%s/trips?limit=500", userID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTripEndpointNotFound(t *testing.T) {
	router := newTestRouter(NewService(&memStore{}, nil))
	userID := uuid.New()

	w := doRequest(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%s/trips/%s", userID, uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTripEndpoint(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, nil)
	router := newTestRouter(svc)
	userID := uuid.New()

	saved, err := svc.Record(context.Background(), completedTrip(userID))
	require.NoError(t, err)

	w := doRequest(t, router, http.MethodDelete,
		fmt.Sprintf("/api/v1/users/%s/trips/%s", userID, saved.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.logs)
}

func TestStatsEndpointUsesDayWindow(t *testing.T) {
	store := &memStore{}
	router := newTestRouter(NewService(store, nil))
	userID := uuid.New()

	w := doRequest(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%s/trips/stats?days=7", userID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Data.PeriodDays)
}
