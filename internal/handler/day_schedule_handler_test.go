package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-schedule-api/internal/dto"
	"github.com/noah-isme/camp-schedule-api/internal/models"
	"github.com/noah-isme/camp-schedule-api/internal/service"
	appErrors "github.com/noah-isme/camp-schedule-api/pkg/errors"
)

type dayScheduleMock struct {
	day       dto.DayPath
	reconcile dto.ReconcileRequest
	query     dto.SlotLookupQuery
	state     *models.DayState
	err       error
}

func (m *dayScheduleMock) CreateVersion(ctx context.Context, day dto.DayPath, req dto.CreateVersionRequest) (*dto.CreateVersionResponse, error) {
	m.day = day
	return &dto.CreateVersionResponse{ID: "version-1", CampID: day.CampID, Date: day.Date, Scheduled: true}, m.err
}

func (m *dayScheduleMock) Reconcile(ctx context.Context, day dto.DayPath, req dto.ReconcileRequest) (*dto.ReconcileResponse, error) {
	m.day = day
	m.reconcile = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ReconcileResponse{Merge: dto.MergeResult{Success: true, Phase: "done"}}, nil
}

func (m *dayScheduleMock) ScheduleReconcile(day dto.DayPath) (*dto.ScheduleReconcileResponse, error) {
	m.day = day
	return &dto.ScheduleReconcileResponse{Key: day.CampID + "|" + day.Date, DelayMs: 750}, nil
}

func (m *dayScheduleMock) GetDay(ctx context.Context, day dto.DayPath) (*models.DayState, error) {
	m.day = day
	if m.err != nil {
		return nil, m.err
	}
	return m.state, nil
}

func (m *dayScheduleMock) Validate(ctx context.Context, day dto.DayPath) (*models.ConflictReport, error) {
	return &models.ConflictReport{Errors: []models.Finding{{Kind: models.FindingCrossDivisionConflict, Resource: "Gym"}}}, nil
}

func (m *dayScheduleMock) LookupSlots(ctx context.Context, day dto.DayPath, query dto.SlotLookupQuery) (*dto.SlotLookupResponse, error) {
	m.query = query
	return &dto.SlotLookupResponse{Bunk: query.Bunk, SlotIndices: []int{1}}, nil
}

func newDayRouter(mock *dayScheduleMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := &DayScheduleHandler{service: mock}
	router := gin.New()
	days := router.Group("/camps/:campId/days/:date")
	days.GET("", handler.GetDay)
	days.POST("/versions", handler.CreateVersion)
	days.POST("/reconcile", handler.Reconcile)
	days.POST("/reconcile/schedule", handler.ScheduleReconcile)
	days.GET("/validation", handler.Validate)
	days.GET("/slots", handler.LookupSlots)
	return router
}

func serve(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDayScheduleHandlerCreateVersion(t *testing.T) {
	mock := &dayScheduleMock{}
	w := serve(newDayRouter(mock), http.MethodPost, "/camps/camp-1/days/2026-07-01/versions", []byte(`{"payload":{"scheduleAssignments":{}}}`))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, dto.DayPath{CampID: "camp-1", Date: "2026-07-01"}, mock.day)
	assert.Contains(t, w.Body.String(), `"reconcileScheduled":true`)
}

func TestDayScheduleHandlerCreateVersionMalformed(t *testing.T) {
	w := serve(newDayRouter(&dayScheduleMock{}), http.MethodPost, "/camps/camp-1/days/2026-07-01/versions", []byte(`{"payload":`))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDayScheduleHandlerReconcileWithoutBody(t *testing.T) {
	mock := &dayScheduleMock{}
	w := serve(newDayRouter(mock), http.MethodPost, "/camps/camp-1/days/2026-07-01/reconcile", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.ReconcileResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Merge.Success)
	assert.Equal(t, dto.ReconcileRequest{}, mock.reconcile)
}

func TestDayScheduleHandlerReconcileOptions(t *testing.T) {
	mock := &dayScheduleMock{}
	w := serve(newDayRouter(mock), http.MethodPost, "/camps/camp-1/days/2026-07-01/reconcile", []byte(`{"incrementMinutes":15,"skipValidation":true}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 15, mock.reconcile.IncrementMinutes)
	assert.True(t, mock.reconcile.SkipValidation)
}

func TestDayScheduleHandlerReconcileFailure(t *testing.T) {
	mock := &dayScheduleMock{err: appErrors.Clone(appErrors.ErrPersistence, "publishing: connection reset")}
	w := serve(newDayRouter(mock), http.MethodPost, "/camps/camp-1/days/2026-07-01/reconcile", nil)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "PERSISTENCE_FAILURE")
}

func TestDayScheduleHandlerScheduleReconcile(t *testing.T) {
	w := serve(newDayRouter(&dayScheduleMock{}), http.MethodPost, "/camps/camp-1/days/2026-07-01/reconcile/schedule", nil)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"camp-1|2026-07-01"`)
}

func TestDayScheduleHandlerGetDay(t *testing.T) {
	mock := &dayScheduleMock{state: &models.DayState{CampID: "camp-1", Date: "2026-07-01"}}
	w := serve(newDayRouter(mock), http.MethodGet, "/camps/camp-1/days/2026-07-01", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), `"campId":"camp-1"`)
}

func TestDayScheduleHandlerGetDayNotFound(t *testing.T) {
	mock := &dayScheduleMock{err: appErrors.Clone(appErrors.ErrNotFound, "schedule day not published")}
	w := serve(newDayRouter(mock), http.MethodGet, "/camps/camp-1/days/2026-07-01", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDayScheduleHandlerValidate(t *testing.T) {
	w := serve(newDayRouter(&dayScheduleMock{}), http.MethodGet, "/camps/camp-1/days/2026-07-01/validation", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CROSS_DIVISION_CONFLICT")
	assert.Contains(t, w.Body.String(), `"errors":1`)
}

func TestDayScheduleHandlerLookupSlots(t *testing.T) {
	mock := &dayScheduleMock{}
	w := serve(newDayRouter(mock), http.MethodGet, "/camps/camp-1/days/2026-07-01/slots?bunk=5&start=9:30am&end=600", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.SlotLookupQuery{Bunk: "5", Start: "9:30am", End: "600"}, mock.query)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gate := service.NewHydrationGate()
	handler := NewMetricsHandler(service.NewMetricsService(), gate)
	router := gin.New()
	router.GET("/ready", handler.Ready)
	router.GET("/metrics/summary", handler.Summary)

	w := serve(router, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	gate.MarkReady()
	w = serve(router, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/metrics/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "data")
}
