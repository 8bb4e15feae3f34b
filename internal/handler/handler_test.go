package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The request-validation paths reject before any service or database call, so
// the handlers can run with nil dependencies here.

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	analyticsHandler := NewAnalyticsHandler(nil, nil, nil, logger)
	adherenceHandler := NewAdherenceHandler(nil, nil, logger)

	router := gin.New()
	router.POST("/api/v1/analytics/medication", analyticsHandler.PostMedicationAnalytics)
	router.GET("/api/v1/analytics/medication/report", analyticsHandler.GetAdherenceReportPDF)
	router.POST("/api/v1/adherence/logs", adherenceHandler.PostDoseEvent)

	return router
}

func decodeError(t *testing.T, body string) ErrorResponse {
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return resp
}

func TestPostMedicationAnalytics_RequestValidation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"elderly_person_id":`},
		{"missing person ID", `{"period_days": 30}`},
		{"person ID is not a UUID", `{"elderly_person_id": "nope", "period_days": 30}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/analytics/medication", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w.Body.String())
			assert.Equal(t, "INVALID_REQUEST", resp.Code)
		})
	}
}

func TestGetAdherenceReportPDF_RequestValidation(t *testing.T) {
	router := newTestRouter()

	t.Run("missing person ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/analytics/medication/report", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w.Body.String())
		assert.Equal(t, "INVALID_REQUEST", resp.Code)
		assert.Contains(t, resp.Message, "elderly_person_id")
	})

	t.Run("non-numeric period", func(t *testing.T) {
		w := httptest.NewRecorder()
		url := "/api/v1/analytics/medication/report?elderly_person_id=b7e2a3c4-5d6f-4a8b-9c0d-1e2f3a4b5c6d&period_days=month"
		router.ServeHTTP(w, httptest.NewRequest("GET", url, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w.Body.String())
		assert.Contains(t, resp.Message, "period_days must be an integer")
	})
}

func TestPostDoseEvent_RequestValidation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{`},
		{"missing schedule ID", `{"scheduled_time": "08:00", "status": "taken"}`},
		{"schedule ID is not a UUID", `{"schedule_id": "med-1", "scheduled_time": "08:00", "status": "taken"}`},
		{"missing status", `{"schedule_id": "b7e2a3c4-5d6f-4a8b-9c0d-1e2f3a4b5c6d", "scheduled_time": "08:00"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/adherence/logs", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w.Body.String())
			assert.Equal(t, "INVALID_REQUEST", resp.Code)
		})
	}
}
