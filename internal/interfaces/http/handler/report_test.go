package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/ipms/backend/internal/application/report"
	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/domain/shared"
	"github.com/ipms/backend/internal/interfaces/http/dto"
	"github.com/ipms/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportGenerator struct {
	mock.Mock
}

func (m *MockReportGenerator) Generate(ctx context.Context, req reportapp.GenerateReportRequest) (*reportapp.GenerateReportResponse, []byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*reportapp.GenerateReportResponse), args.Get(1).([]byte), args.Error(2)
}

func (m *MockReportGenerator) RecentActivity(ctx context.Context, limit int) ([]report.ActivityLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ActivityLog), args.Error(1)
}

func newReportRouter(generator ReportGenerator) *gin.Engine {
	middleware.SetupValidator()
	router := gin.New()
	api := router.Group("/api/v1")
	NewReportHandler(generator).RegisterRoutes(api)
	return router
}

func generateBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(gin.H{
		"report_type": "financial_summary",
		"format":      "csv",
		"start_date":  "2025-01-01T00:00:00Z",
		"end_date":    "2025-01-31T00:00:00Z",
	})
	require.NoError(t, err)
	return body
}

func TestReportHandlerGenerate(t *testing.T) {
	generator := new(MockReportGenerator)
	resp := &reportapp.GenerateReportResponse{
		ReportType:  "financial_summary",
		Format:      "csv",
		Filename:    "report_financial_summary_20250201_120000_ab12cd34.csv",
		Location:    "/var/reports/report_financial_summary_20250201_120000_ab12cd34.csv",
		SizeBytes:   128,
		GeneratedAt: time.Now(),
	}
	generator.On("Generate", mock.Anything, mock.MatchedBy(func(req reportapp.GenerateReportRequest) bool {
		return req.ReportType == "financial_summary" && req.GeneratedBy == "analyst@example.com"
	})).Return(resp, []byte("csv-data"), nil)

	router := newReportRouter(generator)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/reports/generate", bytes.NewReader(generateBody(t)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorHeader, "analyst@example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var envelope dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	generator.AssertExpectations(t)
}

func TestReportHandlerGenerateDownload(t *testing.T) {
	generator := new(MockReportGenerator)
	resp := &reportapp.GenerateReportResponse{
		ReportType: "financial_summary",
		Format:     "csv",
		Filename:   "report_financial_summary_20250201_120000_ab12cd34.csv",
	}
	generator.On("Generate", mock.Anything, mock.Anything).Return(resp, []byte("csv-data"), nil)

	router := newReportRouter(generator)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/reports/generate?download=true", bytes.NewReader(generateBody(t)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv-data", w.Body.String())
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), resp.Filename)
}

func TestReportHandlerGenerateValidation(t *testing.T) {
	generator := new(MockReportGenerator)
	router := newReportRouter(generator)

	// Missing required fields
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/reports/generate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	generator.AssertNotCalled(t, "Generate")
}

func TestReportHandlerGenerateDomainError(t *testing.T) {
	generator := new(MockReportGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).
		Return(nil, nil, shared.NewDomainError("UNSUPPORTED_FORMAT", "unknown output format"))

	router := newReportRouter(generator)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/reports/generate", bytes.NewReader(generateBody(t)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var envelope dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, dto.ErrCodeUnsupportedFormat, envelope.Error.Code)
}

func TestReportHandlerActivity(t *testing.T) {
	generator := new(MockReportGenerator)
	entries := []report.ActivityLog{
		*report.NewActivityLog("report_generated", "generated financial_summary report", "analyst@example.com"),
	}
	generator.On("RecentActivity", mock.Anything, 50).Return(entries, nil)

	router := newReportRouter(generator)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/reports/activity", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	generator.AssertExpectations(t)
}

func TestReportHandlerActivityCustomLimit(t *testing.T) {
	generator := new(MockReportGenerator)
	generator.On("RecentActivity", mock.Anything, 10).Return([]report.ActivityLog{}, nil)

	router := newReportRouter(generator)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/reports/activity?limit=10", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	generator.AssertExpectations(t)
}
