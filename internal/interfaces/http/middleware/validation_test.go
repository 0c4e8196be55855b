package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipms/backend/internal/interfaces/http/dto"
)

type generateRequestBody struct {
	ReportType string `json:"report_type" binding:"required,oneof=policy_performance financial_summary"`
	Format     string `json:"format" binding:"required,oneof=pdf excel csv json"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

func generateValidationRouter() *gin.Engine {
	router := gin.New()
	router.POST("/reports/generate", func(c *gin.Context) {
		var req generateRequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	router := generateValidationRouter()

	t.Run("reports each failing field with its json name", func(t *testing.T) {
		w := postJSON(router, "/reports/generate",
			`{"report_type": "quarterly_digest", "format": "pdf"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 3)

		fields := make([]string, 0, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.Contains(t, fields, "report_type")
		assert.Contains(t, fields, "start_date")
		assert.Contains(t, fields, "end_date")
	})

	t.Run("valid generation payload passes binding", func(t *testing.T) {
		w := postJSON(router, "/reports/generate",
			`{"report_type": "policy_performance", "format": "pdf",
			  "start_date": "2025-01-01", "end_date": "2025-01-31"}`)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("carries the request id when present", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.POST("/reports/generate", func(c *gin.Context) {
			var req generateRequestBody
			if err := c.ShouldBindJSON(&req); err != nil {
				HandleValidationError(c, err)
				return
			}
		})

		req := httptest.NewRequest("POST", "/reports/generate", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", "req-validation-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "req-validation-1", resp.Error.RequestID)
	})
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	// Only validator.ValidationErrors produce field details; other binding
	// failures still get the standard error envelope
	resp := FormatValidationErrors(errors.New("unexpected EOF"), "req-9")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}

func TestGetValidationMessage(t *testing.T) {
	type scheduleInput struct {
		Frequency  string   `binding:"oneof=daily weekly monthly"`
		Recipients []string `binding:"min=1"`
		ReportID   string   `binding:"uuid"`
		Email      string   `binding:"email"`
		Name       string   `binding:"required"`
		Notes      string   `binding:"max=10"`
		RunHour    int      `binding:"gte=10"`
	}

	v := validator.New()
	v.SetTagName("binding")
	err := v.Struct(scheduleInput{
		Frequency: "hourly",
		ReportID:  "not-a-uuid",
		Email:     "not-an-email",
		Notes:     "this note is far too long",
	})
	require.Error(t, err)

	expected := map[string]string{
		"Frequency": "Must be one of: daily weekly monthly",
		"ReportID":  "Invalid UUID format",
		"Email":     "Invalid email format",
		"Name":      "This field is required",
		"Notes":     "Must be at most 10 characters",
		"RunHour":   "Must be greater than or equal to 10",
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)
	for _, e := range validationErrs {
		want, found := expected[e.StructField()]
		if !found {
			continue
		}
		assert.Equal(t, want, getValidationMessage(e), e.StructField())
	}
}
