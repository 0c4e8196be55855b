package rendering

import (
	"context"

	"github.com/ipms/backend/internal/domain/report"
)

// Renderer serializes a built report into one output format. Given
// identical ReportData, the output must be deterministic.
type Renderer interface {
	// Render serializes the report data into the renderer's format
	Render(ctx context.Context, data *report.ReportData) ([]byte, error)
	// Format returns the output format this renderer produces
	Format() report.Format
}

// RendererSet dispatches to the renderer for a requested format
type RendererSet struct {
	renderers map[report.Format]Renderer
}

// NewRendererSet builds a dispatch table from the given renderers
func NewRendererSet(renderers ...Renderer) *RendererSet {
	set := &RendererSet{renderers: make(map[report.Format]Renderer, len(renderers))}
	for _, r := range renderers {
		set.renderers[r.Format()] = r
	}
	return set
}

// For returns the renderer for the format
func (s *RendererSet) For(format report.Format) (Renderer, error) {
	r, ok := s.renderers[format]
	if !ok {
		return nil, NewRenderError(ErrCodeUnsupportedFormat, "no renderer for format: "+string(format), nil)
	}
	return r, nil
}

// RenderError represents an error during report rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout     = "RENDER_TIMEOUT"
	ErrCodeRenderFailed      = "RENDER_FAILED"
	ErrCodeInvalidData       = "INVALID_DATA"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeStorageFailed     = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
