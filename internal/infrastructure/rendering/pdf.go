package rendering

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ipms/backend/internal/domain/report"
)

// a4WidthMM and a4HeightMM are the A4 paper dimensions used for PDF output.
const (
	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

// PDFRendererConfig holds settings for the headless-Chrome PDF renderer
type PDFRendererConfig struct {
	// Timeout is the maximum duration for a single render
	Timeout time.Duration
	// RemoteURL connects to an existing Chrome instance instead of launching one
	RemoteURL string
	// MarginMM is the page margin applied on all four sides
	MarginMM float64
}

// DefaultPDFRendererConfig returns the renderer defaults
func DefaultPDFRendererConfig() PDFRendererConfig {
	return PDFRendererConfig{
		Timeout:  60 * time.Second,
		MarginMM: 10,
	}
}

// PDFRenderer renders reports to PDF via headless Chrome. The browser
// allocator is created lazily on first use and reused across renders.
type PDFRenderer struct {
	config   PDFRendererConfig
	engine   *TemplateEngine
	mu       sync.Mutex
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewPDFRenderer creates a PDF renderer using the given template engine
func NewPDFRenderer(engine *TemplateEngine, config PDFRendererConfig) *PDFRenderer {
	if config.Timeout <= 0 {
		config.Timeout = DefaultPDFRendererConfig().Timeout
	}
	if config.MarginMM <= 0 {
		config.MarginMM = DefaultPDFRendererConfig().MarginMM
	}
	return &PDFRenderer{
		config: config,
		engine: engine,
	}
}

// Format returns the output format this renderer produces
func (r *PDFRenderer) Format() report.Format {
	return report.FormatPDF
}

// Render builds the HTML document for the report and prints it to PDF
func (r *PDFRenderer) Render(ctx context.Context, data *report.ReportData) ([]byte, error) {
	html, err := r.engine.RenderHTML(data)
	if err != nil {
		return nil, err
	}

	allocCtx, err := r.allocator()
	if err != nil {
		return nil, err
	}

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(taskCtx, r.config.Timeout)
	defer timeoutCancel()

	margin := mmToInches(r.config.MarginMM)
	var pdf []byte
	err = chromedp.Run(timeoutCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(mmToInches(a4WidthMM)).
				WithPaperHeight(mmToInches(a4HeightMM)).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithPrintBackground(true).
				WithPreferCSSPageSize(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "pdf rendering timed out", err)
		}
		return nil, NewRenderError(ErrCodeRenderFailed, "pdf rendering failed", err)
	}

	return pdf, nil
}

// allocator returns the shared browser allocator context, creating it on first use
func (r *PDFRenderer) allocator() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.allocCtx != nil {
		select {
		case <-r.allocCtx.Done():
			// Browser went away, rebuild the allocator below.
			r.cancel()
			r.allocCtx = nil
		default:
			return r.allocCtx, nil
		}
	}

	if r.config.RemoteURL != "" {
		r.allocCtx, r.cancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return r.allocCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	r.allocCtx, r.cancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r.allocCtx, nil
}

// Close releases the browser allocator
func (r *PDFRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.allocCtx = nil
		r.cancel = nil
	}
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}
