package delivery

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/infrastructure/config"
	"github.com/ipms/backend/internal/infrastructure/logger"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Attachment is a rendered report artifact ready for delivery
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Sender delivers a generated report to one recipient
type Sender interface {
	Send(ctx context.Context, recipient string, rpt *report.ScheduledReport, attachment Attachment) error
}

// SendGridSender delivers reports as email attachments via SendGrid.
// Without an API key it logs the delivery instead of sending, which
// keeps local development working without credentials.
type SendGridSender struct {
	apiKey      string
	fromAddress string
	fromName    string
	log         *zap.Logger
}

// NewSendGridSender creates an email sender from delivery configuration
func NewSendGridSender(cfg config.DeliveryConfig, log *zap.Logger) *SendGridSender {
	return &SendGridSender{
		apiKey:      cfg.SendGridAPIKey,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		log:         log,
	}
}

// Send emails the report attachment to the recipient
func (s *SendGridSender) Send(ctx context.Context, recipient string, rpt *report.ScheduledReport, attachment Attachment) error {
	subject := fmt.Sprintf("Scheduled Report: %s", rpt.ReportType)

	if s.apiKey == "" {
		logger.WithLogger(ctx, s.log).Info("email delivery skipped, no api key configured",
			zap.String("recipient", recipient),
			zap.String("report_type", string(rpt.ReportType)),
			zap.String("filename", attachment.Filename))
		return nil
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.fromName, s.fromAddress))
	m.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", recipient))
	m.AddPersonalizations(p)

	plain, html := s.bodies(rpt)
	m.AddContent(
		mail.NewContent("text/plain", plain),
		mail.NewContent("text/html", html),
	)

	a := mail.NewAttachment()
	a.SetContent(base64.StdEncoding.EncodeToString(attachment.Data))
	a.SetType(attachment.ContentType)
	a.SetFilename(attachment.Filename)
	a.SetDisposition("attachment")
	m.AddAttachment(a)

	client := sendgrid.NewSendClient(s.apiKey)
	resp, err := client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}

	logger.WithLogger(ctx, s.log).Info("report delivered",
		zap.String("recipient", recipient),
		zap.String("report_type", string(rpt.ReportType)),
		zap.String("filename", attachment.Filename),
		zap.Int("sendgrid_status", resp.StatusCode))
	return nil
}

func (s *SendGridSender) bodies(rpt *report.ScheduledReport) (plain, html string) {
	dr := rpt.Range()
	period := dr.Start.Format("2006-01-02") + " to " + dr.End.Format("2006-01-02")

	plain = fmt.Sprintf(
		"Your scheduled report is attached.\n\nReport type: %s\nPeriod: %s\nFormat: %s\n",
		rpt.ReportType, period, rpt.Format)

	html = fmt.Sprintf(`<html><body>
<p>Your scheduled report is attached.</p>
<ul>
  <li><strong>Report type:</strong> %s</li>
  <li><strong>Period:</strong> %s</li>
  <li><strong>Format:</strong> %s</li>
</ul>
</body></html>`, rpt.ReportType, period, rpt.Format)
	return plain, html
}

// ContentTypeFor maps an output format to the attachment MIME type
func ContentTypeFor(format report.Format) string {
	switch format {
	case report.FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case report.FormatCSV:
		return "text/csv"
	default:
		return "application/pdf"
	}
}
