package mail

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/gofiber/fiber/v2/log"
	"github.com/resend/resend-go/v2"

	"github.com/AutoVinReports/VinFox/internal/pkg/env"
	"github.com/AutoVinReports/VinFox/internal/pkg/report"
)

// ResendMailer sends transactional email through the Resend API.
type ResendMailer struct {
	client  *resend.Client
	sender  string
	support string
}

// NewResendMailerFromEnv builds a mailer from RESEND_* environment variables.
func NewResendMailerFromEnv() *ResendMailer {
	return &ResendMailer{
		client:  resend.NewClient(env.GetEnv("RESEND_API_KEY", "")),
		sender:  env.GetEnv("RESEND_SENDER", "reports@vinfox.example.com"),
		support: env.GetEnv("SUPPORT_EMAIL", "support@vinfox.example.com"),
	}
}

func (m *ResendMailer) SendReportEmail(ctx context.Context, to, descriptor, vin string, artifact *report.Artifact) error {
	if artifact == nil {
		return errors.New("no artifact to send")
	}

	subject := fmt.Sprintf("Your vehicle history report for %s", vin)
	params := &resend.SendEmailRequest{
		From:    m.sender,
		To:      []string{to},
		Subject: subject,
	}

	if artifact.Hosted() {
		params.Html = reportLinkBody(descriptor, vin, artifact.URL)
	} else {
		params.Html = reportAttachmentBody(descriptor, vin)
		params.Attachments = []*resend.Attachment{
			{
				Filename: artifact.ObjectName,
				Content:  artifact.PDF,
			},
		}
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Errorf("[Mail] Report email to %s failed: %v", to, err)
		return err
	}

	log.Infof("[Mail] Report email sent to %s (id=%s)", to, sent.Id)
	return nil
}

func (m *ResendMailer) SendContactMessage(ctx context.Context, name, from, vin, message string) error {
	params := &resend.SendEmailRequest{
		From:    m.sender,
		To:      []string{m.support},
		ReplyTo: from,
		Subject: fmt.Sprintf("Contact form: %s (VIN %s)", name, vin),
		Html: fmt.Sprintf(
			"<p><strong>Name:</strong> %s</p><p><strong>Email:</strong> %s</p><p><strong>VIN:</strong> %s</p><p>%s</p>",
			html.EscapeString(name), html.EscapeString(from), html.EscapeString(vin), html.EscapeString(message),
		),
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Errorf("[Mail] Contact relay from %s failed: %v", from, err)
		return err
	}

	log.Infof("[Mail] Contact message relayed to %s (id=%s)", m.support, sent.Id)
	return nil
}

func reportLinkBody(descriptor, vin, url string) string {
	return fmt.Sprintf(
		"<p>Thank you for your purchase.</p><p>Your vehicle history report for <strong>%s</strong> (VIN %s) is ready:</p><p><a href=\"%s\">Download your report</a></p>",
		html.EscapeString(descriptor), html.EscapeString(vin), url,
	)
}

func reportAttachmentBody(descriptor, vin string) string {
	return fmt.Sprintf(
		"<p>Thank you for your purchase.</p><p>Your vehicle history report for <strong>%s</strong> (VIN %s) is attached as a PDF.</p>",
		html.EscapeString(descriptor), html.EscapeString(vin),
	)
}
