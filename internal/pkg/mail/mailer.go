package mail

import (
	"context"

	"github.com/AutoVinReports/VinFox/internal/pkg/report"
)

// Mailer is the outbound email surface of the service. The fulfillment worker
// and the contact endpoint depend on this interface so tests can substitute
// doubles.
type Mailer interface {
	// SendReportEmail delivers the purchased report to the buyer, as a hosted
	// link when the artifact has one, otherwise as a PDF attachment.
	SendReportEmail(ctx context.Context, to, descriptor, vin string, artifact *report.Artifact) error

	// SendContactMessage relays a contact-form submission to the support
	// address. Independent of the payment flow.
	SendContactMessage(ctx context.Context, name, from, vin, message string) error
}
