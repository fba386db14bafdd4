package controllers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/stripe/stripe-go/v83"

	"github.com/AutoVinReports/VinFox/app/repository"
	"github.com/AutoVinReports/VinFox/internal/pkg/fulfillment"
	"github.com/AutoVinReports/VinFox/internal/pkg/mail"
	"github.com/AutoVinReports/VinFox/internal/pkg/payments"
	"github.com/AutoVinReports/VinFox/internal/pkg/report"
)

// PaymentGateway is the slice of the Stripe adapter the handlers use.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, intent payments.CheckoutIntent) (string, error)
	VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error)
}

// ReportEnqueuer hands verified purchases to the fulfillment queue.
type ReportEnqueuer interface {
	EnqueueReportJob(payload fulfillment.ReportJobPayload) (*fulfillment.Job, error)
}

// Server holds the explicitly constructed dependency bundle for all handlers.
// Everything is an interface or injected client so tests can swap doubles in.
type Server struct {
	Provider  report.VehicleAPI
	Payments  PaymentGateway
	Mailer    mail.Mailer
	Queue     ReportEnqueuer
	Purchases repository.PurchaseRepository
	Events    repository.WebhookEventRepository

	validate *validator.Validate
}

// NewServer creates the handler set from its dependencies
func NewServer(
	provider report.VehicleAPI,
	gateway PaymentGateway,
	mailer mail.Mailer,
	queue ReportEnqueuer,
	repos *repository.Repositories,
) *Server {
	return &Server{
		Provider:  provider,
		Payments:  gateway,
		Mailer:    mailer,
		Queue:     queue,
		Purchases: repos.Purchase,
		Events:    repos.WebhookEvent,
		validate:  validator.New(),
	}
}
