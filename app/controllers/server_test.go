package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v83"

	"github.com/AutoVinReports/VinFox/app/models"
	"github.com/AutoVinReports/VinFox/app/repository"
	"github.com/AutoVinReports/VinFox/internal/pkg/carsimulcast"
	"github.com/AutoVinReports/VinFox/internal/pkg/fulfillment"
	"github.com/AutoVinReports/VinFox/internal/pkg/payments"
	"github.com/AutoVinReports/VinFox/internal/pkg/report"
)

const testVIN = "1HGCM82633A004352"

// fakeVehicleAPI scripts provider answers for handler tests.
type fakeVehicleAPI struct {
	record       *carsimulcast.VehicleRecord
	err          error
	checkCalls   int
	reportCalls  int
	convertCalls int
}

func (f *fakeVehicleAPI) CheckRecords(ctx context.Context, vin string) (*carsimulcast.VehicleRecord, error) {
	f.checkCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func (f *fakeVehicleAPI) GetReport(ctx context.Context, vin string) (string, error) {
	f.reportCalls++
	return "", carsimulcast.ErrReportNotReady
}

func (f *fakeVehicleAPI) ConvertToPDF(ctx context.Context, html string) ([]byte, error) {
	f.convertCalls++
	return []byte("%PDF-1.4 fake"), nil
}

// fakeGateway stands in for the Stripe adapter. Verification succeeds only
// for the configured signature header, mirroring the real adapter's contract.
type fakeGateway struct {
	checkoutURL   string
	checkoutErr   error
	checkoutCalls int
	validSig      string
	verifyCalls   int
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, intent payments.CheckoutIntent) (string, error) {
	f.checkoutCalls++
	if f.checkoutErr != nil {
		return "", f.checkoutErr
	}
	return f.checkoutURL, nil
}

func (f *fakeGateway) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	f.verifyCalls++
	if signatureHeader != f.validSig {
		return stripe.Event{}, payments.ErrSignatureInvalid
	}
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, err
	}
	return event, nil
}

// fakeMailer records outbound mail without sending anything.
type fakeMailer struct {
	mu           sync.Mutex
	reportCalls  int
	contactCalls int
	lastContact  [4]string
	err          error
}

func (f *fakeMailer) SendReportEmail(ctx context.Context, to, descriptor, vin string, artifact *report.Artifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reportCalls++
	return f.err
}

func (f *fakeMailer) SendContactMessage(ctx context.Context, name, from, vin, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contactCalls++
	f.lastContact = [4]string{name, from, vin, message}
	return f.err
}

// fakeEnqueuer collects payloads instead of touching redis.
type fakeEnqueuer struct {
	payloads []fulfillment.ReportJobPayload
	err      error
}

func (f *fakeEnqueuer) EnqueueReportJob(payload fulfillment.ReportJobPayload) (*fulfillment.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.payloads = append(f.payloads, payload)
	return &fulfillment.Job{ID: fmt.Sprintf("job-%d", len(f.payloads))}, nil
}

// fakePurchaseRepo is an in-memory PurchaseRepository.
type fakePurchaseRepo struct {
	mu        sync.Mutex
	nextID    uint
	purchases map[uint]*models.Purchase
	createErr error
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: make(map[uint]*models.Purchase)}
}

func (f *fakePurchaseRepo) Create(p *models.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.purchases[p.ID] = &cp
	return nil
}

func (f *fakePurchaseRepo) GetByID(id uint) (*models.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakePurchaseRepo) GetBySessionID(sessionID string) (*models.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.purchases {
		if p.SessionID == sessionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePurchaseRepo) IncrementAttempts(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.purchases[id]; ok {
		p.Attempts++
	}
	return nil
}

func (f *fakePurchaseRepo) MarkSucceeded(id uint, artifactURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.purchases[id]; ok {
		p.Status = models.PurchaseStatusSucceeded
		p.ArtifactURL = artifactURL
	}
	return nil
}

func (f *fakePurchaseRepo) MarkFailed(id uint, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.purchases[id]; ok {
		p.Status = models.PurchaseStatusFailed
		p.FulfillmentNote = note
	}
	return nil
}

func (f *fakePurchaseRepo) ListStalePending(olderThan time.Duration, limit int) ([]models.Purchase, error) {
	return nil, nil
}

// fakeEventRepo dedups in memory by provider/event-id.
type fakeEventRepo struct {
	mu     sync.Mutex
	nextID uint
	seen   map[string]bool
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{seen: make(map[string]bool)}
}

func (f *fakeEventRepo) Record(event *models.PaymentWebhookEvent) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := event.Provider + "/" + event.ProviderEventID
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	f.nextID++
	event.ID = f.nextID
	return true, nil
}

func (f *fakeEventRepo) MarkProcessed(id uint) error { return nil }

type testDeps struct {
	provider  *fakeVehicleAPI
	gateway   *fakeGateway
	mailer    *fakeMailer
	queue     *fakeEnqueuer
	purchases *fakePurchaseRepo
	events    *fakeEventRepo
}

func newTestApp() (*fiber.App, *testDeps) {
	deps := &testDeps{
		provider:  &fakeVehicleAPI{},
		gateway:   &fakeGateway{checkoutURL: "https://checkout.stripe.com/c/pay/cs_test_123", validSig: "t=1,v1=good"},
		mailer:    &fakeMailer{},
		queue:     &fakeEnqueuer{},
		purchases: newFakePurchaseRepo(),
		events:    newFakeEventRepo(),
	}
	server := NewServer(deps.provider, deps.gateway, deps.mailer, deps.queue, &repository.Repositories{
		Purchase:     deps.purchases,
		WebhookEvent: deps.events,
	})

	app := fiber.New()
	app.Get("/", server.HandleHome)
	app.Get("/vehicle-info/:vin", server.HandleVehicleInfo)
	app.Post("/create-checkout-session", server.HandleCreateCheckoutSession)
	app.Post("/webhook", server.HandleStripeWebhook)
	app.Post("/contact", server.HandleContact)
	return app, deps
}
