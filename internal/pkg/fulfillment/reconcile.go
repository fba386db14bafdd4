package fulfillment

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/AutoVinReports/VinFox/app/repository"
)

const (
	// A pending purchase untouched for this long has fallen out of the queue
	// (crash between the webhook 200 and job completion, expired job record).
	defaultStaleAfter = 30 * time.Minute

	defaultSweepInterval = 5 * time.Minute

	sweepBatchSize = 50
)

// Reconciler periodically re-enqueues purchases that are paid but stuck
// pending. It closes the gap left by always answering the payment processor
// with 200: recovery is owned here, not by processor redelivery.
type Reconciler struct {
	Purchases  repository.PurchaseRepository
	Queue      *Queue
	StaleAfter time.Duration
	Interval   time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	ticker *time.Ticker
}

// NewReconciler creates a reconciliation sweep over the purchase ledger
func NewReconciler(purchases repository.PurchaseRepository, queue *Queue) *Reconciler {
	return &Reconciler{
		Purchases:  purchases,
		Queue:      queue,
		StaleAfter: defaultStaleAfter,
		Interval:   defaultSweepInterval,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (r *Reconciler) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticker != nil {
		return
	}

	r.ticker = time.NewTicker(r.Interval)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		log.Infof("[Fulfillment] Reconciler running (staleAfter=%s, interval=%s)", r.StaleAfter, r.Interval)
		for {
			select {
			case <-r.stopCh:
				log.Info("[Fulfillment] Reconciler stopping")
				return
			case <-r.ticker.C:
				r.SweepOnce()
			}
		}
	}()
}

// Stop halts the sweep
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	close(r.stopCh)
	r.wg.Wait()
	r.ticker = nil
}

// SweepOnce re-enqueues every stale pending purchase it finds
func (r *Reconciler) SweepOnce() {
	purchases, err := r.Purchases.ListStalePending(r.StaleAfter, sweepBatchSize)
	if err != nil {
		log.Errorf("[Fulfillment] Reconciler sweep failed: %v", err)
		return
	}

	for _, purchase := range purchases {
		log.Warnf("[Fulfillment] Re-enqueueing stale pending purchase %d (vin=%s)", purchase.ID, purchase.VIN)
		_, err := r.Queue.EnqueueReportJob(ReportJobPayload{
			PurchaseID: purchase.ID,
			VIN:        purchase.VIN,
			Email:      purchase.Email,
			Vehicle:    purchase.Vehicle,
		})
		if err != nil {
			log.Errorf("[Fulfillment] Failed to re-enqueue purchase %d: %v", purchase.ID, err)
		}
	}
}
