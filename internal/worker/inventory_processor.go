package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/repository"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
)

// Sweeper drops expired in-memory state.
type Sweeper interface {
	Sweep(now time.Time)
}

// InventoryProcessor drains the inventory adjustment outbox with a pool of
// workers and sweeps expired limiter and OTP entries on every tick.
type InventoryProcessor struct {
	repo         repository.InventoryRepository
	pollInterval time.Duration
	batchSize    int
	workers      int
	maxAttempts  int
	logger       *slog.Logger
	metrics      *metrics.Metrics
	sweepers     []Sweeper
	now          func() time.Time

	jobs   chan model.InventoryAdjustment
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewInventoryProcessor constructs the outbox worker pool.
func NewInventoryProcessor(repo repository.InventoryRepository, pollInterval time.Duration, batchSize, workers, maxAttempts int, logger *slog.Logger, m *metrics.Metrics, sweepers ...Sweeper) *InventoryProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &InventoryProcessor{
		repo:         repo,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		maxAttempts:  maxAttempts,
		logger:       logger,
		metrics:      m,
		sweepers:     sweepers,
		now:          time.Now,
		jobs:         make(chan model.InventoryAdjustment, batchSize*workers),
	}
}

// Start launches background processing.
func (p *InventoryProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish. Claimed but unprocessed adjustments
// become claimable again once their lease expires.
func (p *InventoryProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *InventoryProcessor) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep()
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *InventoryProcessor) sweep() {
	now := p.now()
	for _, s := range p.sweepers {
		s.Sweep(now)
	}
}

func (p *InventoryProcessor) fetchAndDispatch(ctx context.Context) {
	batch, err := p.repo.ClaimPending(ctx, p.batchSize)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Error("claim inventory adjustments failed", slog.String("error", err.Error()))
		}
		return
	}
	for _, adj := range batch {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- adj:
		}
	}
}

func (p *InventoryProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case adj, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handle(ctx, adj)
		}
	}
}

func (p *InventoryProcessor) handle(ctx context.Context, adj model.InventoryAdjustment) {
	err := p.repo.Apply(ctx, adj)
	if err == nil {
		p.metrics.InventoryAdjustments.WithLabelValues("applied").Inc()
		return
	}

	// a missing vehicle never recovers
	final := adj.Attempts+1 >= p.maxAttempts || errors.Is(err, domainErrors.ErrNotFound)
	result := "retry"
	if final {
		result = "failed"
	}
	p.metrics.InventoryAdjustments.WithLabelValues(result).Inc()
	p.logger.Error("inventory adjustment failed",
		slog.Int64("adjustment", adj.ID),
		slog.Int64("order", adj.OrderID),
		slog.Int64("vehicle", adj.VehicleID),
		slog.Int("attempt", adj.Attempts+1),
		slog.Bool("final", final),
		slog.String("error", err.Error()),
	)

	if markErr := p.repo.MarkFailed(ctx, adj.ID, final, err.Error()); markErr != nil {
		p.logger.Error("record inventory failure failed", slog.Int64("adjustment", adj.ID), slog.String("error", markErr.Error()))
	}
}
