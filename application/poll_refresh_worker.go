package application

import (
	"context"
	"time"

	"economy/domain/entities"
	"economy/domain/interfaces"

	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

const (
	// PollRefreshInterval is how often open poll messages are re-rendered
	PollRefreshInterval = 5 * time.Minute

	maxConcurrentRenders = 4
)

// PollRefreshWorker keeps open poll messages in sync with their stakes
type PollRefreshWorker struct {
	market   interfaces.MarketService
	renderer PollRenderer
	interval time.Duration
}

// NewPollRefreshWorker creates a new poll refresh worker
func NewPollRefreshWorker(market interfaces.MarketService, renderer PollRenderer, interval time.Duration) *PollRefreshWorker {
	if interval <= 0 {
		interval = PollRefreshInterval
	}
	return &PollRefreshWorker{
		market:   market,
		renderer: renderer,
		interval: interval,
	}
}

func (w *PollRefreshWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Poll refresh worker shutting down (context cancelled)")
				return
			case <-stopChan:
				log.Info("Poll refresh worker shutting down (stop requested)")
				return
			case <-ticker.C:
				if err := w.RefreshAll(ctx); err != nil {
					log.WithError(err).Warn("Some poll messages failed to refresh")
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// RefreshAll re-renders every open poll that has a message
func (w *PollRefreshWorker) RefreshAll(ctx context.Context) error {
	views, err := w.market.ListOpenPolls(ctx)
	if err != nil {
		return err
	}

	p := pool.New().WithContext(ctx).WithMaxGoroutines(maxConcurrentRenders)
	for _, view := range views {
		if !view.Poll.HasMessage() {
			continue
		}
		p.Go(func(ctx context.Context) error {
			return w.render(ctx, view)
		})
	}
	return p.Wait()
}

// RefreshPoll re-renders one poll right away, e.g. after a bet or a state change
func (w *PollRefreshWorker) RefreshPoll(ctx context.Context, pollID int64) error {
	view, err := w.market.GetPollView(ctx, pollID)
	if err != nil {
		return err
	}
	if !view.Poll.HasMessage() {
		return nil
	}
	return w.render(ctx, view)
}

func (w *PollRefreshWorker) render(ctx context.Context, view *entities.PollView) error {
	if err := w.renderer.RenderPoll(ctx, view); err != nil {
		log.WithError(err).WithField("pollID", view.Poll.ID).Warn("Failed to render poll")
		return err
	}
	return nil
}
