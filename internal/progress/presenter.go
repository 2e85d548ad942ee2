package progress

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/ybenmoussa/signup-monitor/internal/models"
)

// Fetcher fetches the canonical progress record for an account.
type Fetcher interface {
	GetOrCreate(ctx context.Context, accountID string) (*models.SignupProgress, error)
}

// Notification announces a waiting period reaching zero. Each gate fires
// at most once per fetch cycle.
type Notification struct {
	AccountID string    `json:"account_id"`
	Step      Step      `json:"step"`
	At        time.Time `json:"at"`
}

// Presenter drives the live countdown view for one account at a time.
// It fetches the progress record once on Start (and again on Refresh
// after a mutation), holds it in an owned cache cell, and recomputes
// every countdown figure on a fixed-rate tick without re-querying the
// store. Switching accounts or stopping tears the tick loop down.
type Presenter struct {
	fetcher  Fetcher
	clock    clockwork.Clock
	interval time.Duration
	logger   *logrus.Logger

	mu        sync.Mutex
	accountID string
	record    *models.SignupProgress
	snapshot  Snapshot
	notified  map[Step]bool
	cancel    context.CancelFunc
	done      chan struct{}

	updates       chan Snapshot
	notifications chan Notification
}

// NewPresenter creates a presenter ticking at the given interval
// (defaults to one second).
func NewPresenter(fetcher Fetcher, clock clockwork.Clock, interval time.Duration, logger *logrus.Logger) *Presenter {
	if interval <= 0 {
		interval = time.Second
	}
	return &Presenter{
		fetcher:       fetcher,
		clock:         clock,
		interval:      interval,
		logger:        logger,
		updates:       make(chan Snapshot, 1),
		notifications: make(chan Notification, 4),
	}
}

// Start fetches the account's progress once and begins ticking against
// the cached record. Starting for a new account tears down any previous
// session first, so timers never leak across accounts.
func (p *Presenter) Start(ctx context.Context, accountID string) error {
	p.Stop()

	record, err := p.fetcher.GetOrCreate(ctx, accountID)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.accountID = accountID
	p.record = record
	p.notified = make(map[Step]bool)
	p.snapshot = ComputeSnapshot(p.clock, record)
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go p.loop(loopCtx, done)

	p.logger.WithField("account_id", accountID).Debug("Countdown presenter started")
	return nil
}

// Refresh re-fetches the record after a mutation and resumes ticking
// against the new cache. On failure the previous cache is left intact so
// the view never shows a false success.
func (p *Presenter) Refresh(ctx context.Context) error {
	p.mu.Lock()
	accountID := p.accountID
	p.mu.Unlock()
	if accountID == "" {
		return nil
	}

	record, err := p.fetcher.GetOrCreate(ctx, accountID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.record = record
	p.notified = make(map[Step]bool)
	p.snapshot = ComputeSnapshot(p.clock, record)
	snap := p.snapshot
	p.mu.Unlock()

	p.publish(snap, nil)
	return nil
}

// Stop tears down the tick loop and waits for it to exit. Safe to call
// when not started.
func (p *Presenter) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Snapshot returns the most recently computed countdown figures.
func (p *Presenter) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// Record returns the cached progress record.
func (p *Presenter) Record() *models.SignupProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record
}

// Updates delivers the latest snapshot after each tick. Slow consumers
// only ever miss intermediate snapshots, never the newest.
func (p *Presenter) Updates() <-chan Snapshot {
	return p.updates
}

// Notifications delivers one-shot waiting-period-complete events.
func (p *Presenter) Notifications() <-chan Notification {
	return p.notifications
}

func (p *Presenter) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.tick()
		}
	}
}

// tick recomputes the snapshot from the cached record. Pure computation,
// no store access.
func (p *Presenter) tick() {
	p.mu.Lock()
	if p.record == nil {
		p.mu.Unlock()
		return
	}

	prev := p.snapshot
	next := ComputeSnapshot(p.clock, p.record)
	p.snapshot = next

	var fired []Notification
	for _, step := range gateSteps {
		if p.notified[step] {
			continue
		}
		before := prev.Remaining[step]
		after := next.Remaining[step]
		if before != nil && *before > 0 && after != nil && *after == 0 {
			p.notified[step] = true
			fired = append(fired, Notification{
				AccountID: p.accountID,
				Step:      step,
				At:        p.clock.Now(),
			})
		}
	}
	p.mu.Unlock()

	p.publish(next, fired)
}

func (p *Presenter) publish(snap Snapshot, fired []Notification) {
	// Keep only the newest snapshot buffered.
	select {
	case <-p.updates:
	default:
	}
	select {
	case p.updates <- snap:
	default:
	}

	for _, n := range fired {
		select {
		case p.notifications <- n:
		default:
			p.logger.WithFields(logrus.Fields{
				"account_id": n.AccountID,
				"step":       n.Step,
			}).Warn("Dropped waiting-period notification, consumer too slow")
		}
	}
}
