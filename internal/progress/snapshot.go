package progress

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ybenmoussa/signup-monitor/internal/models"
	"github.com/ybenmoussa/signup-monitor/internal/timegate"
)

// Snapshot is one recomputation of every countdown figure for an account,
// derived purely from a cached progress record and the clock. The
// presenter produces one per tick without touching the store.
type Snapshot struct {
	AccountID  string                         `json:"account_id"`
	ComputedAt time.Time                      `json:"computed_at"`
	Remaining  map[Step]*int64                `json:"remaining_ms"`
	Percentage map[Step]int                   `json:"percentage"`
	Formatted  map[Step]string                `json:"formatted"`
	Recommend  map[Step]*timegate.Recommended `json:"recommended"`
}

// gateSteps are the steps whose own start date drives a countdown.
var gateSteps = []Step{StepCreateAccount, StepFirstListing, StepCheckAccount}

// ComputeSnapshot derives all countdown figures from a progress record.
// Own-date gates run off each step's start date; recommended completion
// windows for steps 2-4 run off the previous step's completion date.
func ComputeSnapshot(clock clockwork.Clock, record *models.SignupProgress) Snapshot {
	snap := Snapshot{
		ComputedAt: clock.Now(),
		Remaining:  make(map[Step]*int64),
		Percentage: make(map[Step]int),
		Formatted:  make(map[Step]string),
		Recommend:  make(map[Step]*timegate.Recommended),
	}
	if record == nil {
		return snap
	}
	snap.AccountID = record.AccountID

	dates := map[Step]*time.Time{
		StepCreateAccount: record.CreateAccountDate,
		StepFirstListing:  record.FirstListingDate,
		StepCheckAccount:  record.CheckAccountDate,
	}
	for _, step := range gateSteps {
		remaining := timegate.RemainingTime(clock, dates[step], step.Wait())
		snap.Remaining[step] = remaining
		snap.Percentage[step] = timegate.WaitingPercentage(clock, dates[step], step.Wait())
		snap.Formatted[step] = timegate.FormatRemaining(remaining)
	}

	// Recommended completion windows are anchored on the previous step's
	// completion date, never on the step's own date.
	snap.Recommend[StepFirstListing] = timegate.RecommendedCompletion(clock, record.CreateAccountDate, timegate.WaitFirstListing)
	snap.Recommend[StepSellerAccount] = timegate.RecommendedCompletion(clock, record.FirstListingDate, timegate.WaitSellerAccount)
	snap.Recommend[StepCheckAccount] = timegate.RecommendedCompletion(clock, record.SellerAccountDate, timegate.WaitCheckAccount)

	return snap
}

// Early reports whether completing the given step now would happen before
// its recommended completion time. Early completion is permitted, the
// dashboard just flags the action differently.
func (s Snapshot) Early(step Step) bool {
	rec := s.Recommend[step]
	return rec != nil && rec.RemainingMS > 0
}
