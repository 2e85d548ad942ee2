// Package timegate computes elapsed-time gates for the signup workflow.
// Every function is a pure computation over a start timestamp and a
// required wait, so callers can recompute them every second against a
// cached record without touching the store.
package timegate

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Required minimum waits per signup step.
const (
	WaitCreateAccount = 3 * time.Hour
	WaitFirstListing  = 3 * time.Hour
	WaitSellerAccount = 2 * time.Hour
	WaitCheckAccount  = 5 * time.Minute
)

// RemainingTime returns the milliseconds left until start+wait, clamped at
// zero. Returns nil if the step has no start timestamp yet.
func RemainingTime(clock clockwork.Clock, start *time.Time, wait time.Duration) *int64 {
	if start == nil {
		return nil
	}

	target := start.Add(wait)
	remaining := target.Sub(clock.Now()).Milliseconds()
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// WaitingPercentage returns how much of the wait has elapsed as an integer
// in [0,100]. Returns 0 when start is nil or still in the future, 100 once
// the wait has fully elapsed.
func WaitingPercentage(clock clockwork.Clock, start *time.Time, wait time.Duration) int {
	if start == nil || wait <= 0 {
		return 0
	}

	now := clock.Now()
	if !now.Before(start.Add(wait)) {
		return 100
	}

	elapsed := now.Sub(*start)
	pct := int(elapsed * 100 / wait)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// FormatRemaining renders a remaining-time figure for the dashboard.
// Nil or non-positive input renders as "Ready"; otherwise the largest
// non-zero units are shown, down to a bare seconds figure.
func FormatRemaining(remainingMS *int64) string {
	if remainingMS == nil || *remainingMS <= 0 {
		return "Ready"
	}

	ms := *remainingMS
	hours := ms / int64(time.Hour/time.Millisecond)
	minutes := (ms % int64(time.Hour/time.Millisecond)) / int64(time.Minute/time.Millisecond)
	seconds := (ms % int64(time.Minute/time.Millisecond)) / 1000

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds remaining", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds remaining", minutes, seconds)
	}
	return fmt.Sprintf("%ds remaining", seconds)
}

// Recommended describes when a step should be completed relative to the
// previous step's completion date.
type Recommended struct {
	TargetDate  time.Time `json:"target_date"`
	RemainingMS int64     `json:"remaining_ms"`
	Percentage  int       `json:"percentage"`
}

// RecommendedCompletion derives the recommended completion window for a
// step from the previous step's completion date. Returns nil if the
// previous step has no date yet.
func RecommendedCompletion(clock clockwork.Clock, prevDate *time.Time, wait time.Duration) *Recommended {
	if prevDate == nil {
		return nil
	}

	remaining := RemainingTime(clock, prevDate, wait)
	return &Recommended{
		TargetDate:  prevDate.Add(wait),
		RemainingMS: *remaining,
		Percentage:  WaitingPercentage(clock, prevDate, wait),
	}
}
