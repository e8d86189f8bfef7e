package model

import "time"

// =====================================================
// LIFECYCLE EVALUATION
// =====================================================
// The stored status only caches the last observed state; what a caller
// sees is always derived from the timestamps and the clock. These
// functions are pure so both request paths and the worker share them.

// EffectiveStatus computes the status an auction is actually in at `now`,
// regardless of what is persisted.
//
// Rules, in order:
//  1. A stored `upcoming` auction whose start time has passed is live;
//     if its end time has also passed it went straight to ended.
//  2. A stored `live` auction whose end time has passed is ended.
//  3. Otherwise the stored status stands (ended and cancelled are terminal).
func EffectiveStatus(a *Auction, now time.Time) string {
	switch a.Status {
	case StatusUpcoming:
		if !now.Before(a.StartTime) {
			if !now.Before(a.EndTime) {
				return StatusEnded
			}
			return StatusLive
		}
	case StatusLive:
		if !now.Before(a.EndTime) {
			return StatusEnded
		}
	}
	return a.Status
}

// TimeRemaining returns how long until the auction closes.
// Zero unless the auction is effectively live.
func TimeRemaining(a *Auction, now time.Time) time.Duration {
	if EffectiveStatus(a, now) != StatusLive {
		return 0
	}
	return a.EndTime.Sub(now)
}
