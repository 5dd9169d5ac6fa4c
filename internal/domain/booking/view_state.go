package booking

import (
	"strings"
	"time"
)

// ViewState slices a booking list for display.
type ViewState string

const (
	ViewAll      ViewState = "ALL"
	ViewCurrent  ViewState = "CURRENT"
	ViewPast     ViewState = "PAST"
	ViewFuture   ViewState = "FUTURE"
	ViewWaiting  ViewState = "WAITING"
	ViewRejected ViewState = "REJECTED"
)

var viewStates = map[ViewState]struct{}{
	ViewAll: {}, ViewCurrent: {}, ViewPast: {}, ViewFuture: {}, ViewWaiting: {}, ViewRejected: {},
}

// ParseViewState parses a state name case-insensitively. Empty input means ALL.
func ParseViewState(s string) (ViewState, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ViewAll, nil
	}
	state := ViewState(strings.ToUpper(s))
	if _, ok := viewStates[state]; !ok {
		return "", ErrUnknownState.WithMessagef("Unknown state: %s", s)
	}
	return state, nil
}

// Criteria is a store-independent booking filter. Zero fields impose no constraint.
type Criteria struct {
	Status      BookingStatus
	StartAtMost *time.Time // start <= t
	EndAtLeast  *time.Time // end >= t
	EndBefore   *time.Time // end < t
	StartAfter  *time.Time // start > t
}

// Criteria maps the view state to a filter evaluated against now.
func (v ViewState) Criteria(now time.Time) Criteria {
	switch v {
	case ViewCurrent:
		return Criteria{Status: StatusApproved, StartAtMost: &now, EndAtLeast: &now}
	case ViewPast:
		return Criteria{Status: StatusApproved, EndBefore: &now}
	case ViewFuture:
		return Criteria{Status: StatusApproved, StartAfter: &now}
	case ViewWaiting:
		return Criteria{Status: StatusWaiting}
	case ViewRejected:
		return Criteria{Status: StatusRejected}
	default:
		return Criteria{}
	}
}

// Matches evaluates the criteria against a loaded booking.
func (c Criteria) Matches(b *Booking) bool {
	if c.Status != "" && b.status != c.Status {
		return false
	}
	if c.StartAtMost != nil && b.start.After(*c.StartAtMost) {
		return false
	}
	if c.EndAtLeast != nil && b.end.Before(*c.EndAtLeast) {
		return false
	}
	if c.EndBefore != nil && !b.end.Before(*c.EndBefore) {
		return false
	}
	if c.StartAfter != nil && !b.start.After(*c.StartAfter) {
		return false
	}
	return true
}

// Less orders bookings by start descending, then id descending.
func Less(a, b *Booking) bool {
	if !a.start.Equal(b.start) {
		return a.start.After(b.start)
	}
	return strings.Compare(a.id.String(), b.id.String()) > 0
}
