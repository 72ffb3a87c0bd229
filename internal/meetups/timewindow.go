// internal/meetups/timewindow.go
//
// All discovery windows are anchored to a single product-wide wall clock,
// UTC+5:30, regardless of where the request comes from. Arithmetic happens
// in a shifted UTC frame: shift now by the offset, take calendar boundaries
// there, shift back.

package meetups

import (
	"fmt"
	"time"
)

// localOffset is the fixed product wall-clock offset (IST).
const localOffset = 5*time.Hour + 30*time.Minute

// quotaResetHour/quotaResetMinute anchor the daily join-request window at
// 04:30 local rather than midnight.
const (
	quotaResetHour   = 4
	quotaResetMinute = 30
)

// WindowKind selects a discovery time range.
type WindowKind string

const (
	WindowUpcoming    WindowKind = "upcoming"
	WindowThisWeek    WindowKind = "this-week"
	WindowThisWeekend WindowKind = "this-weekend"
)

// Window is a half-open-at-nothing time range in UTC. A zero End means
// unbounded (the upcoming feed).
type Window struct {
	Start time.Time
	End   time.Time
}

// Bounded reports whether the window has an upper edge.
func (w Window) Bounded() bool { return !w.End.IsZero() }

// ParseWindowKind validates a raw window string.
func ParseWindowKind(s string) (WindowKind, error) {
	switch WindowKind(s) {
	case WindowUpcoming, WindowThisWeek, WindowThisWeekend:
		return WindowKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWindow, s)
}

// ResolveWindow maps a window kind to concrete UTC bounds relative to now.
func ResolveWindow(kind WindowKind, now time.Time) (Window, error) {
	local := now.UTC().Add(localOffset)

	switch kind {
	case WindowUpcoming:
		return Window{Start: now.UTC()}, nil

	case WindowThisWeek:
		// Monday 00:00 through Sunday 23:59:59 of the current local week
		diffToMonday := (int(local.Weekday()) + 6) % 7
		monday := time.Date(local.Year(), local.Month(), local.Day()-diffToMonday, 0, 0, 0, 0, time.UTC)
		return Window{
			Start: monday.Add(-localOffset),
			End:   monday.AddDate(0, 0, 7).Add(-time.Second - localOffset),
		}, nil

	case WindowThisWeekend:
		// Saturday 00:00 through Sunday 23:59:59; on a Sunday this already
		// points at the next weekend
		toSaturday := (int(time.Saturday) - int(local.Weekday()) + 7) % 7
		saturday := time.Date(local.Year(), local.Month(), local.Day()+toSaturday, 0, 0, 0, 0, time.UTC)
		return Window{
			Start: saturday.Add(-localOffset),
			End:   saturday.AddDate(0, 0, 2).Add(-time.Second - localOffset),
		}, nil
	}

	return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, kind)
}

// DailyQuotaWindow returns the current join-request accounting day: the most
// recent 04:30 local boundary through one second before the next one.
func DailyQuotaWindow(now time.Time) Window {
	local := now.UTC().Add(localOffset)

	anchor := time.Date(local.Year(), local.Month(), local.Day(), quotaResetHour, quotaResetMinute, 0, 0, time.UTC)
	if local.Before(anchor) {
		anchor = anchor.AddDate(0, 0, -1)
	}

	return Window{
		Start: anchor.Add(-localOffset),
		End:   anchor.AddDate(0, 0, 1).Add(-time.Second - localOffset),
	}
}
