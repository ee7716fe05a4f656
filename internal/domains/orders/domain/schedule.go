package domain

import (
	"errors"
	"strings"
	"time"
)

// ScheduleKind distinguishes the two appointment slots on an order.
type ScheduleKind string

const (
	ScheduleReceive ScheduleKind = "receive"
	ScheduleReturn  ScheduleKind = "return"
)

// Schedule is a negotiated date and place for handing the goods over. It is
// descriptive metadata: setting or revising it never moves the status.
type Schedule struct {
	Kind     ScheduleKind
	Date     time.Time
	Location string
	Notes    string
}

// Schedules holds the two independent slots; either may be unset.
type Schedules struct {
	Receive *Schedule
	Return  *Schedule
}

var (
	ErrUnknownScheduleKind  = errors.New("schedule kind must be receive or return")
	ErrScheduleDateRequired = errors.New("schedule date is required")
	ErrScheduleLocation     = errors.New("schedule location is required")
	// ErrScheduleFrozen rejects edits once the order reached a terminal state.
	ErrScheduleFrozen = errors.New("schedules cannot change on a terminal order")
)

// ParseScheduleKind validates an inbound slot name.
func ParseScheduleKind(raw string) (ScheduleKind, error) {
	switch ScheduleKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ScheduleReceive:
		return ScheduleReceive, nil
	case ScheduleReturn:
		return ScheduleReturn, nil
	default:
		return "", ErrUnknownScheduleKind
	}
}

// SetSchedule upserts one slot. Both slots stay editable while the order is
// live; terminal orders freeze them.
func (o *Order) SetSchedule(schedule Schedule) error {
	if schedule.Kind != ScheduleReceive && schedule.Kind != ScheduleReturn {
		return ErrUnknownScheduleKind
	}
	if schedule.Date.IsZero() {
		return ErrScheduleDateRequired
	}
	if strings.TrimSpace(schedule.Location) == "" {
		return ErrScheduleLocation
	}
	if o.Status.IsTerminal() {
		return ErrScheduleFrozen
	}
	slot := schedule
	if schedule.Kind == ScheduleReceive {
		o.Schedules.Receive = &slot
	} else {
		o.Schedules.Return = &slot
	}
	return nil
}

func (s Schedules) clone() Schedules {
	cloned := Schedules{}
	if s.Receive != nil {
		receive := *s.Receive
		cloned.Receive = &receive
	}
	if s.Return != nil {
		ret := *s.Return
		cloned.Return = &ret
	}
	return cloned
}
