package domain

import (
	"errors"
	"time"
)

// TimelinePhase names one step of the fulfillment timeline.
type TimelinePhase string

const (
	PhasePlaced   TimelinePhase = "placed"
	PhaseShipping TimelinePhase = "shipping"
	PhaseReceived TimelinePhase = "received"
	PhaseUsing    TimelinePhase = "using"
	PhaseReturned TimelinePhase = "returned"
)

// CanonicalPhases is the fixed phase ordering. Completed phases must always
// form a contiguous prefix of this sequence.
var CanonicalPhases = []TimelinePhase{PhasePlaced, PhaseShipping, PhaseReceived, PhaseUsing, PhaseReturned}

// TimelineEvent records whether a phase has completed and when.
type TimelineEvent struct {
	Phase       TimelinePhase
	CompletedAt *time.Time
	Description string
}

// ErrTimelineNotPrefix signals a programming error: an update would leave the
// completed set non-contiguous. It must never surface to a caller.
var ErrTimelineNotPrefix = errors.New("completed timeline phases are not a prefix of the canonical ordering")

var errUnknownPhase = errors.New("unknown timeline phase")

// NewTimeline builds the placement-time timeline: Placed completed, every
// later phase pending.
func NewTimeline(now time.Time) []TimelineEvent {
	events := make([]TimelineEvent, 0, len(CanonicalPhases))
	for _, phase := range CanonicalPhases {
		event := TimelineEvent{Phase: phase}
		if phase == PhasePlaced {
			completed := now
			event.CompletedAt = &completed
			event.Description = "Order placed"
		}
		events = append(events, event)
	}
	return events
}

// CompletePhases returns a copy of the timeline with the given phases stamped
// at now. Already-completed phases keep their original timestamp; later phases
// stay pending. The prefix invariant is verified as a post-condition.
func CompletePhases(timeline []TimelineEvent, phases []TimelinePhase, now time.Time, description string) ([]TimelineEvent, error) {
	updated := cloneTimeline(timeline)
	for _, phase := range phases {
		idx := phaseIndex(phase)
		if idx < 0 {
			return nil, errUnknownPhase
		}
		if updated[idx].CompletedAt != nil {
			continue
		}
		completed := now
		updated[idx].CompletedAt = &completed
		if description != "" {
			updated[idx].Description = description
		}
	}
	if !IsPrefixComplete(updated) {
		return nil, ErrTimelineNotPrefix
	}
	return updated, nil
}

// IsPrefixComplete reports whether the completed phases form a contiguous
// prefix of the canonical ordering.
func IsPrefixComplete(timeline []TimelineEvent) bool {
	if len(timeline) != len(CanonicalPhases) {
		return false
	}
	seenPending := false
	for i, phase := range CanonicalPhases {
		if timeline[i].Phase != phase {
			return false
		}
		if timeline[i].CompletedAt == nil {
			seenPending = true
			continue
		}
		if seenPending {
			return false
		}
	}
	return true
}

func phaseIndex(phase TimelinePhase) int {
	for i, p := range CanonicalPhases {
		if p == phase {
			return i
		}
	}
	return -1
}

func cloneTimeline(timeline []TimelineEvent) []TimelineEvent {
	cloned := make([]TimelineEvent, len(timeline))
	for i, event := range timeline {
		cloned[i] = event
		if event.CompletedAt != nil {
			completed := *event.CompletedAt
			cloned[i].CompletedAt = &completed
		}
	}
	return cloned
}
