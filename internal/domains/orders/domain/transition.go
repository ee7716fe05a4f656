package domain

import (
	"errors"
	"time"
)

// Transition names an actor-gated lifecycle operation.
type Transition string

const (
	TransitionConfirmPayment  Transition = "ConfirmPayment"
	TransitionConfirmReceived Transition = "ConfirmReceived"
	TransitionInitiateReturn  Transition = "InitiateReturn"
	TransitionMarkCompleted   Transition = "MarkCompleted"
	TransitionCancel          Transition = "Cancel"
)

var (
	ErrUnknownTransition = errors.New("unknown transition")
	// ErrRoleNotAllowed rejects a transition attempted by the wrong side.
	ErrRoleNotAllowed = errors.New("actor role is not allowed to apply this transition")
	// ErrStaleStatus rejects a transition whose source state no longer matches;
	// the caller likely holds a stale read.
	ErrStaleStatus = errors.New("order status does not match the transition source state")
)

// transitionRule is one row of the transition table. Skipping states is
// impossible structurally: every rule names exactly one source status.
type transitionRule struct {
	from        Status
	to          Status
	role        Role
	phases      []TimelinePhase
	description string
}

var transitionRules = map[Transition]transitionRule{
	TransitionConfirmPayment: {
		from:   StatusOrdered,
		to:     StatusShipping,
		role:   RoleSeller,
		phases: []TimelinePhase{PhaseShipping},
	},
	TransitionConfirmReceived: {
		from:   StatusShipping,
		to:     StatusUsing,
		role:   RoleBuyer,
		phases: []TimelinePhase{PhaseReceived, PhaseUsing},
	},
	TransitionInitiateReturn: {
		from:        StatusUsing,
		to:          StatusReturn,
		role:        RoleBuyer,
		phases:      []TimelinePhase{PhaseReturned},
		description: "Return initiated by customer",
	},
	TransitionMarkCompleted: {
		from: StatusReturn,
		to:   StatusCompleted,
		role: RoleSeller,
	},
}

// ParseTransition validates an inbound transition name.
func ParseTransition(raw string) (Transition, error) {
	t := Transition(raw)
	if _, ok := transitionRules[t]; ok {
		return t, nil
	}
	if t == TransitionCancel {
		return t, nil
	}
	return "", ErrUnknownTransition
}

// Target returns the status the transition drives the order into.
func (t Transition) Target() (Status, bool) {
	if t == TransitionCancel {
		return StatusCancelled, true
	}
	rule, ok := transitionRules[t]
	if !ok {
		return "", false
	}
	return rule.to, true
}

// ApplyTransition validates the actor and source state against the transition
// table and mutates the order in place, stamping the matching timeline phases.
// It returns false without error when the order already sits in the target
// state, which makes retry-after-timeout safe.
//
// Check order matters: role gating is decided before state, so a buyer poking
// a seller-only transition sees Forbidden rather than Conflict regardless of
// where the order currently is.
func (o *Order) ApplyTransition(t Transition, role Role, now time.Time) (bool, error) {
	if t == TransitionCancel {
		return o.applyCancel(role, now)
	}
	rule, ok := transitionRules[t]
	if !ok {
		return false, ErrUnknownTransition
	}
	if role != rule.role {
		return false, ErrRoleNotAllowed
	}
	if o.Status == rule.to {
		return false, nil
	}
	if o.Status != rule.from {
		return false, ErrStaleStatus
	}
	timeline, err := CompletePhases(o.Timeline, rule.phases, now, rule.description)
	if err != nil {
		return false, err
	}
	o.Status = rule.to
	o.Timeline = timeline
	return true, nil
}

// applyCancel implements the policy escape hatch: the buyer may cancel only
// before anything has shipped, the seller at any non-terminal point. The
// timeline freezes as-is.
func (o *Order) applyCancel(role Role, _ time.Time) (bool, error) {
	switch role {
	case RoleSeller:
	case RoleBuyer:
		if o.Status != StatusOrdered && o.Status != StatusCancelled {
			return false, ErrRoleNotAllowed
		}
	default:
		return false, ErrUnknownRole
	}
	if o.Status == StatusCancelled {
		return false, nil
	}
	if o.Status.IsTerminal() {
		return false, ErrStaleStatus
	}
	o.Status = StatusCancelled
	return true, nil
}
