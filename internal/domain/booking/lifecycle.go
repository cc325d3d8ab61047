// Package booking holds the pure domain rules of the job lifecycle:
// which state transitions are legal and which translators are eligible
// for a given job. It has no I/O and no dependencies beyond the model.
package booking

import (
	"github.com/interpretek/booking-core/internal/domain/model"
)

// Transition names an intent against the job lifecycle.
type Transition string

const (
	// TransitionAccept moves pending → assigned via claim arbitration.
	TransitionAccept Transition = "accept"
	// TransitionStart moves assigned → in_progress when the session begins.
	TransitionStart Transition = "start"
	// TransitionCancel moves pending/assigned/in_progress → cancelled.
	TransitionCancel Transition = "cancel"
	// TransitionEnd moves assigned/in_progress → completed.
	TransitionEnd Transition = "end"
	// TransitionNoShow moves assigned/in_progress → no_show.
	TransitionNoShow Transition = "no_show"
	// TransitionReopen moves cancelled → pending.
	TransitionReopen Transition = "reopen"
)

// transitions maps each intent to the states it may be attempted from and
// the state it lands in. Any attempt from a state outside From is an
// invalid transition and must not mutate the job.
var transitions = map[Transition]struct {
	From []model.JobStatus
	To   model.JobStatus
}{
	TransitionAccept: {
		From: []model.JobStatus{model.JobStatusPending},
		To:   model.JobStatusAssigned,
	},
	TransitionStart: {
		From: []model.JobStatus{model.JobStatusAssigned},
		To:   model.JobStatusInProgress,
	},
	TransitionCancel: {
		From: []model.JobStatus{model.JobStatusPending, model.JobStatusAssigned, model.JobStatusInProgress},
		To:   model.JobStatusCancelled,
	},
	TransitionEnd: {
		From: []model.JobStatus{model.JobStatusAssigned, model.JobStatusInProgress},
		To:   model.JobStatusCompleted,
	},
	TransitionNoShow: {
		From: []model.JobStatus{model.JobStatusAssigned, model.JobStatusInProgress},
		To:   model.JobStatusNoShow,
	},
	TransitionReopen: {
		From: []model.JobStatus{model.JobStatusCancelled},
		To:   model.JobStatusPending,
	},
}

// FromStates returns the states the transition may legally start from.
// The returned slice must not be mutated.
func FromStates(t Transition) []model.JobStatus {
	return transitions[t].From
}

// Target returns the state the transition lands in.
func Target(t Transition) model.JobStatus {
	return transitions[t].To
}

// Allowed reports whether the transition may be taken from the given state.
func Allowed(t Transition, from model.JobStatus) bool {
	for _, s := range transitions[t].From {
		if s == from {
			return true
		}
	}
	return false
}

// ClearsTranslator reports whether the transition removes the assigned
// translator. A job carries an assignment exactly while it is assigned,
// in progress, or completed; cancel, reopen and no_show all leave the job
// unassigned (the audit trail keeps who was booked).
func ClearsTranslator(t Transition) bool {
	return t == TransitionCancel || t == TransitionReopen || t == TransitionNoShow
}
