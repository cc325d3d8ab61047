package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/interpretek/booking-core/internal/domain/model"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name       string
		transition Transition
		from       model.JobStatus
		want       bool
	}{
		{"accept from pending", TransitionAccept, model.JobStatusPending, true},
		{"accept from assigned", TransitionAccept, model.JobStatusAssigned, false},
		{"accept from cancelled", TransitionAccept, model.JobStatusCancelled, false},
		{"start from assigned", TransitionStart, model.JobStatusAssigned, true},
		{"start from pending", TransitionStart, model.JobStatusPending, false},
		{"cancel from pending", TransitionCancel, model.JobStatusPending, true},
		{"cancel from assigned", TransitionCancel, model.JobStatusAssigned, true},
		{"cancel from in_progress", TransitionCancel, model.JobStatusInProgress, true},
		{"cancel from completed", TransitionCancel, model.JobStatusCompleted, false},
		{"cancel from cancelled", TransitionCancel, model.JobStatusCancelled, false},
		{"end from assigned", TransitionEnd, model.JobStatusAssigned, true},
		{"end from in_progress", TransitionEnd, model.JobStatusInProgress, true},
		{"end from pending", TransitionEnd, model.JobStatusPending, false},
		{"end from cancelled", TransitionEnd, model.JobStatusCancelled, false},
		{"no_show from assigned", TransitionNoShow, model.JobStatusAssigned, true},
		{"no_show from in_progress", TransitionNoShow, model.JobStatusInProgress, true},
		{"no_show from pending", TransitionNoShow, model.JobStatusPending, false},
		{"reopen from cancelled", TransitionReopen, model.JobStatusCancelled, true},
		{"reopen from pending", TransitionReopen, model.JobStatusPending, false},
		{"reopen from completed", TransitionReopen, model.JobStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.transition, tt.from))
		})
	}
}

func TestTarget(t *testing.T) {
	assert.Equal(t, model.JobStatusAssigned, Target(TransitionAccept))
	assert.Equal(t, model.JobStatusInProgress, Target(TransitionStart))
	assert.Equal(t, model.JobStatusCancelled, Target(TransitionCancel))
	assert.Equal(t, model.JobStatusCompleted, Target(TransitionEnd))
	assert.Equal(t, model.JobStatusNoShow, Target(TransitionNoShow))
	assert.Equal(t, model.JobStatusPending, Target(TransitionReopen))
}

func TestClearsTranslator(t *testing.T) {
	assert.True(t, ClearsTranslator(TransitionCancel))
	assert.True(t, ClearsTranslator(TransitionReopen))
	assert.False(t, ClearsTranslator(TransitionEnd))
	assert.True(t, ClearsTranslator(TransitionNoShow))
	assert.False(t, ClearsTranslator(TransitionAccept))
}

func TestFromStates_CoverEveryTransition(t *testing.T) {
	for _, tr := range []Transition{
		TransitionAccept, TransitionStart, TransitionCancel,
		TransitionEnd, TransitionNoShow, TransitionReopen,
	} {
		assert.NotEmpty(t, FromStates(tr), "transition %s has no from states", tr)
		assert.True(t, Target(tr).Valid(), "transition %s has no target", tr)
	}
}
