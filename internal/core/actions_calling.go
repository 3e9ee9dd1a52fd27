package core

import (
	"time"

	"github.com/dkeye/Composite/internal/domain"
)

type (
	CallStartRequested struct{ callingCase }
	CallEndRequested   struct{ callingCase }

	// SetupCall asks the engine to prepare devices before joining.
	SetupCall    struct{ callingCase }
	DismissSetup struct{ callingCase }

	// CallingViewLaunched is dispatched when the in-call screen is shown.
	CallingViewLaunched struct{ callingCase }

	StateUpdated struct {
		callingCase
		Status domain.CallingStatus
	}

	CallIDUpdated struct {
		callingCase
		CallID string
	}

	CallStartTimeUpdated struct {
		callingCase
		At time.Time
	}

	RecordingStateUpdated struct {
		callingCase
		Active bool
	}

	TranscriptionStateUpdated struct {
		callingCase
		Active bool
	}

	HoldRequested   struct{ callingCase }
	ResumeRequested struct{ callingCase }
)

func (a CallStartTimeUpdated) equal(other Action) bool {
	o, ok := other.(CallStartTimeUpdated)
	return ok && a.At.Equal(o.At)
}
