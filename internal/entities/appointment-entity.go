package entities

import (
	"time"

	"counsel-dispatch/pkg/constants"
	"counsel-dispatch/pkg/types"
)

// Appointment is the fallback path: a dated booking created together with a
// scheduled CounselRequest when no counselor was eligible at dispatch time.
// Exactly one appointment exists per scheduled request, and the pair is only
// ever claimed or closed together.
type Appointment struct {
	ID          string
	RequestID   string
	UserID      string
	UserContact string
	Region      string
	ScheduledAt time.Time
	Status      string
	CounselorID *string
	CancelledAt *time.Time
	CompletedAt *time.Time

	types.BaseEntity
}

func (a *Appointment) Terminal() bool {
	return constants.IsTerminalAppointmentStatus(a.Status)
}
