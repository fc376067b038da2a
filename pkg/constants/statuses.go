package constants

// Counsel request statuses. A request moves through exactly one of two paths:
// broadcasting -> accepted -> completed (the live path) or
// scheduled -> accepted -> completed (the booking path). pending is a
// broadcast that found nobody; it stays claimable until it expires.
const (
	RequestBroadcasting = "broadcasting"
	RequestPending      = "pending"
	RequestAccepted     = "accepted"
	RequestScheduled    = "scheduled"
	RequestCompleted    = "completed"
	RequestCancelled    = "cancelled"
	RequestExpired      = "expired"
)

// ClaimableRequestStatuses are the statuses a claim flips directly. Scheduled
// requests are claimable too, but flip together with their paired appointment
// in the pair transaction.
var ClaimableRequestStatuses = []string{RequestBroadcasting, RequestPending}

func IsTerminalRequestStatus(status string) bool {
	switch status {
	case RequestCompleted, RequestCancelled, RequestExpired:
		return true
	}
	return false
}

// Appointment statuses.
const (
	AppointmentQueued    = "queued"
	AppointmentScheduled = "scheduled"
	AppointmentAccepted  = "accepted"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
	AppointmentNoShow    = "no_show"
)

func IsTerminalAppointmentStatus(status string) bool {
	switch status {
	case AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// Counselor verification statuses. Only approved counselors are ever part of
// a broadcast set or allowed to claim.
const (
	CounselorPendingReview = "pending_review"
	CounselorApproved      = "approved"
	CounselorSuspended     = "suspended"
)
