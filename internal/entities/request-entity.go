package entities

import (
	"time"

	"counsel-dispatch/pkg/types"

	"counsel-dispatch/pkg/constants"
)

// CounselRequest is a user's request for legal help.
//
// CounselorID is set exactly once, by the claim transaction, and never
// reassigned. BroadcastedTo is the snapshot of counselor ids notified at
// creation time and is immutable afterwards.
type CounselRequest struct {
	ID            string
	UserID        string
	UserContact   string
	Note          string
	Category      string
	Region        string
	Status        string
	CounselorID   *string
	BroadcastedTo []string
	ExpiresAt     time.Time
	AcceptedAt    *time.Time
	CompletedAt   *time.Time
	CancelReason  *string
	ChatSessionID *string

	types.BaseEntity
}

// Expired reports whether the request is past its claim deadline. Expiry is
// lazy: nothing flips the stored status, every claim and list path checks this.
func (r *CounselRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

func (r *CounselRequest) Terminal() bool {
	return constants.IsTerminalRequestStatus(r.Status)
}

// WasBroadcastTo reports whether the counselor is in the broadcast snapshot.
func (r *CounselRequest) WasBroadcastTo(counselorID string) bool {
	for _, id := range r.BroadcastedTo {
		if id == counselorID {
			return true
		}
	}
	return false
}
