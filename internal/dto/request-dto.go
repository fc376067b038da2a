package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateRequestDTO struct {
	Note        string `json:"note" validate:"required,min=3,max=2000"`
	Category    string `json:"category" validate:"required,category_tag"`
	Region      string `json:"region" validate:"required,region_code"`
	UserContact string `json:"user_contact" validate:"required,max=120"`
}

// CreateRequestResultDTO is returned to the caller so eligible counselors can
// be notified out-of-band; push delivery itself lives outside this service.
type CreateRequestResultDTO struct {
	RequestID      string              `json:"request_id"`
	Status         string              `json:"status"`
	BroadcastCount int                 `json:"broadcast_count"`
	ExpiresAt      time.Time           `json:"expires_at"`
	Eligible       []ShortCounselorDTO `json:"eligible"`
}

type AcceptResultDTO struct {
	Success       bool    `json:"success"`
	ChatSessionID *string `json:"chat_session_id,omitempty"`
}

type CancelRequestDTO struct {
	Reason null.String `json:"reason"`
}

type RequestDTO struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Note          string     `json:"note"`
	Category      string     `json:"category"`
	Region        string     `json:"region"`
	Status        string     `json:"status"`
	CounselorID   *string    `json:"counselor_id,omitempty"`
	BroadcastedTo []string   `json:"broadcasted_to,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
