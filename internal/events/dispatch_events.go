package events

import "counsel-dispatch/internal/entities"

// RequestCreatedEvent fires after the dispatcher persists a new request.
// Eligible holds the broadcast snapshot so listeners can fan out.
type RequestCreatedEvent struct {
	Request  entities.CounselRequest
	Eligible []entities.Counselor
}

func (e RequestCreatedEvent) Name() string { return "dispatch.request.created" }

// RequestAcceptedEvent fires after a claim commits.
type RequestAcceptedEvent struct {
	Request     entities.CounselRequest
	CounselorID string
}

func (e RequestAcceptedEvent) Name() string { return "dispatch.request.accepted" }

// RequestClosedEvent fires on complete or cancel.
type RequestClosedEvent struct {
	Request entities.CounselRequest
	Reason  string
}

func (e RequestClosedEvent) Name() string { return "dispatch.request.closed" }
