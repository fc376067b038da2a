package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"counsel-dispatch/internal/dto"
	"counsel-dispatch/internal/events"
	"counsel-dispatch/internal/repositories"
	"counsel-dispatch/pkg/eventbus"
)

// ArbiterServiceInterface is the claim contract: among any number of
// concurrent claims on one request, exactly one succeeds and the rest get a
// typed rejection. Which one wins is unspecified; there is no fairness across
// racing counselor clients.
type ArbiterServiceInterface interface {
	Accept(ctx context.Context, requestID, counselorID string) (*dto.AcceptResultDTO, error)
	AcceptQueued(ctx context.Context, appointmentID, counselorID string) (*dto.AcceptResultDTO, error)
}

type ArbiterService struct {
	claimRepo   repositories.ClaimRepositoryInterface
	requestRepo repositories.RequestRepositoryInterface
	chatCreator ChatSessionCreator
	bus         *eventbus.Bus
	logger      *zap.Logger
}

func NewArbiterService(
	claimRepo repositories.ClaimRepositoryInterface,
	requestRepo repositories.RequestRepositoryInterface,
	chatCreator ChatSessionCreator,
	bus *eventbus.Bus,
	logger *zap.Logger,
) ArbiterServiceInterface {
	return &ArbiterService{
		claimRepo:   claimRepo,
		requestRepo: requestRepo,
		chatCreator: chatCreator,
		bus:         bus,
		logger:      logger,
	}
}

// Accept claims a request for a counselor. The decision itself is the single
// conditional write inside the claim repository; everything after it
// (chat session, events) is best-effort and never undoes a committed claim.
func (s *ArbiterService) Accept(ctx context.Context, requestID, counselorID string) (*dto.AcceptResultDTO, error) {
	claimed, err := s.claimRepo.ClaimRequest(ctx, requestID, counselorID, time.Now())
	if err != nil {
		s.logger.Debug("claim rejected",
			zap.String("requestId", requestID),
			zap.String("counselorId", counselorID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("claim won",
		zap.String("requestId", requestID),
		zap.String("counselorId", counselorID),
	)

	chatRef := s.openChatSession(ctx, claimed.ID, claimed.UserID, counselorID)

	s.bus.Publish(ctx, events.RequestAcceptedEvent{Request: *claimed, CounselorID: counselorID})

	return &dto.AcceptResultDTO{Success: true, ChatSessionID: chatRef}, nil
}

// AcceptQueued claims an appointment from the pull queue through the same
// conditional-write contract; the appointment and its paired request flip
// together or not at all.
func (s *ArbiterService) AcceptQueued(ctx context.Context, appointmentID, counselorID string) (*dto.AcceptResultDTO, error) {
	appt, request, err := s.claimRepo.ClaimAppointment(ctx, appointmentID, counselorID, time.Now())
	if err != nil {
		s.logger.Debug("queued claim rejected",
			zap.String("appointmentId", appointmentID),
			zap.String("counselorId", counselorID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("queued claim won",
		zap.String("appointmentId", appt.ID),
		zap.String("requestId", request.ID),
		zap.String("counselorId", counselorID),
	)

	chatRef := s.openChatSession(ctx, request.ID, request.UserID, counselorID)

	s.bus.Publish(ctx, events.RequestAcceptedEvent{Request: *request, CounselorID: counselorID})

	return &dto.AcceptResultDTO{Success: true, ChatSessionID: chatRef}, nil
}

// openChatSession fires the external chat creation once. The claim is the
// valuable, scarce resource; a chat failure is logged and the ref left empty.
func (s *ArbiterService) openChatSession(ctx context.Context, requestID, userID, counselorID string) *string {
	chatID, err := s.chatCreator.CreateChatSession(ctx, requestID, userID, counselorID)
	if err != nil {
		s.logger.Warn("chat session creation failed after claim",
			zap.String("requestId", requestID),
			zap.Error(err),
		)
		return nil
	}

	if err := s.requestRepo.SetChatSession(ctx, requestID, chatID); err != nil {
		s.logger.Warn("failed to store chat session ref",
			zap.String("requestId", requestID),
			zap.Error(err),
		)
	}
	return &chatID
}
