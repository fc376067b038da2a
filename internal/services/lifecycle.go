package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"counsel-dispatch/internal/events"
	"counsel-dispatch/internal/repositories"
	"counsel-dispatch/pkg/eventbus"
)

// LifecycleServiceInterface owns the terminal transitions. Terminal states are
// immutable; a second complete or cancel is rejected by the guards in the
// claim repository.
type LifecycleServiceInterface interface {
	Complete(ctx context.Context, requestID string) error
	Cancel(ctx context.Context, requestID string, reason *string) error
}

type LifecycleService struct {
	claimRepo repositories.ClaimRepositoryInterface
	bus       *eventbus.Bus
	logger    *zap.Logger
}

func NewLifecycleService(
	claimRepo repositories.ClaimRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) LifecycleServiceInterface {
	return &LifecycleService{
		claimRepo: claimRepo,
		bus:       bus,
		logger:    logger,
	}
}

func (s *LifecycleService) Complete(ctx context.Context, requestID string) error {
	completed, err := s.claimRepo.CompleteRequest(ctx, requestID, time.Now())
	if err != nil {
		return err
	}

	s.logger.Info("request completed", zap.String("requestId", requestID))
	s.bus.Publish(ctx, events.RequestClosedEvent{Request: *completed, Reason: "completed"})
	return nil
}

func (s *LifecycleService) Cancel(ctx context.Context, requestID string, reason *string) error {
	cancelled, err := s.claimRepo.CancelRequest(ctx, requestID, reason, time.Now())
	if err != nil {
		return err
	}

	why := "cancelled"
	if reason != nil {
		why = *reason
	}
	s.logger.Info("request cancelled",
		zap.String("requestId", requestID),
		zap.String("reason", why),
	)
	s.bus.Publish(ctx, events.RequestClosedEvent{Request: *cancelled, Reason: why})
	return nil
}
