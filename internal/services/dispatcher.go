package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"counsel-dispatch/internal/dto"
	"counsel-dispatch/internal/entities"
	"counsel-dispatch/internal/events"
	"counsel-dispatch/internal/repositories"
	"counsel-dispatch/pkg/config"
	"counsel-dispatch/pkg/constants"
	"counsel-dispatch/pkg/eventbus"
)

type DispatcherServiceInterface interface {
	CreateRequest(ctx context.Context, userID string, data dto.CreateRequestDTO) (*dto.CreateRequestResultDTO, error)
	ListOpenByRegion(ctx context.Context, region string) ([]dto.RequestDTO, error)
	ListBroadcastedTo(ctx context.Context, counselorID string) ([]dto.RequestDTO, error)
	ListByUser(ctx context.Context, userID string) ([]dto.RequestDTO, error)
	FindRequest(ctx context.Context, id string) (*dto.RequestDTO, error)
}

type DispatcherService struct {
	requestRepo repositories.RequestRepositoryInterface
	directory   DirectoryServiceInterface
	bus         *eventbus.Bus
	dispatchCfg config.DispatchConfig
	logger      *zap.Logger
}

func NewDispatcherService(
	requestRepo repositories.RequestRepositoryInterface,
	directory DirectoryServiceInterface,
	bus *eventbus.Bus,
	dispatchCfg config.DispatchConfig,
	logger *zap.Logger,
) DispatcherServiceInterface {
	return &DispatcherService{
		requestRepo: requestRepo,
		directory:   directory,
		bus:         bus,
		dispatchCfg: dispatchCfg,
		logger:      logger,
	}
}

// CreateRequest snapshots the full eligible set into broadcasted_to (a fan-out
// notify, not a single offer), stamps the claim deadline and persists the
// request in a single write. If the store is down nothing was written, so the
// whole call just fails.
func (s *DispatcherService) CreateRequest(ctx context.Context, userID string, data dto.CreateRequestDTO) (*dto.CreateRequestResultDTO, error) {
	eligible, err := s.directory.FindEligible(ctx, data.Region)
	if err != nil {
		return nil, err
	}

	status := constants.RequestBroadcasting
	if len(eligible) == 0 {
		status = constants.RequestPending
	}

	broadcastedTo := make([]string, 0, len(eligible))
	for _, c := range eligible {
		broadcastedTo = append(broadcastedTo, c.ID)
	}

	request := &entities.CounselRequest{
		ID:            uuid.NewString(),
		UserID:        userID,
		UserContact:   data.UserContact,
		Note:          data.Note,
		Category:      data.Category,
		Region:        data.Region,
		Status:        status,
		BroadcastedTo: broadcastedTo,
		ExpiresAt:     time.Now().Add(s.dispatchCfg.BroadcastWindow),
	}

	if err := s.requestRepo.CreateRequest(ctx, request); err != nil {
		s.logger.Error("failed to persist counsel request", zap.Error(err))
		return nil, err
	}

	s.bus.Publish(ctx, events.RequestCreatedEvent{Request: *request, Eligible: eligible})

	s.logger.Info("counsel request dispatched",
		zap.String("requestId", request.ID),
		zap.String("region", request.Region),
		zap.String("status", status),
		zap.Int("broadcastCount", len(broadcastedTo)),
	)

	result := &dto.CreateRequestResultDTO{
		RequestID:      request.ID,
		Status:         status,
		BroadcastCount: len(broadcastedTo),
		ExpiresAt:      request.ExpiresAt,
		Eligible:       make([]dto.ShortCounselorDTO, 0, len(eligible)),
	}
	for _, c := range eligible {
		result.Eligible = append(result.Eligible, mapShortCounselorDTO(&c))
	}
	return result, nil
}

func (s *DispatcherService) ListOpenByRegion(ctx context.Context, region string) ([]dto.RequestDTO, error) {
	requests, err := s.requestRepo.ListOpenByRegion(ctx, region, time.Now())
	if err != nil {
		return nil, err
	}
	return mapRequestDTOs(requests), nil
}

func (s *DispatcherService) ListBroadcastedTo(ctx context.Context, counselorID string) ([]dto.RequestDTO, error) {
	requests, err := s.requestRepo.ListBroadcastedTo(ctx, counselorID, time.Now())
	if err != nil {
		return nil, err
	}
	return mapRequestDTOs(requests), nil
}

func (s *DispatcherService) ListByUser(ctx context.Context, userID string) ([]dto.RequestDTO, error) {
	requests, err := s.requestRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapRequestDTOs(requests), nil
}

func (s *DispatcherService) FindRequest(ctx context.Context, id string) (*dto.RequestDTO, error) {
	request, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	mapped := mapRequestDTO(request)
	return &mapped, nil
}

func mapRequestDTO(r *entities.CounselRequest) dto.RequestDTO {
	return dto.RequestDTO{
		ID:            r.ID,
		UserID:        r.UserID,
		Note:          r.Note,
		Category:      r.Category,
		Region:        r.Region,
		Status:        r.Status,
		CounselorID:   r.CounselorID,
		BroadcastedTo: r.BroadcastedTo,
		ExpiresAt:     r.ExpiresAt,
		AcceptedAt:    r.AcceptedAt,
		CompletedAt:   r.CompletedAt,
		CreatedAt:     r.CreatedAt,
	}
}

func mapRequestDTOs(requests []entities.CounselRequest) []dto.RequestDTO {
	result := make([]dto.RequestDTO, 0, len(requests))
	for _, r := range requests {
		result = append(result, mapRequestDTO(&r))
	}
	return result
}
