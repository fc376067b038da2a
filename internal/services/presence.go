package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"counsel-dispatch/internal/repositories"
)

const presenceKeyPrefix = "presence:counselor:"

// PresenceServiceInterface tracks counselor liveness. A counselor is live
// while its heartbeat key has not expired; the DB online flag is the slower
// fallback source.
type PresenceServiceInterface interface {
	Heartbeat(ctx context.Context, counselorID string) error
	IsLive(ctx context.Context, counselorID string) (bool, error)
	SetAvailability(ctx context.Context, counselorID string, online, available bool) error
}

type PresenceService struct {
	counselorRepo repositories.CounselorRepositoryInterface
	cacheRepo     repositories.CacheRepositoryInterface
	ttl           time.Duration
	logger        *zap.Logger
}

func NewPresenceService(
	counselorRepo repositories.CounselorRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	ttl time.Duration,
	logger *zap.Logger,
) PresenceServiceInterface {
	return &PresenceService{
		counselorRepo: counselorRepo,
		cacheRepo:     cacheRepo,
		ttl:           ttl,
		logger:        logger,
	}
}

func (s *PresenceService) Heartbeat(ctx context.Context, counselorID string) error {
	now := time.Now()
	if err := s.counselorRepo.TouchLiveness(ctx, counselorID, now); err != nil {
		return err
	}
	if err := s.cacheRepo.Set(ctx, presenceKeyPrefix+counselorID, now.Unix(), s.ttl); err != nil {
		// presence cache is an optimization; the row update already landed
		s.logger.Warn("failed to write presence key", zap.String("counselorId", counselorID), zap.Error(err))
	}
	return nil
}

func (s *PresenceService) IsLive(ctx context.Context, counselorID string) (bool, error) {
	return s.cacheRepo.Exists(ctx, presenceKeyPrefix+counselorID)
}

func (s *PresenceService) SetAvailability(ctx context.Context, counselorID string, online, available bool) error {
	if err := s.counselorRepo.SetAvailability(ctx, counselorID, online, available); err != nil {
		return err
	}
	if !online {
		if err := s.cacheRepo.Del(ctx, presenceKeyPrefix+counselorID); err != nil {
			s.logger.Warn("failed to drop presence key", zap.String("counselorId", counselorID), zap.Error(err))
		}
	}
	return nil
}
