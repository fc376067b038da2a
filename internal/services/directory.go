package services

import (
	"context"

	"go.uber.org/zap"

	"counsel-dispatch/internal/dto"
	"counsel-dispatch/internal/entities"
	"counsel-dispatch/internal/repositories"
	"counsel-dispatch/pkg/types"
)

// DirectoryServiceInterface is the read side of the counselor registry:
// eligibility and listing. It never mutates capacity.
type DirectoryServiceInterface interface {
	FindEligible(ctx context.Context, region string) ([]entities.Counselor, error)
	GetCounselors(ctx context.Context, filter types.Filter) ([]dto.CounselorDTO, uint64, error)
	FindCounselor(ctx context.Context, id string) (*dto.CounselorDTO, error)
}

type DirectoryService struct {
	counselorRepo repositories.CounselorRepositoryInterface
	presence      PresenceServiceInterface
	logger        *zap.Logger
}

func NewDirectoryService(
	counselorRepo repositories.CounselorRepositoryInterface,
	presence PresenceServiceInterface,
	logger *zap.Logger,
) DirectoryServiceInterface {
	return &DirectoryService{
		counselorRepo: counselorRepo,
		presence:      presence,
		logger:        logger,
	}
}

// FindEligible returns the broadcast set for a region, already ordered by the
// repository (home region, rating, load). Counselors whose heartbeat has gone
// stale are dropped even if their row still says online.
func (s *DirectoryService) FindEligible(ctx context.Context, region string) ([]entities.Counselor, error) {
	candidates, err := s.counselorRepo.FindEligible(ctx, region)
	if err != nil {
		return nil, err
	}

	eligible := make([]entities.Counselor, 0, len(candidates))
	for _, c := range candidates {
		live, err := s.presence.IsLive(ctx, c.ID)
		if err != nil {
			// presence cache down: trust the row flags rather than dispatch to nobody
			s.logger.Warn("presence lookup failed, falling back to directory flags",
				zap.String("counselorId", c.ID), zap.Error(err))
			live = c.Online
		}
		if live {
			eligible = append(eligible, c)
		}
	}
	return eligible, nil
}

func (s *DirectoryService) GetCounselors(ctx context.Context, filter types.Filter) ([]dto.CounselorDTO, uint64, error) {
	counselors, total, err := s.counselorRepo.GetCounselors(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.CounselorDTO, 0, len(counselors))
	for _, c := range counselors {
		result = append(result, mapCounselorDTO(&c))
	}
	return result, total, nil
}

func (s *DirectoryService) FindCounselor(ctx context.Context, id string) (*dto.CounselorDTO, error) {
	counselor, err := s.counselorRepo.FindCounselor(ctx, id)
	if err != nil {
		return nil, err
	}
	mapped := mapCounselorDTO(counselor)
	return &mapped, nil
}

func mapCounselorDTO(c *entities.Counselor) dto.CounselorDTO {
	return dto.CounselorDTO{
		ID:                 c.ID,
		FullName:           c.FullName,
		VerificationStatus: c.VerificationStatus,
		Online:             c.Online,
		Available:          c.Available,
		HomeRegion:         c.HomeRegion,
		ServedRegions:      c.ServedRegions,
		Specializations:    c.Specializations,
		Rating:             c.Rating,
		ActiveRequests:     c.ActiveRequests,
		MaxActiveRequests:  c.MaxActiveRequests,
		TotalCases:         c.TotalCases,
		CompletedCases:     c.CompletedCases,
	}
}

func mapShortCounselorDTO(c *entities.Counselor) dto.ShortCounselorDTO {
	return dto.ShortCounselorDTO{
		ID:         c.ID,
		FullName:   c.FullName,
		HomeRegion: c.HomeRegion,
		Rating:     c.Rating,
	}
}
