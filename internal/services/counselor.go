package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"counsel-dispatch/internal/dto"
	"counsel-dispatch/internal/entities"
	"counsel-dispatch/internal/repositories"
	"counsel-dispatch/pkg/constants"
)

// CounselorServiceInterface is the write side of the registry: profile
// registration and updates, plus the rating callback from the review
// subsystem (whose internals live elsewhere).
type CounselorServiceInterface interface {
	Register(ctx context.Context, data dto.RegisterCounselorDTO) (string, error)
	Update(ctx context.Context, id string, data dto.UpdateCounselorDTO) error
	ApplyRating(ctx context.Context, id string, score float64) error
}

type CounselorService struct {
	counselorRepo repositories.CounselorRepositoryInterface
	logger        *zap.Logger
}

func NewCounselorService(
	counselorRepo repositories.CounselorRepositoryInterface,
	logger *zap.Logger,
) CounselorServiceInterface {
	return &CounselorService{counselorRepo: counselorRepo, logger: logger}
}

// Register creates an approved, offline counselor profile. Application review
// happens in the platform's identity layer before this call is reachable.
func (s *CounselorService) Register(ctx context.Context, data dto.RegisterCounselorDTO) (string, error) {
	counselor := &entities.Counselor{
		ID:                 uuid.NewString(),
		FullName:           data.FullName,
		Contact:            data.Contact,
		VerificationStatus: constants.CounselorApproved,
		Online:             false,
		Available:          true,
		HomeRegion:         data.HomeRegion,
		ServedRegions:      data.ServedRegions,
		Specializations:    data.Specializations,
		MaxActiveRequests:  data.MaxActiveRequests,
	}
	if counselor.ServedRegions == nil {
		counselor.ServedRegions = []string{}
	}
	if counselor.Specializations == nil {
		counselor.Specializations = []string{}
	}

	if err := s.counselorRepo.CreateCounselor(ctx, counselor); err != nil {
		s.logger.Error("failed to register counselor", zap.Error(err))
		return "", err
	}

	s.logger.Info("counselor registered",
		zap.String("counselorId", counselor.ID),
		zap.String("homeRegion", counselor.HomeRegion),
	)
	return counselor.ID, nil
}

func (s *CounselorService) Update(ctx context.Context, id string, data dto.UpdateCounselorDTO) error {
	return s.counselorRepo.UpdateCounselor(ctx, id, data)
}

func (s *CounselorService) ApplyRating(ctx context.Context, id string, score float64) error {
	return s.counselorRepo.ApplyRating(ctx, id, score)
}
