package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"counsel-dispatch/internal/dto"
	"counsel-dispatch/internal/entities"
	"counsel-dispatch/internal/repositories"
	"counsel-dispatch/pkg/config"
	"counsel-dispatch/pkg/constants"
	apperrors "counsel-dispatch/pkg/errors"
)

// SchedulerServiceInterface is the fallback path: when dispatch found nobody,
// the request is parked as a dated appointment that counselors pull and claim
// through the arbiter.
type SchedulerServiceInterface interface {
	ScheduleBooking(ctx context.Context, userID string, data dto.ScheduleBookingDTO) (string, error)
	ListQueued(ctx context.Context, region string) ([]dto.AppointmentDTO, error)
	ListByCounselor(ctx context.Context, counselorID string) ([]dto.AppointmentDTO, error)
}

type SchedulerService struct {
	claimRepo       repositories.ClaimRepositoryInterface
	appointmentRepo repositories.AppointmentRepositoryInterface
	dispatchCfg     config.DispatchConfig
	logger          *zap.Logger
}

func NewSchedulerService(
	claimRepo repositories.ClaimRepositoryInterface,
	appointmentRepo repositories.AppointmentRepositoryInterface,
	dispatchCfg config.DispatchConfig,
	logger *zap.Logger,
) SchedulerServiceInterface {
	return &SchedulerService{
		claimRepo:       claimRepo,
		appointmentRepo: appointmentRepo,
		dispatchCfg:     dispatchCfg,
		logger:          logger,
	}
}

// ScheduleBooking creates the scheduled request and its appointment in one
// all-or-nothing write. The long expiry keeps the pair claimable from the
// queue for the whole scheduled window.
func (s *SchedulerService) ScheduleBooking(ctx context.Context, userID string, data dto.ScheduleBookingDTO) (string, error) {
	scheduledAt, err := time.ParseInLocation("2006-01-02 15:04", data.Date+" "+data.Time, time.Local)
	if err != nil {
		return "", apperrors.NewInvalidInputError("invalid booking date/time: %v", err)
	}
	if scheduledAt.Before(time.Now()) {
		return "", apperrors.NewInvalidInputError("booking time is in the past")
	}

	request := &entities.CounselRequest{
		ID:            uuid.NewString(),
		UserID:        userID,
		UserContact:   data.UserContact,
		Note:          data.Note,
		Category:      data.Category,
		Region:        data.Region,
		Status:        constants.RequestScheduled,
		BroadcastedTo: []string{},
		ExpiresAt:     time.Now().Add(s.dispatchCfg.ScheduledWindow),
	}
	appointment := &entities.Appointment{
		ID:          uuid.NewString(),
		RequestID:   request.ID,
		UserID:      userID,
		UserContact: data.UserContact,
		Region:      data.Region,
		ScheduledAt: scheduledAt,
		Status:      constants.AppointmentQueued,
	}

	if err := s.claimRepo.CreateScheduled(ctx, request, appointment); err != nil {
		s.logger.Error("failed to persist scheduled booking", zap.Error(err))
		return "", err
	}

	s.logger.Info("booking queued",
		zap.String("requestId", request.ID),
		zap.String("appointmentId", appointment.ID),
		zap.String("region", data.Region),
		zap.Time("scheduledAt", scheduledAt),
	)
	return request.ID, nil
}

func (s *SchedulerService) ListQueued(ctx context.Context, region string) ([]dto.AppointmentDTO, error) {
	appointments, err := s.appointmentRepo.ListQueued(ctx, region, time.Now())
	if err != nil {
		return nil, err
	}
	return mapAppointmentDTOs(appointments), nil
}

func (s *SchedulerService) ListByCounselor(ctx context.Context, counselorID string) ([]dto.AppointmentDTO, error) {
	appointments, err := s.appointmentRepo.ListByCounselor(ctx, counselorID)
	if err != nil {
		return nil, err
	}
	return mapAppointmentDTOs(appointments), nil
}

func mapAppointmentDTOs(appointments []entities.Appointment) []dto.AppointmentDTO {
	result := make([]dto.AppointmentDTO, 0, len(appointments))
	for _, a := range appointments {
		result = append(result, dto.AppointmentDTO{
			ID:          a.ID,
			RequestID:   a.RequestID,
			UserID:      a.UserID,
			Region:      a.Region,
			ScheduledAt: a.ScheduledAt,
			Status:      a.Status,
			CounselorID: a.CounselorID,
			CreatedAt:   a.CreatedAt,
		})
	}
	return result
}
