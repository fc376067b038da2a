package services

import (
	"context"

	"go.uber.org/zap"

	"counsel-dispatch/internal/dto"
	"counsel-dispatch/internal/entities"
	"counsel-dispatch/internal/repositories"
)

type ReportServiceInterface interface {
	GetWorkloadReport(ctx context.Context, filter entities.ReportFilter) ([]entities.WorkloadReportItem, uint64, error)
	GetWorkloadReportDTOs(ctx context.Context, filter entities.ReportFilter) ([]dto.ReportItemDTO, uint64, error)
}

type reportService struct {
	reportRepo repositories.ReportRepositoryInterface
	logger     *zap.Logger
}

func NewReportService(reportRepo repositories.ReportRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &reportService{reportRepo: reportRepo, logger: logger}
}

func (s *reportService) GetWorkloadReport(ctx context.Context, filter entities.ReportFilter) ([]entities.WorkloadReportItem, uint64, error) {
	return s.reportRepo.GetWorkloadReport(ctx, filter)
}

func (s *reportService) GetWorkloadReportDTOs(ctx context.Context, filter entities.ReportFilter) ([]dto.ReportItemDTO, uint64, error) {
	items, total, err := s.reportRepo.GetWorkloadReport(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.ReportItemDTO, 0, len(items))
	for _, item := range items {
		result = append(result, dto.ReportItemDTO{
			CounselorID:    item.CounselorID,
			FullName:       item.FullName,
			HomeRegion:     item.HomeRegion,
			Rating:         item.Rating,
			ActiveRequests: item.ActiveRequests,
			TotalCases:     item.TotalCases,
			CompletedCases: item.CompletedCases,
		})
	}
	return result, total, nil
}
