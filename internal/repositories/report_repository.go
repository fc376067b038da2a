package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"counsel-dispatch/internal/entities"
)

type ReportRepositoryInterface interface {
	GetWorkloadReport(ctx context.Context, filter entities.ReportFilter) ([]entities.WorkloadReportItem, uint64, error)
}

type ReportRepository struct {
	storage *pgxpool.Pool
}

func NewReportRepository(storage *pgxpool.Pool) ReportRepositoryInterface {
	return &ReportRepository{storage: storage}
}

func (r *ReportRepository) GetWorkloadReport(ctx context.Context, filter entities.ReportFilter) ([]entities.WorkloadReportItem, uint64, error) {
	base := sq.Select(
		"c.id", "c.full_name", "c.home_region", "c.rating",
		"c.active_requests", "c.total_cases", "c.completed_cases",
	).From("counselors c").PlaceholderFormat(sq.Dollar)

	countBuilder := sq.Select("COUNT(*)").From("counselors c").PlaceholderFormat(sq.Dollar)

	if filter.Region != "" {
		cond := sq.Or{
			sq.Eq{"c.home_region": filter.Region},
			sq.Expr("? = ANY(c.served_regions)", filter.Region),
		}
		base = base.Where(cond)
		countBuilder = countBuilder.Where(cond)
	}

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build report count query: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count report rows: %w", err)
	}

	base = base.OrderBy("c.total_cases DESC", "c.full_name ASC")
	if filter.Limit > 0 {
		base = base.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	querySQL, args, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build report query: %w", err)
	}

	rows, err := r.storage.Query(ctx, querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query workload report: %w", err)
	}
	defer rows.Close()

	items := make([]entities.WorkloadReportItem, 0)
	for rows.Next() {
		var item entities.WorkloadReportItem
		if err := rows.Scan(
			&item.CounselorID, &item.FullName, &item.HomeRegion, &item.Rating,
			&item.ActiveRequests, &item.TotalCases, &item.CompletedCases,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan report row: %w", err)
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}
