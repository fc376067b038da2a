package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"counsel-dispatch/internal/dto"
	"counsel-dispatch/internal/entities"
	db "counsel-dispatch/internal/infrastructure/bd"
	"counsel-dispatch/pkg/constants"
	apperrors "counsel-dispatch/pkg/errors"
	"counsel-dispatch/pkg/types"
)

const counselorColumns = `
	c.id, c.full_name, c.contact, c.verification_status, c.online, c.available,
	c.home_region, c.served_regions, c.specializations, c.rating, c.rating_count,
	c.active_requests, c.max_active_requests, c.total_cases, c.completed_cases,
	c.last_seen_at, c.created_at, c.updated_at`

// filter/sort whitelist for list queries
var counselorMap = map[string]string{
	"id":              "c.id",
	"home_region":     "c.home_region",
	"online":          "c.online",
	"available":       "c.available",
	"rating":          "c.rating",
	"active_requests": "c.active_requests",
	"created_at":      "c.created_at",
}

type CounselorRepositoryInterface interface {
	CreateCounselor(ctx context.Context, counselor *entities.Counselor) error
	FindCounselor(ctx context.Context, id string) (*entities.Counselor, error)
	GetCounselors(ctx context.Context, filter types.Filter) ([]entities.Counselor, uint64, error)
	UpdateCounselor(ctx context.Context, id string, data dto.UpdateCounselorDTO) error
	SetAvailability(ctx context.Context, id string, online, available bool) error
	TouchLiveness(ctx context.Context, id string, seenAt time.Time) error
	ApplyRating(ctx context.Context, id string, score float64) error
	FindEligible(ctx context.Context, region string) ([]entities.Counselor, error)
}

type CounselorRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCounselorRepository(storage *pgxpool.Pool, logger *zap.Logger) CounselorRepositoryInterface {
	return &CounselorRepository{storage: storage, logger: logger}
}

func scanCounselor(row pgx.Row) (*entities.Counselor, error) {
	var c entities.Counselor
	var lastSeen sql.NullTime

	err := row.Scan(
		&c.ID, &c.FullName, &c.Contact, &c.VerificationStatus, &c.Online, &c.Available,
		&c.HomeRegion, &c.ServedRegions, &c.Specializations, &c.Rating, &c.RatingCount,
		&c.ActiveRequests, &c.MaxActiveRequests, &c.TotalCases, &c.CompletedCases,
		&lastSeen, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan counselor: %w", err)
	}
	if lastSeen.Valid {
		c.LastSeenAt = &lastSeen.Time
	}
	return &c, nil
}

func (r *CounselorRepository) CreateCounselor(ctx context.Context, counselor *entities.Counselor) error {
	query := `
		INSERT INTO counselors
			(id, full_name, contact, verification_status, online, available,
			 home_region, served_regions, specializations, max_active_requests,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`

	_, err := r.storage.Exec(ctx, query,
		counselor.ID, counselor.FullName, counselor.Contact, counselor.VerificationStatus,
		counselor.Online, counselor.Available, counselor.HomeRegion,
		counselor.ServedRegions, counselor.Specializations, counselor.MaxActiveRequests,
	)
	if err != nil {
		return fmt.Errorf("failed to insert counselor: %w", err)
	}
	return nil
}

func (r *CounselorRepository) FindCounselor(ctx context.Context, id string) (*entities.Counselor, error) {
	query := `SELECT ` + counselorColumns + ` FROM counselors c WHERE c.id = $1`
	return scanCounselor(r.storage.QueryRow(ctx, query, id))
}

func (r *CounselorRepository) GetCounselors(ctx context.Context, filter types.Filter) ([]entities.Counselor, uint64, error) {
	countBuilder := sq.Select("COUNT(*)").From("counselors c").PlaceholderFormat(sq.Dollar)
	countBuilder = db.ApplyListParams(countBuilder, types.Filter{Filter: filter.Filter}, counselorMap)
	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build counselor count query: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count counselors: %w", err)
	}

	builder := sq.Select(counselorColumns).From("counselors c").PlaceholderFormat(sq.Dollar)
	builder = db.ApplyListParams(builder, filter, counselorMap)
	querySQL, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build counselor list query: %w", err)
	}

	rows, err := r.storage.Query(ctx, querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list counselors: %w", err)
	}
	defer rows.Close()

	counselors := make([]entities.Counselor, 0)
	for rows.Next() {
		c, err := scanCounselor(rows)
		if err != nil {
			return nil, 0, err
		}
		counselors = append(counselors, *c)
	}
	return counselors, total, rows.Err()
}

func (r *CounselorRepository) UpdateCounselor(ctx context.Context, id string, data dto.UpdateCounselorDTO) error {
	builder := sq.Update("counselors").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if data.FullName.Valid {
		builder = builder.Set("full_name", data.FullName.String)
	}
	if data.Contact.Valid {
		builder = builder.Set("contact", data.Contact.String)
	}
	if data.HomeRegion.Valid {
		builder = builder.Set("home_region", data.HomeRegion.String)
	}
	if data.ServedRegions != nil {
		builder = builder.Set("served_regions", data.ServedRegions)
	}
	if data.Specializations != nil {
		builder = builder.Set("specializations", data.Specializations)
	}
	if data.MaxActiveRequests.Valid {
		builder = builder.Set("max_active_requests", data.MaxActiveRequests.Int)
	}
	if data.Available.Valid {
		builder = builder.Set("available", data.Available.Bool)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build counselor update: %w", err)
	}

	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update counselor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CounselorRepository) SetAvailability(ctx context.Context, id string, online, available bool) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE counselors SET online = $2, available = $3, updated_at = NOW() WHERE id = $1`,
		id, online, available,
	)
	if err != nil {
		return fmt.Errorf("failed to update counselor availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CounselorRepository) TouchLiveness(ctx context.Context, id string, seenAt time.Time) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE counselors SET online = TRUE, last_seen_at = $2, updated_at = NOW() WHERE id = $1`,
		id, seenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to touch counselor liveness: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ApplyRating folds one review score into the running average in a single
// statement, so concurrent reviews never lose updates.
func (r *CounselorRepository) ApplyRating(ctx context.Context, id string, score float64) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE counselors
		SET rating = (rating * rating_count + $2) / (rating_count + 1),
		    rating_count = rating_count + 1,
		    updated_at = NOW()
		WHERE id = $1`,
		id, score,
	)
	if err != nil {
		return fmt.Errorf("failed to apply rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindEligible returns the counselors a new request in the region should be
// broadcast to. The ordering (home region first, then rating, then lighter
// load) is advisory: it decides who gets notified and in what order, it does
// not grant claim priority.
func (r *CounselorRepository) FindEligible(ctx context.Context, region string) ([]entities.Counselor, error) {
	query := `
		SELECT ` + counselorColumns + `
		FROM counselors c
		WHERE c.verification_status = $1
		  AND c.online = TRUE
		  AND c.available = TRUE
		  AND c.active_requests < c.max_active_requests
		  AND (c.home_region = $2 OR $2 = ANY(c.served_regions))
		ORDER BY (c.home_region = $2) DESC, c.rating DESC, c.active_requests ASC`

	rows, err := r.storage.Query(ctx, query, constants.CounselorApproved, region)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible counselors: %w", err)
	}
	defer rows.Close()

	counselors := make([]entities.Counselor, 0)
	for rows.Next() {
		c, err := scanCounselor(rows)
		if err != nil {
			return nil, err
		}
		counselors = append(counselors, *c)
	}
	return counselors, rows.Err()
}
