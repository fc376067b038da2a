package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"counsel-dispatch/internal/entities"
	"counsel-dispatch/pkg/constants"
	apperrors "counsel-dispatch/pkg/errors"
)

const requestColumns = `
	r.id, r.user_id, r.user_contact, r.note, r.category, r.region, r.status,
	r.counselor_id, r.broadcasted_to, r.expires_at, r.accepted_at, r.completed_at,
	r.cancel_reason, r.chat_session_id, r.created_at, r.updated_at`

type RequestRepositoryInterface interface {
	CreateRequest(ctx context.Context, request *entities.CounselRequest) error
	FindRequest(ctx context.Context, id string) (*entities.CounselRequest, error)
	ListOpenByRegion(ctx context.Context, region string, now time.Time) ([]entities.CounselRequest, error)
	ListBroadcastedTo(ctx context.Context, counselorID string, now time.Time) ([]entities.CounselRequest, error)
	ListByUser(ctx context.Context, userID string) ([]entities.CounselRequest, error)
	SetChatSession(ctx context.Context, id string, chatSessionID string) error
}

type RequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestRepositoryInterface {
	return &RequestRepository{storage: storage, logger: logger}
}

func scanRequest(row pgx.Row) (*entities.CounselRequest, error) {
	var r entities.CounselRequest
	var counselorID, cancelReason, chatSessionID sql.NullString
	var acceptedAt, completedAt sql.NullTime

	err := row.Scan(
		&r.ID, &r.UserID, &r.UserContact, &r.Note, &r.Category, &r.Region, &r.Status,
		&counselorID, &r.BroadcastedTo, &r.ExpiresAt, &acceptedAt, &completedAt,
		&cancelReason, &chatSessionID, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan counsel request: %w", err)
	}

	if counselorID.Valid {
		r.CounselorID = &counselorID.String
	}
	if cancelReason.Valid {
		r.CancelReason = &cancelReason.String
	}
	if chatSessionID.Valid {
		r.ChatSessionID = &chatSessionID.String
	}
	if acceptedAt.Valid {
		r.AcceptedAt = &acceptedAt.Time
	}
	if completedAt.Valid {
		r.CompletedAt = &completedAt.Time
	}
	return &r, nil
}

func (r *RequestRepository) CreateRequest(ctx context.Context, request *entities.CounselRequest) error {
	query := `
		INSERT INTO counsel_requests
			(id, user_id, user_contact, note, category, region, status,
			 broadcasted_to, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	_, err := r.storage.Exec(ctx, query,
		request.ID, request.UserID, request.UserContact, request.Note,
		request.Category, request.Region, request.Status,
		request.BroadcastedTo, request.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert counsel request: %w", err)
	}
	return nil
}

func (r *RequestRepository) FindRequest(ctx context.Context, id string) (*entities.CounselRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM counsel_requests r WHERE r.id = $1`
	return scanRequest(r.storage.QueryRow(ctx, query, id))
}

// ListOpenByRegion lists claimable requests for counselor-side UIs. Expiry is
// enforced here by the expires_at filter, never by a background sweep: a stale
// broadcasting row simply stops being reachable.
func (r *RequestRepository) ListOpenByRegion(ctx context.Context, region string, now time.Time) ([]entities.CounselRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM counsel_requests r
		WHERE r.region = $1
		  AND r.status = ANY($2)
		  AND r.counselor_id IS NULL
		  AND r.expires_at > $3
		ORDER BY r.created_at ASC`

	return r.queryRequests(ctx, query,
		region,
		[]string{constants.RequestBroadcasting, constants.RequestPending},
		now,
	)
}

func (r *RequestRepository) ListBroadcastedTo(ctx context.Context, counselorID string, now time.Time) ([]entities.CounselRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM counsel_requests r
		WHERE $1 = ANY(r.broadcasted_to)
		  AND r.status = $2
		  AND r.counselor_id IS NULL
		  AND r.expires_at > $3
		ORDER BY r.created_at ASC`

	return r.queryRequests(ctx, query, counselorID, constants.RequestBroadcasting, now)
}

func (r *RequestRepository) ListByUser(ctx context.Context, userID string) ([]entities.CounselRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM counsel_requests r
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC`

	return r.queryRequests(ctx, query, userID)
}

func (r *RequestRepository) SetChatSession(ctx context.Context, id string, chatSessionID string) error {
	_, err := r.storage.Exec(ctx,
		`UPDATE counsel_requests SET chat_session_id = $2, updated_at = NOW() WHERE id = $1`,
		id, chatSessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to set chat session ref: %w", err)
	}
	return nil
}

func (r *RequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]entities.CounselRequest, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query counsel requests: %w", err)
	}
	defer rows.Close()

	requests := make([]entities.CounselRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}
