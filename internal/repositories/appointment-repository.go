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

const appointmentColumns = `
	a.id, a.request_id, a.user_id, a.user_contact, a.region, a.scheduled_at,
	a.status, a.counselor_id, a.cancelled_at, a.completed_at, a.created_at, a.updated_at`

type AppointmentRepositoryInterface interface {
	FindAppointment(ctx context.Context, id string) (*entities.Appointment, error)
	ListQueued(ctx context.Context, region string, now time.Time) ([]entities.Appointment, error)
	ListByCounselor(ctx context.Context, counselorID string) ([]entities.Appointment, error)
}

type AppointmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAppointmentRepository(storage *pgxpool.Pool, logger *zap.Logger) AppointmentRepositoryInterface {
	return &AppointmentRepository{storage: storage, logger: logger}
}

func scanAppointment(row pgx.Row) (*entities.Appointment, error) {
	var a entities.Appointment
	var counselorID sql.NullString
	var cancelledAt, completedAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.RequestID, &a.UserID, &a.UserContact, &a.Region, &a.ScheduledAt,
		&a.Status, &counselorID, &cancelledAt, &completedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan appointment: %w", err)
	}

	if counselorID.Valid {
		a.CounselorID = &counselorID.String
	}
	if cancelledAt.Valid {
		a.CancelledAt = &cancelledAt.Time
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return &a, nil
}

func (r *AppointmentRepository) FindAppointment(ctx context.Context, id string) (*entities.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments a WHERE a.id = $1`
	return scanAppointment(r.storage.QueryRow(ctx, query, id))
}

// ListQueued exposes the pull queue. The join filters out pairs whose request
// has already expired, same lazy-expiry rule as the live broadcast lists.
func (r *AppointmentRepository) ListQueued(ctx context.Context, region string, now time.Time) ([]entities.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN counsel_requests r ON r.id = a.request_id
		WHERE a.status = $1
		  AND a.counselor_id IS NULL
		  AND r.expires_at > $2
		  AND ($3 = '' OR a.region = $3)
		ORDER BY a.scheduled_at ASC`

	return r.queryAppointments(ctx, query, constants.AppointmentQueued, now, region)
}

func (r *AppointmentRepository) ListByCounselor(ctx context.Context, counselorID string) ([]entities.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		WHERE a.counselor_id = $1
		ORDER BY a.scheduled_at ASC`

	return r.queryAppointments(ctx, query, counselorID)
}

func (r *AppointmentRepository) queryAppointments(ctx context.Context, query string, args ...any) ([]entities.Appointment, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	appointments := make([]entities.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *a)
	}
	return appointments, rows.Err()
}
