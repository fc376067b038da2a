package repositories

import (
	"context"
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

// ClaimRepository holds every multi-row transaction of the dispatch engine:
// claiming a request, claiming a queued appointment together with its paired
// request, creating a scheduled pair, and the complete/cancel transitions.
//
// The claim decision is a single conditional UPDATE guarded on
// (status, counselor_id, expires_at). Two concurrent claims both reach the
// UPDATE; the database serializes them and exactly one affects a row. There is
// no read-then-write window, so no in-process lock is needed.
type ClaimRepositoryInterface interface {
	ClaimRequest(ctx context.Context, requestID, counselorID string, now time.Time) (*entities.CounselRequest, error)
	ClaimAppointment(ctx context.Context, appointmentID, counselorID string, now time.Time) (*entities.Appointment, *entities.CounselRequest, error)
	CreateScheduled(ctx context.Context, request *entities.CounselRequest, appointment *entities.Appointment) error
	CompleteRequest(ctx context.Context, requestID string, now time.Time) (*entities.CounselRequest, error)
	CancelRequest(ctx context.Context, requestID string, reason *string, now time.Time) (*entities.CounselRequest, error)
}

type ClaimRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewClaimRepository(storage *pgxpool.Pool, logger *zap.Logger) ClaimRepositoryInterface {
	return &ClaimRepository{storage: storage, logger: logger}
}

const claimRequestQuery = `
	UPDATE counsel_requests r
	SET status = 'accepted', counselor_id = $2, accepted_at = $3, updated_at = NOW()
	WHERE r.id = $1
	  AND r.counselor_id IS NULL
	  AND r.status = ANY($4)
	  AND r.expires_at > $3
	RETURNING ` + requestColumns

func (r *ClaimRepository) ClaimRequest(ctx context.Context, requestID, counselorID string, now time.Time) (*entities.CounselRequest, error) {
	var claimed *entities.CounselRequest

	err := WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		current, err := findRequestInTx(ctx, tx, requestID)
		if err != nil {
			return err
		}

		// Broadcast membership is immutable after dispatch, so checking it
		// before the conditional write is race-free. Requests that went out
		// with an empty broadcast list (pending) are open to any approved
		// counselor serving the region instead. A scheduled request carries a
		// paired appointment; both flip in this transaction so the queue path
		// and the live path race over one row and the first claim wins.
		switch current.Status {
		case constants.RequestBroadcasting:
			if !current.WasBroadcastTo(counselorID) {
				return apperrors.ErrNotBroadcasted
			}
		case constants.RequestPending:
			if err := checkRegionServed(ctx, tx, counselorID, current.Region); err != nil {
				return err
			}
		case constants.RequestScheduled:
			claimed, _, err = r.claimScheduledPair(ctx, tx, requestID, counselorID, now)
			return err
		}

		claimed, err = scanRequest(tx.QueryRow(ctx, claimRequestQuery,
			requestID, counselorID, now, constants.ClaimableRequestStatuses))
		if errors.Is(err, apperrors.ErrNotFound) {
			return r.classifyRequestClaimFailure(ctx, tx, requestID, now)
		}
		if err != nil {
			return err
		}

		return incrementCounselorLoad(ctx, tx, counselorID)
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *ClaimRepository) ClaimAppointment(ctx context.Context, appointmentID, counselorID string, now time.Time) (*entities.Appointment, *entities.CounselRequest, error) {
	var (
		claimedAppt *entities.Appointment
		claimedReq  *entities.CounselRequest
	)

	err := WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		current, err := scanAppointment(tx.QueryRow(ctx,
			`SELECT `+appointmentColumns+` FROM appointments a WHERE a.id = $1`, appointmentID))
		if err != nil {
			return err
		}
		if current.Terminal() {
			return apperrors.ErrTerminalState
		}
		if current.CounselorID != nil {
			return apperrors.ErrAlreadyClaimed
		}

		claimedReq, claimedAppt, err = r.claimScheduledPair(ctx, tx, current.RequestID, counselorID, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return claimedAppt, claimedReq, nil
}

// claimScheduledPair flips a scheduled request and its paired appointment to
// accepted inside the caller's transaction. The request row is written first:
// every transaction that touches a pair locks the request before anything
// else, so a claim and a concurrent cancel or complete of the same pair
// queue up instead of deadlocking.
func (r *ClaimRepository) claimScheduledPair(ctx context.Context, tx pgx.Tx, requestID, counselorID string, now time.Time) (*entities.CounselRequest, *entities.Appointment, error) {
	claimedReq, err := scanRequest(tx.QueryRow(ctx, claimRequestQuery,
		requestID, counselorID, now, []string{constants.RequestScheduled}))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, r.classifyRequestClaimFailure(ctx, tx, requestID, now)
	}
	if err != nil {
		return nil, nil, err
	}

	apptQuery := `
		UPDATE appointments a
		SET status = 'accepted', counselor_id = $2, updated_at = NOW()
		WHERE a.request_id = $1
		  AND a.counselor_id IS NULL
		  AND a.status = ANY($3)
		RETURNING ` + appointmentColumns

	claimedAppt, err := scanAppointment(tx.QueryRow(ctx, apptQuery,
		requestID, counselorID,
		[]string{constants.AppointmentQueued, constants.AppointmentScheduled}))
	if errors.Is(err, apperrors.ErrNotFound) {
		// the close cascade keeps the pair in step, so a claimable request
		// whose appointment refuses the guard means another writer got there
		return nil, nil, apperrors.ErrAlreadyClaimed
	}
	if err != nil {
		return nil, nil, err
	}

	if err := incrementCounselorLoad(ctx, tx, counselorID); err != nil {
		return nil, nil, err
	}
	return claimedReq, claimedAppt, nil
}

// CreateScheduled persists the scheduled request and its appointment as one
// all-or-nothing write.
func (r *ClaimRepository) CreateScheduled(ctx context.Context, request *entities.CounselRequest, appointment *entities.Appointment) error {
	return WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO counsel_requests
				(id, user_id, user_contact, note, category, region, status,
				 broadcasted_to, expires_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`,
			request.ID, request.UserID, request.UserContact, request.Note,
			request.Category, request.Region, request.Status,
			request.BroadcastedTo, request.ExpiresAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert scheduled request: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO appointments
				(id, request_id, user_id, user_contact, region, scheduled_at,
				 status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`,
			appointment.ID, appointment.RequestID, appointment.UserID,
			appointment.UserContact, appointment.Region, appointment.ScheduledAt,
			appointment.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert appointment: %w", err)
		}
		return nil
	})
}

func (r *ClaimRepository) CompleteRequest(ctx context.Context, requestID string, now time.Time) (*entities.CounselRequest, error) {
	var completed *entities.CounselRequest

	err := WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		query := `
			UPDATE counsel_requests r
			SET status = 'completed', completed_at = $2, updated_at = NOW()
			WHERE r.id = $1 AND r.status = 'accepted'
			RETURNING ` + requestColumns

		var err error
		completed, err = scanRequest(tx.QueryRow(ctx, query, requestID, now))
		if errors.Is(err, apperrors.ErrNotFound) {
			return r.classifyCloseFailure(ctx, tx, requestID)
		}
		if err != nil {
			return err
		}

		if completed.CounselorID != nil {
			if err := releaseCounselorLoad(ctx, tx, *completed.CounselorID, true); err != nil {
				return err
			}
		}

		// cascade the paired appointment, if any
		_, err = tx.Exec(ctx, `
			UPDATE appointments
			SET status = 'completed', completed_at = $2, updated_at = NOW()
			WHERE request_id = $1 AND status NOT IN ('completed', 'cancelled', 'no_show')`,
			requestID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to cascade-complete appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (r *ClaimRepository) CancelRequest(ctx context.Context, requestID string, reason *string, now time.Time) (*entities.CounselRequest, error) {
	var cancelled *entities.CounselRequest

	err := WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		query := `
			UPDATE counsel_requests r
			SET status = 'cancelled', cancel_reason = $2, updated_at = NOW()
			WHERE r.id = $1
			  AND r.status IN ('accepted', 'broadcasting', 'pending', 'scheduled')
			RETURNING ` + requestColumns

		var err error
		cancelled, err = scanRequest(tx.QueryRow(ctx, query, requestID, reason))
		if errors.Is(err, apperrors.ErrNotFound) {
			return r.classifyCloseFailure(ctx, tx, requestID)
		}
		if err != nil {
			return err
		}

		// Capacity was only consumed if a claim had committed.
		if cancelled.CounselorID != nil {
			if err := releaseCounselorLoad(ctx, tx, *cancelled.CounselorID, false); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE appointments
			SET status = 'cancelled', cancelled_at = $2, updated_at = NOW()
			WHERE request_id = $1 AND status NOT IN ('completed', 'cancelled', 'no_show')`,
			requestID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to cascade-cancel appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// classifyRequestClaimFailure turns "zero rows affected" into the rejection
// taxonomy. Expiry is checked against the wall clock on purpose: a request may
// still read as broadcasting in storage long after its deadline.
func (r *ClaimRepository) classifyRequestClaimFailure(ctx context.Context, tx pgx.Tx, requestID string, now time.Time) error {
	current, err := findRequestInTx(ctx, tx, requestID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return err
	}

	switch {
	case current.Terminal():
		return apperrors.ErrTerminalState
	case current.CounselorID != nil:
		return apperrors.ErrAlreadyClaimed
	case current.Expired(now):
		return apperrors.ErrRequestExpired
	default:
		return apperrors.ErrAlreadyClaimed
	}
}

func (r *ClaimRepository) classifyCloseFailure(ctx context.Context, tx pgx.Tx, requestID string) error {
	current, err := findRequestInTx(ctx, tx, requestID)
	if err != nil {
		return err
	}
	if current.Terminal() {
		return apperrors.ErrTerminalState
	}
	return apperrors.ErrInvalidTransition
}

func findRequestInTx(ctx context.Context, tx pgx.Tx, requestID string) (*entities.CounselRequest, error) {
	return scanRequest(tx.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM counsel_requests r WHERE r.id = $1`, requestID))
}

func checkRegionServed(ctx context.Context, tx pgx.Tx, counselorID, region string) error {
	var serves bool
	err := tx.QueryRow(ctx, `
		SELECT (home_region = $2 OR $2 = ANY(served_regions))
		FROM counselors
		WHERE id = $1 AND verification_status = $3`,
		counselorID, region, constants.CounselorApproved,
	).Scan(&serves)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check counselor region coverage: %w", err)
	}
	if !serves {
		return apperrors.ErrRegionNotServed
	}
	return nil
}

// incrementCounselorLoad consumes one unit of counselor capacity. The guard
// makes the eligible snapshot advisory: a counselor who filled up between
// broadcast and claim fails here and the whole claim rolls back.
func incrementCounselorLoad(ctx context.Context, tx pgx.Tx, counselorID string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE counselors
		SET active_requests = active_requests + 1,
		    total_cases = total_cases + 1,
		    updated_at = NOW()
		WHERE id = $1 AND active_requests < max_active_requests`,
		counselorID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment counselor load: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM counselors WHERE id = $1)`, counselorID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check counselor existence: %w", err)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrCounselorAtCapacity
	}
	return nil
}

// releaseCounselorLoad gives one unit of capacity back on close. The floor
// guard keeps a double release from driving the counter negative.
func releaseCounselorLoad(ctx context.Context, tx pgx.Tx, counselorID string, completed bool) error {
	query := `
		UPDATE counselors
		SET active_requests = active_requests - 1, updated_at = NOW()
		WHERE id = $1 AND active_requests > 0`
	if completed {
		query = `
		UPDATE counselors
		SET active_requests = active_requests - 1,
		    completed_cases = completed_cases + 1,
		    updated_at = NOW()
		WHERE id = $1 AND active_requests > 0`
	}

	if _, err := tx.Exec(ctx, query, counselorID); err != nil {
		return fmt.Errorf("failed to release counselor load: %w", err)
	}
	return nil
}
