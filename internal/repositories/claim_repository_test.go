package repositories

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"counsel-dispatch/pkg/constants"
	"counsel-dispatch/pkg/database/postgresql"
	apperrors "counsel-dispatch/pkg/errors"
)

// Integration tests for the conditional-write claim path. They need a real
// PostgreSQL because the at-most-one guarantee lives in the database, not in
// Go code. Set TEST_DATABASE_URL to run them.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, postgresql.RunMigrations(dsn))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(),
		`TRUNCATE TABLE appointments, counsel_requests, counselors CASCADE`)
	require.NoError(t, err)
	return pool
}

func seedCounselorRow(t *testing.T, pool *pgxpool.Pool, region string, maxActive int) string {
	t.Helper()

	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO counselors
			(id, full_name, contact, verification_status, online, available,
			 home_region, served_regions, specializations, max_active_requests)
		VALUES ($1, 'Test Counselor', 'c@example.com', $2, TRUE, TRUE, $3, '{}', '{}', $4)`,
		id, constants.CounselorApproved, region, maxActive,
	)
	require.NoError(t, err)
	return id
}

func seedRequestRow(t *testing.T, pool *pgxpool.Pool, region, status string, broadcastedTo []string, expiresAt time.Time) string {
	t.Helper()

	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO counsel_requests
			(id, user_id, user_contact, note, category, region, status,
			 broadcasted_to, expires_at)
		VALUES ($1, 'user-1', 'u@example.com', 'need legal help', 'housing_law', $2, $3, $4, $5)`,
		id, region, status, broadcastedTo, expiresAt,
	)
	require.NoError(t, err)
	return id
}

func seedAppointmentRow(t *testing.T, pool *pgxpool.Pool, requestID, region string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO appointments
			(id, request_id, user_id, user_contact, region, scheduled_at, status)
		VALUES ($1, $2, 'user-1', 'u@example.com', $3, NOW() + INTERVAL '2 days', $4)`,
		id, requestID, region, constants.AppointmentQueued,
	)
	require.NoError(t, err)
	return id
}

func TestClaimRequest_Integration_ConcurrentClaims(t *testing.T) {
	pool := testPool(t)
	repo := NewClaimRepository(pool, zap.NewNop())
	ctx := context.Background()

	counselorIDs := make([]string, 6)
	for i := range counselorIDs {
		counselorIDs[i] = seedCounselorRow(t, pool, "DU", 5)
	}
	requestID := seedRequestRow(t, pool, "DU", constants.RequestBroadcasting,
		counselorIDs, time.Now().Add(5*time.Minute))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for _, id := range counselorIDs {
		wg.Add(1)
		go func(counselorID string) {
			defer wg.Done()
			if _, err := repo.ClaimRequest(ctx, requestID, counselorID, time.Now()); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "the database must serialize claims to exactly one winner")

	var status string
	var counselorID *string
	err := pool.QueryRow(ctx,
		`SELECT status, counselor_id FROM counsel_requests WHERE id = $1`, requestID).
		Scan(&status, &counselorID)
	require.NoError(t, err)
	assert.Equal(t, constants.RequestAccepted, status)
	require.NotNil(t, counselorID)

	var active int
	err = pool.QueryRow(ctx,
		`SELECT active_requests FROM counselors WHERE id = $1`, *counselorID).Scan(&active)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

func TestClaimRequest_Integration_ExpiredRejected(t *testing.T) {
	pool := testPool(t)
	repo := NewClaimRepository(pool, zap.NewNop())

	counselorID := seedCounselorRow(t, pool, "DU", 5)
	requestID := seedRequestRow(t, pool, "DU", constants.RequestBroadcasting,
		[]string{counselorID}, time.Now().Add(-time.Minute))

	_, err := repo.ClaimRequest(context.Background(), requestID, counselorID, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrRequestExpired)
}

func TestClaimRequest_Integration_ScheduledPair(t *testing.T) {
	pool := testPool(t)
	repo := NewClaimRepository(pool, zap.NewNop())
	ctx := context.Background()

	counselorID := seedCounselorRow(t, pool, "DU", 5)
	requestID := seedRequestRow(t, pool, "DU", constants.RequestScheduled,
		[]string{}, time.Now().Add(7*24*time.Hour))
	appointmentID := seedAppointmentRow(t, pool, requestID, "DU")

	claimed, err := repo.ClaimRequest(ctx, requestID, counselorID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, constants.RequestAccepted, claimed.Status)
	require.NotNil(t, claimed.CounselorID)
	assert.Equal(t, counselorID, *claimed.CounselorID)

	// the paired appointment flipped in the same transaction
	var status string
	var claimedBy *string
	err = pool.QueryRow(ctx,
		`SELECT status, counselor_id FROM appointments WHERE id = $1`, appointmentID).
		Scan(&status, &claimedBy)
	require.NoError(t, err)
	assert.Equal(t, constants.AppointmentAccepted, status)
	require.NotNil(t, claimedBy)
	assert.Equal(t, counselorID, *claimedBy)
}

func TestClaimAppointment_Integration_ExpiredRejected(t *testing.T) {
	pool := testPool(t)
	repo := NewClaimRepository(pool, zap.NewNop())
	ctx := context.Background()

	counselorID := seedCounselorRow(t, pool, "DU", 5)
	requestID := seedRequestRow(t, pool, "DU", constants.RequestScheduled,
		[]string{}, time.Now().Add(-time.Minute))
	appointmentID := seedAppointmentRow(t, pool, requestID, "DU")

	_, _, err := repo.ClaimAppointment(ctx, appointmentID, counselorID, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrRequestExpired)

	var status string
	var claimedBy *string
	err = pool.QueryRow(ctx,
		`SELECT status, counselor_id FROM appointments WHERE id = $1`, appointmentID).
		Scan(&status, &claimedBy)
	require.NoError(t, err)
	assert.Equal(t, constants.AppointmentQueued, status)
	assert.Nil(t, claimedBy)
}

func TestClaimRequest_Integration_CapacityGuard(t *testing.T) {
	pool := testPool(t)
	repo := NewClaimRepository(pool, zap.NewNop())
	ctx := context.Background()

	counselorID := seedCounselorRow(t, pool, "DU", 1)
	first := seedRequestRow(t, pool, "DU", constants.RequestBroadcasting,
		[]string{counselorID}, time.Now().Add(5*time.Minute))
	second := seedRequestRow(t, pool, "DU", constants.RequestBroadcasting,
		[]string{counselorID}, time.Now().Add(5*time.Minute))

	_, err := repo.ClaimRequest(ctx, first, counselorID, time.Now())
	require.NoError(t, err)

	_, err = repo.ClaimRequest(ctx, second, counselorID, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrCounselorAtCapacity)

	// the failed claim rolled back entirely
	var status string
	err = pool.QueryRow(ctx,
		`SELECT status FROM counsel_requests WHERE id = $1`, second).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, constants.RequestBroadcasting, status)
}
