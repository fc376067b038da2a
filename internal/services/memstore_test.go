package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"counsel-dispatch/internal/dto"
	"counsel-dispatch/internal/entities"
	"counsel-dispatch/pkg/constants"
	apperrors "counsel-dispatch/pkg/errors"
	"counsel-dispatch/pkg/types"
)

// memStore backs the service tests with an in-memory implementation of the
// repository interfaces. All multi-row operations run under one mutex, giving
// the same atomicity the SQL transactions give: a claim either fully commits
// (request flipped, capacity consumed) or leaves no trace.
type memStore struct {
	mu           sync.Mutex
	counselors   map[string]*entities.Counselor
	requests     map[string]*entities.CounselRequest
	appointments map[string]*entities.Appointment
	cache        map[string]memCacheEntry
}

type memCacheEntry struct {
	value     string
	expiresAt time.Time
}

func newMemStore() *memStore {
	return &memStore{
		counselors:   make(map[string]*entities.Counselor),
		requests:     make(map[string]*entities.CounselRequest),
		appointments: make(map[string]*entities.Appointment),
		cache:        make(map[string]memCacheEntry),
	}
}

// --- CounselorRepositoryInterface ---

func (s *memStore) CreateCounselor(_ context.Context, counselor *entities.Counselor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *counselor
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.counselors[cp.ID] = &cp
	return nil
}

func (s *memStore) FindCounselor(_ context.Context, id string) (*entities.Counselor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counselors[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) GetCounselors(_ context.Context, filter types.Filter) ([]entities.Counselor, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]entities.Counselor, 0, len(s.counselors))
	for _, c := range s.counselors {
		if region, ok := filter.Filter["home_region"]; ok && c.HomeRegion != region {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, uint64(len(result)), nil
}

func (s *memStore) UpdateCounselor(_ context.Context, id string, data dto.UpdateCounselorDTO) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counselors[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if data.FullName.Valid {
		c.FullName = data.FullName.String
	}
	if data.Contact.Valid {
		c.Contact = data.Contact.String
	}
	if data.HomeRegion.Valid {
		c.HomeRegion = data.HomeRegion.String
	}
	if data.ServedRegions != nil {
		c.ServedRegions = data.ServedRegions
	}
	if data.Specializations != nil {
		c.Specializations = data.Specializations
	}
	if data.MaxActiveRequests.Valid {
		c.MaxActiveRequests = int(data.MaxActiveRequests.Int)
	}
	if data.Available.Valid {
		c.Available = data.Available.Bool
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) SetAvailability(_ context.Context, id string, online, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counselors[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.Online = online
	c.Available = available
	return nil
}

func (s *memStore) TouchLiveness(_ context.Context, id string, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counselors[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.Online = true
	c.LastSeenAt = &seenAt
	return nil
}

func (s *memStore) ApplyRating(_ context.Context, id string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counselors[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.Rating = (c.Rating*float64(c.RatingCount) + score) / float64(c.RatingCount+1)
	c.RatingCount++
	return nil
}

func (s *memStore) FindEligible(_ context.Context, region string) ([]entities.Counselor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eligible := make([]entities.Counselor, 0)
	for _, c := range s.counselors {
		if c.VerificationStatus != constants.CounselorApproved || !c.Online || !c.Available {
			continue
		}
		if !c.HasCapacity() || !c.ServesRegion(region) {
			continue
		}
		eligible = append(eligible, *c)
	}
	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if (a.HomeRegion == region) != (b.HomeRegion == region) {
			return a.HomeRegion == region
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.ActiveRequests < b.ActiveRequests
	})
	return eligible, nil
}

// --- RequestRepositoryInterface ---

func (s *memStore) CreateRequest(_ context.Context, request *entities.CounselRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *request
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.requests[cp.ID] = &cp
	return nil
}

func (s *memStore) FindRequest(_ context.Context, id string) (*entities.CounselRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) ListOpenByRegion(_ context.Context, region string, now time.Time) ([]entities.CounselRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]entities.CounselRequest, 0)
	for _, r := range s.requests {
		if r.Region != region || r.Expired(now) {
			continue
		}
		if r.Status != constants.RequestBroadcasting && r.Status != constants.RequestPending {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (s *memStore) ListBroadcastedTo(_ context.Context, counselorID string, now time.Time) ([]entities.CounselRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]entities.CounselRequest, 0)
	for _, r := range s.requests {
		if r.Status != constants.RequestBroadcasting || r.Expired(now) {
			continue
		}
		if r.WasBroadcastTo(counselorID) {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]entities.CounselRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]entities.CounselRequest, 0)
	for _, r := range s.requests {
		if r.UserID == userID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (s *memStore) SetChatSession(_ context.Context, id string, chatSessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	r.ChatSessionID = &chatSessionID
	return nil
}

// --- AppointmentRepositoryInterface ---

func (s *memStore) FindAppointment(_ context.Context, id string) (*entities.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) ListQueued(_ context.Context, region string, now time.Time) ([]entities.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]entities.Appointment, 0)
	for _, a := range s.appointments {
		if a.Status != constants.AppointmentQueued || a.CounselorID != nil {
			continue
		}
		if region != "" && a.Region != region {
			continue
		}
		if r, ok := s.requests[a.RequestID]; !ok || r.Expired(now) {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledAt.Before(result[j].ScheduledAt)
	})
	return result, nil
}

func (s *memStore) ListByCounselor(_ context.Context, counselorID string) ([]entities.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]entities.Appointment, 0)
	for _, a := range s.appointments {
		if a.CounselorID != nil && *a.CounselorID == counselorID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledAt.Before(result[j].ScheduledAt)
	})
	return result, nil
}

// --- ClaimRepositoryInterface ---

func (s *memStore) ClaimRequest(_ context.Context, requestID, counselorID string, now time.Time) (*entities.CounselRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[requestID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	switch r.Status {
	case constants.RequestBroadcasting:
		if !r.WasBroadcastTo(counselorID) {
			return nil, apperrors.ErrNotBroadcasted
		}
	case constants.RequestPending:
		c, ok := s.counselors[counselorID]
		if !ok || c.VerificationStatus != constants.CounselorApproved {
			return nil, apperrors.ErrNotFound
		}
		if !c.ServesRegion(r.Region) {
			return nil, apperrors.ErrRegionNotServed
		}
	case constants.RequestScheduled:
		a := s.pairedAppointment(requestID)
		if a == nil {
			return nil, apperrors.ErrNotFound
		}
		if err := s.claimPair(r, a, counselorID, now); err != nil {
			return nil, err
		}
		cp := *r
		return &cp, nil
	}

	if err := s.requestClaimable(r, []string{constants.RequestBroadcasting, constants.RequestPending}, now); err != nil {
		return nil, err
	}
	if err := s.checkCapacity(counselorID); err != nil {
		return nil, err
	}

	s.applyRequestClaim(r, counselorID, now)
	s.consumeCapacity(counselorID)
	cp := *r
	return &cp, nil
}

func (s *memStore) ClaimAppointment(_ context.Context, appointmentID, counselorID string, now time.Time) (*entities.Appointment, *entities.CounselRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[appointmentID]
	if !ok {
		return nil, nil, apperrors.ErrNotFound
	}
	if a.CounselorID != nil || (a.Status != constants.AppointmentQueued && a.Status != constants.AppointmentScheduled) {
		if a.Terminal() {
			return nil, nil, apperrors.ErrTerminalState
		}
		return nil, nil, apperrors.ErrAlreadyClaimed
	}

	r, ok := s.requests[a.RequestID]
	if !ok {
		return nil, nil, apperrors.ErrNotFound
	}
	if err := s.claimPair(r, a, counselorID, now); err != nil {
		return nil, nil, err
	}

	apptCp := *a
	reqCp := *r
	return &apptCp, &reqCp, nil
}

// claimPair flips a scheduled request and its appointment together, the way
// the pair transaction does: both records change or neither does.
func (s *memStore) claimPair(r *entities.CounselRequest, a *entities.Appointment, counselorID string, now time.Time) error {
	if err := s.requestClaimable(r, []string{constants.RequestScheduled}, now); err != nil {
		return err
	}
	if err := s.checkCapacity(counselorID); err != nil {
		return err
	}
	a.Status = constants.AppointmentAccepted
	a.CounselorID = &counselorID
	s.applyRequestClaim(r, counselorID, now)
	s.consumeCapacity(counselorID)
	return nil
}

func (s *memStore) pairedAppointment(requestID string) *entities.Appointment {
	for _, a := range s.appointments {
		if a.RequestID == requestID {
			return a
		}
	}
	return nil
}

func (s *memStore) CreateScheduled(_ context.Context, request *entities.CounselRequest, appointment *entities.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqCp := *request
	reqCp.CreatedAt = time.Now()
	reqCp.UpdatedAt = reqCp.CreatedAt
	s.requests[reqCp.ID] = &reqCp

	apptCp := *appointment
	apptCp.CreatedAt = reqCp.CreatedAt
	apptCp.UpdatedAt = reqCp.CreatedAt
	s.appointments[apptCp.ID] = &apptCp
	return nil
}

func (s *memStore) CompleteRequest(_ context.Context, requestID string, now time.Time) (*entities.CounselRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[requestID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if r.Status != constants.RequestAccepted {
		if r.Terminal() {
			return nil, apperrors.ErrTerminalState
		}
		return nil, apperrors.ErrInvalidTransition
	}

	r.Status = constants.RequestCompleted
	r.CompletedAt = &now
	if r.CounselorID != nil {
		s.releaseCapacity(*r.CounselorID, true)
	}
	s.closePairedAppointment(requestID, constants.AppointmentCompleted, now)

	cp := *r
	return &cp, nil
}

func (s *memStore) CancelRequest(_ context.Context, requestID string, reason *string, now time.Time) (*entities.CounselRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[requestID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	switch r.Status {
	case constants.RequestAccepted, constants.RequestBroadcasting,
		constants.RequestPending, constants.RequestScheduled:
	default:
		if r.Terminal() {
			return nil, apperrors.ErrTerminalState
		}
		return nil, apperrors.ErrInvalidTransition
	}

	r.Status = constants.RequestCancelled
	r.CancelReason = reason
	if r.CounselorID != nil {
		s.releaseCapacity(*r.CounselorID, false)
	}
	s.closePairedAppointment(requestID, constants.AppointmentCancelled, now)

	cp := *r
	return &cp, nil
}

// requestClaimable mirrors the conditional-update guard plus the failure
// classification: callers get exactly one typed rejection.
func (s *memStore) requestClaimable(r *entities.CounselRequest, allowed []string, now time.Time) error {
	statusOK := false
	for _, st := range allowed {
		if r.Status == st {
			statusOK = true
			break
		}
	}
	if r.CounselorID == nil && statusOK && !r.Expired(now) {
		return nil
	}
	switch {
	case r.Terminal():
		return apperrors.ErrTerminalState
	case r.CounselorID != nil:
		return apperrors.ErrAlreadyClaimed
	case r.Expired(now):
		return apperrors.ErrRequestExpired
	default:
		return apperrors.ErrAlreadyClaimed
	}
}

func (s *memStore) applyRequestClaim(r *entities.CounselRequest, counselorID string, now time.Time) {
	r.Status = constants.RequestAccepted
	r.CounselorID = &counselorID
	r.AcceptedAt = &now
}

func (s *memStore) checkCapacity(counselorID string) error {
	c, ok := s.counselors[counselorID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !c.HasCapacity() {
		return apperrors.ErrCounselorAtCapacity
	}
	return nil
}

func (s *memStore) consumeCapacity(counselorID string) {
	c := s.counselors[counselorID]
	c.ActiveRequests++
	c.TotalCases++
}

func (s *memStore) releaseCapacity(counselorID string, completed bool) {
	c, ok := s.counselors[counselorID]
	if !ok || c.ActiveRequests == 0 {
		return
	}
	c.ActiveRequests--
	if completed {
		c.CompletedCases++
	}
}

func (s *memStore) closePairedAppointment(requestID, status string, now time.Time) {
	for _, a := range s.appointments {
		if a.RequestID != requestID || a.Terminal() {
			continue
		}
		a.Status = status
		if status == constants.AppointmentCompleted {
			a.CompletedAt = &now
		} else {
			a.CancelledAt = &now
		}
	}
}

// --- CacheRepositoryInterface ---

func (s *memStore) Set(_ context.Context, key string, _ interface{}, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = memCacheEntry{value: "1", expiresAt: time.Now().Add(expiration)}
	return nil
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[key]
	if !ok || time.Now().After(e.expiresAt) {
		return "", apperrors.ErrNotFound
	}
	return e.value, nil
}

func (s *memStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.cache, k)
	}
	return nil
}

func (s *memStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[key]
	return ok && time.Now().Before(e.expiresAt), nil
}

func (s *memStore) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[key]
	if !ok {
		return false, nil
	}
	e.expiresAt = time.Now().Add(expiration)
	s.cache[key] = e
	return true, nil
}
