package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"counsel-dispatch/internal/dto"
	"counsel-dispatch/pkg/config"
	"counsel-dispatch/pkg/eventbus"
)

type testEnv struct {
	store      *memStore
	bus        *eventbus.Bus
	presence   PresenceServiceInterface
	directory  DirectoryServiceInterface
	dispatcher DispatcherServiceInterface
	arbiter    ArbiterServiceInterface
	scheduler  SchedulerServiceInterface
	lifecycle  LifecycleServiceInterface
	counselors CounselorServiceInterface
}

func defaultDispatchConfig() config.DispatchConfig {
	return config.DispatchConfig{
		BroadcastWindow: 5 * time.Minute,
		ScheduledWindow: 7 * 24 * time.Hour,
		PresenceTTL:     2 * time.Minute,
	}
}

func newTestEnv(cfg ...config.DispatchConfig) *testEnv {
	dispatchCfg := defaultDispatchConfig()
	if len(cfg) > 0 {
		dispatchCfg = cfg[0]
	}

	logger := zap.NewNop()
	store := newMemStore()
	bus := eventbus.New(logger)
	presence := NewPresenceService(store, store, dispatchCfg.PresenceTTL, logger)
	directory := NewDirectoryService(store, presence, logger)

	return &testEnv{
		store:      store,
		bus:        bus,
		presence:   presence,
		directory:  directory,
		dispatcher: NewDispatcherService(store, directory, bus, dispatchCfg, logger),
		arbiter:    NewArbiterService(store, store, NewLogChatSessionCreator(logger), bus, logger),
		scheduler:  NewSchedulerService(store, store, dispatchCfg, logger),
		lifecycle:  NewLifecycleService(store, bus, logger),
		counselors: NewCounselorService(store, logger),
	}
}

// seedCounselor registers an approved counselor, flips them online and
// records a heartbeat so they count as live.
func (e *testEnv) seedCounselor(t *testing.T, region string, maxActive int) string {
	t.Helper()
	ctx := context.Background()

	id, err := e.counselors.Register(ctx, dto.RegisterCounselorDTO{
		FullName:          fmt.Sprintf("Counselor %s", region),
		Contact:           "counselor@example.com",
		HomeRegion:        region,
		MaxActiveRequests: maxActive,
	})
	require.NoError(t, err)
	require.NoError(t, e.presence.SetAvailability(ctx, id, true, true))
	require.NoError(t, e.presence.Heartbeat(ctx, id))
	return id
}

func (e *testEnv) seedRequest(t *testing.T, region string) *dto.CreateRequestResultDTO {
	t.Helper()

	res, err := e.dispatcher.CreateRequest(context.Background(), "user-1", dto.CreateRequestDTO{
		Note:        "need help with a rental dispute",
		Category:    "housing_law",
		Region:      region,
		UserContact: "user@example.com",
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) seedBooking(t *testing.T, region string) string {
	t.Helper()

	when := time.Now().Add(48 * time.Hour)
	requestID, err := e.scheduler.ScheduleBooking(context.Background(), "user-1", dto.ScheduleBookingDTO{
		Note:        "estate planning consultation",
		Category:    "inheritance_law",
		Region:      region,
		UserContact: "user@example.com",
		Date:        when.Format("2006-01-02"),
		Time:        when.Format("15:04"),
	})
	require.NoError(t, err)
	return requestID
}
