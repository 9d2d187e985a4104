package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/credenciamento/event-api/internal/cache"
	"github.com/credenciamento/event-api/internal/config"
	"github.com/credenciamento/event-api/internal/db"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/metrics"
	"github.com/credenciamento/event-api/internal/pkg/search"
	"github.com/credenciamento/event-api/internal/realtime"
	"github.com/credenciamento/event-api/internal/repository"
	"github.com/credenciamento/event-api/internal/repository/dao"
)

const (
	validCPF      = "52998224725"
	otherValidCPF = "11144477735"
)

type testEnv struct {
	events       *EventService
	participants *ParticipantService
	credentials  *CredentialService
	movements    *MovementService
	operators    *OperatorService
	attendance   *AttendanceService
	radios       *RadioService
	stats        *StatsService
	imports      *ImportService
	exports      *ExportService
	audit        *AuditService
	auth         *AuthService

	broker  *realtime.MemoryBroker
	metrics *metrics.Registry
	admin   domain.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	userRepo := repository.NewUserRepository(dao.NewUserDAO(gdb))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(gdb))
	credentialRepo := repository.NewCredentialRepository(dao.NewCredentialDAO(gdb))
	participantRepo := repository.NewParticipantRepository(dao.NewParticipantDAO(gdb))
	movementRepo := repository.NewMovementRepository(dao.NewMovementDAO(gdb))
	operatorRepo := repository.NewOperatorRepository(dao.NewOperatorDAO(gdb))
	attendanceRepo := repository.NewAttendanceRepository(dao.NewAttendanceDAO(gdb))
	radioRepo := repository.NewRadioRepository(dao.NewRadioDAO(gdb))
	auditRepo := repository.NewAuditRepository(dao.NewAuditDAO(gdb))

	index, err := search.NewCache(8)
	require.NoError(t, err)
	caches := &EventCaches{Search: index, Stats: cache.New(time.Minute)}

	broker := realtime.NewMemoryBroker()
	t.Cleanup(func() { _ = broker.Close() })
	m := metrics.NewRegistry(prometheus.NewRegistry())

	env := &testEnv{
		broker:  broker,
		metrics: m,
		admin:   domain.Actor{ID: 1, Type: domain.ActorUser, RequestID: "req-1"},
	}
	env.audit = NewAuditService(auditRepo)
	env.auth = NewAuthService(userRepo, operatorRepo)
	env.events = NewEventService(eventRepo, env.audit, caches)
	env.credentials = NewCredentialService(credentialRepo, eventRepo, env.audit, caches)
	env.participants = NewParticipantService(participantRepo, eventRepo, credentialRepo, index, env.audit, caches)
	env.movements = NewMovementService(movementRepo, participantRepo, env.audit)
	env.operators = NewOperatorService(operatorRepo, broker, m, env.audit)
	env.attendance = NewAttendanceService(attendanceRepo, participantRepo, env.operators,
		&config.AttendanceConfig{EnforceWorkDays: true, Timezone: "UTC"}, m, env.audit, caches)
	env.radios = NewRadioService(radioRepo, eventRepo, env.audit, caches)
	env.stats = NewStatsService(participantRepo, env.radios, eventRepo, caches.Stats, m)
	env.imports = NewImportService(participantRepo, credentialRepo, eventRepo,
		&config.ImportConfig{MaxRows: 100}, m, env.audit, caches)
	env.exports = NewExportService(participantRepo, eventRepo, env.attendance, env.radios, time.UTC)

	return env
}

// freezeNow pins the service clock for the duration of the test.
func freezeNow(t *testing.T, at time.Time) {
	t.Helper()

	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func (e *testEnv) createEvent(t *testing.T) domain.Event {
	t.Helper()

	event, err := e.events.CreateEvent(context.Background(), e.admin, domain.Event{
		Name:      "Festival de Inverno",
		StartDate: time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return event
}

func (e *testEnv) createParticipant(t *testing.T, eventID uint, name, document string) domain.Participant {
	t.Helper()

	p, err := e.participants.CreateParticipant(context.Background(), e.admin, domain.Participant{
		EventID: eventID,
		Name:    name,
		CPF:     document,
		Company: "Som & Luz",
		Role:    "Técnico",
	})
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T {
	return &v
}
