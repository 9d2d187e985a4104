//go:build integration

package db_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/credenciamento/event-api/internal/db"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/repository"
	"github.com/credenciamento/event-api/internal/repository/dao"
)

var postgresDB *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("dockertest.NewPool -> %v", err)
	}
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=credenciamento",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("pool.RunWithOptions -> %v", err)
	}
	_ = resource.Expire(300)

	dsn := fmt.Sprintf("postgres://postgres:secret@%s/credenciamento?sslmode=disable", resource.GetHostPort("5432/tcp"))
	if err = pool.Retry(func() error {
		var openErr error
		postgresDB, openErr = db.OpenPostgresWithURL(dsn)
		return openErr
	}); err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("could not connect to postgres -> %v", err)
	}

	code := m.Run()

	if err = pool.Purge(resource); err != nil {
		log.Printf("pool.Purge -> %v", err)
	}
	os.Exit(code)
}

func TestPostgresUniqueViolations(t *testing.T) {
	ctx := context.Background()
	events := repository.NewEventRepository(dao.NewEventDAO(postgresDB))
	participants := repository.NewParticipantRepository(dao.NewParticipantDAO(postgresDB))
	operators := repository.NewOperatorRepository(dao.NewOperatorDAO(postgresDB))

	event, err := events.Create(ctx, domain.Event{
		Name:      "Festival de Inverno",
		StartDate: time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC),
		Status:    domain.EventActive,
		Days:      []domain.EventDay{},
		Managers:  []domain.StaffMember{},
		Staff:     []domain.StaffMember{},
	})
	require.NoError(t, err)

	p := domain.Participant{EventID: event.ID, Name: "João da Silva", CPF: "52998224725", WorkDays: []string{}}
	_, err = participants.Create(ctx, p)
	require.NoError(t, err)

	p.Name = "Outro João"
	_, err = participants.Create(ctx, p)
	assert.ErrorIs(t, err, repository.ErrParticipantCPFExists)

	op := domain.Operator{Name: "Portaria", CPF: "11144477735", Password: "hash", EventIDs: []uint{event.ID}}
	_, err = operators.Create(ctx, op)
	require.NoError(t, err)

	_, err = operators.Create(ctx, op)
	assert.ErrorIs(t, err, repository.ErrOperatorCPFExists)
}
