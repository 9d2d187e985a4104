package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/credenciamento/event-api/internal/cache"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/metrics"
)

const topCompanies = 20

type StatsParticipantRepository interface {
	CountByStatus(ctx context.Context, eventID uint) (domain.EventStats, error)
	CountByCredential(ctx context.Context, eventID uint) ([]domain.CountByLabel, error)
	CountByCompany(ctx context.Context, eventID uint, limit int) ([]domain.CountByLabel, error)
}

type RadioCounter interface {
	OutstandingCount(ctx context.Context, eventID uint) (int64, error)
}

type StatsService struct {
	participants StatsParticipantRepository
	radios       RadioCounter
	events       EventReader
	cache        *cache.Cache
	metrics      *metrics.Registry
}

func NewStatsService(participants StatsParticipantRepository, radios RadioCounter, events EventReader, c *cache.Cache, m *metrics.Registry) *StatsService {
	return &StatsService{
		participants: participants,
		radios:       radios,
		events:       events,
		cache:        c,
		metrics:      m,
	}
}

// EventStats returns the dashboard numbers of an event, served from the
// cache until a write to the event invalidates them.
func (s *StatsService) EventStats(ctx context.Context, eventID uint) (domain.EventStats, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return domain.EventStats{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	stats, hit, err := cache.GetOrLoad(s.cache, cache.Key("stats", eventID), func() (domain.EventStats, error) {
		return s.load(ctx, eventID)
	})
	if err != nil {
		return domain.EventStats{}, err
	}

	if s.metrics != nil {
		result := "miss"
		if hit {
			result = "hit"
		}
		s.metrics.CacheRequests.WithLabelValues("stats", result).Inc()
	}

	return stats, nil
}

func (s *StatsService) load(ctx context.Context, eventID uint) (domain.EventStats, error) {
	var (
		stats        domain.EventStats
		byCredential []domain.CountByLabel
		byCompany    []domain.CountByLabel
		radiosOut    int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if stats, err = s.participants.CountByStatus(gctx, eventID); err != nil {
			return fmt.Errorf("s.participants.CountByStatus -> %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if byCredential, err = s.participants.CountByCredential(gctx, eventID); err != nil {
			return fmt.Errorf("s.participants.CountByCredential -> %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if byCompany, err = s.participants.CountByCompany(gctx, eventID, topCompanies); err != nil {
			return fmt.Errorf("s.participants.CountByCompany -> %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if radiosOut, err = s.radios.OutstandingCount(gctx, eventID); err != nil {
			return fmt.Errorf("s.radios.OutstandingCount -> %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.EventStats{}, err
	}

	stats.EventID = eventID
	stats.ByCredential = byCredential
	stats.ByCompany = byCompany
	stats.RadiosOut = radiosOut
	return stats, nil
}
