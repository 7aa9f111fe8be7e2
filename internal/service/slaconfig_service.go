package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-compliance-service/internal/cache"
	"github.com/spec-kit/sla-compliance-service/internal/domain"
	"github.com/spec-kit/sla-compliance-service/internal/events"
	"github.com/spec-kit/sla-compliance-service/internal/repository"
	"github.com/spec-kit/sla-compliance-service/internal/schedule"
)

// slaSnapshot is one immutable view of the loaded configuration set.
type slaSnapshot struct {
	byKey map[domain.SLAKey]domain.SLAConfiguration
	all   []domain.SLAConfiguration
}

// SLAConfigService answers SLA threshold lookups from an in-memory snapshot
// of the backing table. The snapshot has no per-entry expiry; it is replaced
// wholesale on explicit refresh.
type SLAConfigService struct {
	repo       repository.SLARepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	snapshot   *cache.Snapshot[*slaSnapshot]
}

// SLAConfigDependencies bundles collaborators for the service.
type SLAConfigDependencies struct {
	Repo       repository.SLARepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewSLAConfigService constructs the service. Call RefreshCache before the
// first lookup; an unpopulated cache answers every lookup with no match.
func NewSLAConfigService(deps SLAConfigDependencies) *SLAConfigService {
	return &SLAConfigService{
		repo:       deps.Repo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		snapshot:   cache.NewSnapshot[*slaSnapshot](),
	}
}

// GetSLA returns the threshold for the triple, or nil when no SLA applies.
// Absence is not an error; the caller must treat nil as "no SLA configured".
func (s *SLAConfigService) GetSLA(ticketType domain.TicketType, priority domain.SLAPriority, metricType domain.MetricType) *domain.SLAConfiguration {
	snap, ok := s.snapshot.Get()
	if !ok {
		return nil
	}
	cfg, ok := snap.byKey[domain.SLAKey{TicketType: ticketType, MetricType: metricType, Priority: priority}]
	if !ok {
		return nil
	}
	return &cfg
}

// GetAllSLAs returns every cached configuration.
func (s *SLAConfigService) GetAllSLAs() []domain.SLAConfiguration {
	snap, ok := s.snapshot.Get()
	if !ok {
		return nil
	}
	return snap.all
}

// GetSLAsForTicketType returns the cached configurations for one type.
func (s *SLAConfigService) GetSLAsForTicketType(ticketType domain.TicketType) []domain.SLAConfiguration {
	snap, ok := s.snapshot.Get()
	if !ok {
		return nil
	}
	var result []domain.SLAConfiguration
	for _, cfg := range snap.all {
		if cfg.TicketType == ticketType {
			result = append(result, cfg)
		}
	}
	return result
}

// Statistics aggregates counts over the cached configuration set.
func (s *SLAConfigService) Statistics() domain.SLAStatistics {
	stats := domain.SLAStatistics{
		ByTicketType: make(map[domain.TicketType]int),
		ByMetricType: make(map[domain.MetricType]int),
		RefreshedAt:  s.snapshot.RefreshedAt(),
	}
	snap, ok := s.snapshot.Get()
	if !ok {
		return stats
	}

	var hoursSum, penaltySum float64
	for _, cfg := range snap.all {
		stats.TotalConfigurations++
		stats.ByTicketType[cfg.TicketType]++
		stats.ByMetricType[cfg.MetricType]++
		if cfg.BusinessHoursOnly {
			stats.BusinessHoursOnly++
		}
		hoursSum += cfg.SLAHours
		penaltySum += cfg.PenaltyPercentage
	}
	if stats.TotalConfigurations > 0 {
		stats.AverageSLAHours = schedule.Round2(hoursSum / float64(stats.TotalConfigurations))
		stats.AveragePenalty = schedule.Round2(penaltySum / float64(stats.TotalConfigurations))
	}
	return stats
}

// RefreshCache reloads the full configuration set and swaps the snapshot in
// atomically; readers never observe a partially-replaced cache. Overlapping
// refreshes are safe: each builds its own snapshot and the later swap wins.
func (s *SLAConfigService) RefreshCache(ctx context.Context) error {
	configs, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	snap := &slaSnapshot{
		byKey: make(map[domain.SLAKey]domain.SLAConfiguration, len(configs)),
		all:   configs,
	}
	for _, cfg := range configs {
		snap.byKey[cfg.Key()] = cfg
	}
	s.snapshot.Replace(snap)

	s.logger.Info("sla configuration cache refreshed", zap.Int("configurations", len(configs)))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventSLACacheRefreshed,
		Payload: events.CacheRefreshedPayload{Configurations: len(configs)},
	})
	return nil
}

// HealthCheck probes the backing store.
func (s *SLAConfigService) HealthCheck(ctx context.Context) bool {
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Warn("sla store health check failed", zap.Error(err))
		return false
	}
	return true
}
