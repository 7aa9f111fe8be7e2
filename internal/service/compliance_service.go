package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-compliance-service/internal/config"
	"github.com/spec-kit/sla-compliance-service/internal/domain"
	"github.com/spec-kit/sla-compliance-service/internal/events"
	"github.com/spec-kit/sla-compliance-service/internal/persistence"
	"github.com/spec-kit/sla-compliance-service/internal/repository"
	"github.com/spec-kit/sla-compliance-service/internal/schedule"
	"github.com/spec-kit/sla-compliance-service/pkg/util"
)

// ComplianceService measures per-ticket SLA compliance and aggregates it
// into windowed metrics and dashboards.
type ComplianceService struct {
	tickets    repository.TicketSource
	slas       *SLAConfigService
	hours      *schedule.BusinessHoursCalculator
	dispatcher events.Dispatcher
	dashCache  persistence.PayloadCache
	cfg        config.SLAConfig
	logger     *zap.Logger
}

// ComplianceDependencies bundles collaborators for the service.
type ComplianceDependencies struct {
	Tickets        repository.TicketSource
	SLAConfig      *SLAConfigService
	HoursCalc      *schedule.BusinessHoursCalculator
	Dispatcher     events.Dispatcher
	DashboardCache persistence.PayloadCache
	Config         config.SLAConfig
	Logger         *zap.Logger
}

// NewComplianceService constructs the service.
func NewComplianceService(deps ComplianceDependencies) *ComplianceService {
	return &ComplianceService{
		tickets:    deps.Tickets,
		slas:       deps.SLAConfig,
		hours:      deps.HoursCalc,
		dispatcher: deps.Dispatcher,
		dashCache:  deps.DashboardCache,
		cfg:        deps.Config,
		logger:     deps.Logger,
	}
}

// CalculateTicketSLA computes the compliance status of one ticket. It
// returns (nil, nil) when the ticket cannot be found or its raw priority has
// no mapping for the type; both cases are logged as warnings, not errors.
func (s *ComplianceService) CalculateTicketSLA(ctx context.Context, ticketID string, ticketType domain.TicketType) (*domain.TicketSLAStatus, error) {
	if !ticketType.IsSupported() {
		return nil, util.NewUnsupportedTicketType(string(ticketType))
	}

	snapshot, err := s.tickets.GetSnapshot(ctx, ticketID, ticketType)
	if err != nil {
		if util.IsNotFound(err) {
			s.logger.Warn("ticket not found for sla calculation",
				zap.String("ticket_id", ticketID), zap.String("ticket_type", string(ticketType)))
			return nil, nil
		}
		return nil, err
	}

	priority, ok := domain.MapPriority(snapshot.Type, snapshot.Priority)
	if !ok {
		s.logger.Warn("unmapped ticket priority",
			zap.String("ticket_id", ticketID),
			zap.String("ticket_type", string(snapshot.Type)),
			zap.String("raw_priority", snapshot.Priority))
		return nil, nil
	}

	status := s.ComputeSnapshotStatus(ctx, snapshot, priority)
	return status, nil
}

// ComputeSnapshotStatus builds the per-metric compliance results for an
// already-decoded snapshot with an already-mapped priority. A metric is only
// evaluated when its terminal timestamp is available and a matching SLA
// threshold exists.
func (s *ComplianceService) ComputeSnapshotStatus(ctx context.Context, snapshot *domain.TicketSnapshot, priority domain.SLAPriority) *domain.TicketSLAStatus {
	status := &domain.TicketSLAStatus{
		TicketSysID:       snapshot.SysID,
		TicketNumber:      snapshot.Number,
		TicketType:        snapshot.Type,
		Priority:          priority,
		OverallCompliance: true,
	}

	status.Response = s.evaluateMetric(ctx, snapshot, priority, domain.MetricResponseTime, snapshot.ResponseTimestamp())
	status.Resolution = s.evaluateMetric(ctx, snapshot, priority, domain.MetricResolutionTime, snapshot.ResolutionTimestamp())

	for _, result := range status.Results() {
		if !result.IsCompliant {
			status.OverallCompliance = false
		}
		status.TotalPenaltyPercentage += result.PenaltyPercentage
	}
	status.TotalPenaltyPercentage = schedule.Round2(status.TotalPenaltyPercentage)
	return status
}

func (s *ComplianceService) evaluateMetric(ctx context.Context, snapshot *domain.TicketSnapshot, priority domain.SLAPriority, metric domain.MetricType, terminal *time.Time) *domain.ComplianceResult {
	if terminal == nil {
		return nil
	}
	slaConfig := s.slas.GetSLA(snapshot.Type, priority, metric)
	if slaConfig == nil {
		return nil
	}

	var actual float64
	if slaConfig.BusinessHoursOnly {
		actual = s.hours.CalculateBusinessHours(snapshot.CreatedOn, *terminal)
	} else {
		actual = schedule.Round2(terminal.Sub(snapshot.CreatedOn).Hours())
	}
	if actual < 0 {
		actual = 0
	}

	result := &domain.ComplianceResult{
		MetricType:        metric,
		SLAHours:          slaConfig.SLAHours,
		ActualHours:       actual,
		IsCompliant:       actual <= slaConfig.SLAHours,
		BusinessHoursOnly: slaConfig.BusinessHoursOnly,
		CalculatedAt:      time.Now(),
	}
	if !result.IsCompliant {
		result.BreachHours = schedule.Round2(actual - slaConfig.SLAHours)
		result.PenaltyPercentage = slaConfig.PenaltyPercentage
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:     events.EventSLABreachDetected,
			TicketID: snapshot.SysID,
			Payload: events.SLABreachPayload{
				TicketNumber: snapshot.Number,
				TicketType:   snapshot.Type,
				MetricType:   metric,
				BreachHours:  result.BreachHours,
				Penalty:      result.PenaltyPercentage,
			},
		})
	}
	return result
}

// GenerateSLAMetrics aggregates compliance over every ticket created in
// [start, end] for the requested types (all supported types when none are
// given). A ticket whose status cannot be computed degrades to a skipped
// data point rather than failing the aggregation.
func (s *ComplianceService) GenerateSLAMetrics(ctx context.Context, start, end time.Time, ticketTypes ...domain.TicketType) ([]domain.SLAMetrics, error) {
	if len(ticketTypes) == 0 {
		ticketTypes = domain.SupportedTicketTypes
	}
	for _, ticketType := range ticketTypes {
		if !ticketType.IsSupported() {
			return nil, util.NewUnsupportedTicketType(string(ticketType))
		}
	}

	result := make([]domain.SLAMetrics, 0, len(ticketTypes))
	for _, ticketType := range ticketTypes {
		statuses, err := s.collectStatuses(ctx, ticketType, start, end)
		if err != nil {
			return nil, err
		}
		metrics := aggregateMetrics(ticketType, start, end, statuses, true)
		result = append(result, *metrics)
	}
	return result, nil
}

func (s *ComplianceService) collectStatuses(ctx context.Context, ticketType domain.TicketType, start, end time.Time) ([]domain.TicketSLAStatus, error) {
	snapshots, err := s.tickets.ListCreatedBetween(ctx, ticketType, start, end)
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.TicketSLAStatus, 0, len(snapshots))
	for i := range snapshots {
		snapshot := &snapshots[i]
		priority, ok := domain.MapPriority(snapshot.Type, snapshot.Priority)
		if !ok {
			s.logger.Warn("skipping ticket with unmapped priority",
				zap.String("ticket_id", snapshot.SysID),
				zap.String("raw_priority", snapshot.Priority))
			continue
		}
		statuses = append(statuses, *s.ComputeSnapshotStatus(ctx, snapshot, priority))
	}
	return statuses, nil
}

// aggregateMetrics folds per-ticket statuses into one SLAMetrics value.
// Percentages are (numerator/denominator)*100 rounded to 2 decimals; empty
// windows yield 0, never NaN. The priority breakdown reuses the same fold.
func aggregateMetrics(ticketType domain.TicketType, start, end time.Time, statuses []domain.TicketSLAStatus, withPriorityBreakdown bool) *domain.SLAMetrics {
	metrics := &domain.SLAMetrics{
		TicketType:  ticketType,
		WindowStart: start,
		WindowEnd:   end,
	}

	var responseSum, resolutionSum float64
	var responseCount, resolutionCount int
	for i := range statuses {
		status := &statuses[i]
		metrics.TotalTickets++
		if status.OverallCompliance {
			metrics.CompliantTickets++
		} else {
			metrics.BreachedTickets++
		}
		metrics.TotalPenaltyPercentage += status.TotalPenaltyPercentage
		if status.Response != nil {
			responseSum += status.Response.ActualHours
			responseCount++
		}
		if status.Resolution != nil {
			resolutionSum += status.Resolution.ActualHours
			resolutionCount++
		}
	}

	metrics.CompliancePercentage = percentage(metrics.CompliantTickets, metrics.TotalTickets)
	metrics.TotalPenaltyPercentage = schedule.Round2(metrics.TotalPenaltyPercentage)
	if responseCount > 0 {
		metrics.AvgResponseHours = schedule.Round2(responseSum / float64(responseCount))
	}
	if resolutionCount > 0 {
		metrics.AvgResolutionHours = schedule.Round2(resolutionSum / float64(resolutionCount))
	}

	if withPriorityBreakdown && len(statuses) > 0 {
		metrics.ByPriority = make(map[domain.SLAPriority]*domain.SLAMetrics)
		grouped := make(map[domain.SLAPriority][]domain.TicketSLAStatus)
		for _, status := range statuses {
			grouped[status.Priority] = append(grouped[status.Priority], status)
		}
		for priority, group := range grouped {
			metrics.ByPriority[priority] = aggregateMetrics(ticketType, start, end, group, false)
		}
	}
	return metrics
}

// GetDashboardData composes metrics across all ticket types, recent
// breaches, and threshold alerts. Payloads are served from the redis cache
// when a fresh copy exists for the same window.
func (s *ComplianceService) GetDashboardData(ctx context.Context, start, end time.Time) (*domain.SLADashboardData, error) {
	cacheKey := fmt.Sprintf("sla:dashboard:%d:%d", start.Unix(), end.Unix())
	if s.dashCache != nil {
		if payload, ok := s.dashCache.Get(ctx, cacheKey); ok {
			var cached domain.SLADashboardData
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	dashboard := &domain.SLADashboardData{
		WindowStart:  start,
		WindowEnd:    end,
		ByTicketType: make(map[domain.TicketType]*domain.SLAMetrics),
		GeneratedAt:  time.Now(),
	}

	metrics, err := s.GenerateSLAMetrics(ctx, start, end)
	if err != nil {
		return nil, err
	}
	for i := range metrics {
		m := &metrics[i]
		dashboard.ByTicketType[m.TicketType] = m
		dashboard.TotalTickets += m.TotalTickets
		dashboard.CompliantTickets += m.CompliantTickets
		dashboard.BreachedTickets += m.BreachedTickets
		dashboard.TotalPenalty += m.TotalPenaltyPercentage
	}
	dashboard.CompliancePercentage = percentage(dashboard.CompliantTickets, dashboard.TotalTickets)
	dashboard.TotalPenalty = schedule.Round2(dashboard.TotalPenalty)

	dashboard.RecentBreaches = s.recentBreaches(ctx)
	dashboard.Alerts = s.buildAlerts(ctx, dashboard.TotalPenalty)

	if s.dashCache != nil {
		if payload, err := json.Marshal(dashboard); err == nil {
			s.dashCache.Set(ctx, cacheKey, payload, s.cfg.DashboardCacheTTL())
		}
	}
	return dashboard, nil
}

// recentBreaches scans the trailing 7 days for non-compliant tickets, capped
// at the configured limit. A failing type scan degrades to a partial list.
func (s *ComplianceService) recentBreaches(ctx context.Context) []domain.TicketSLAStatus {
	limit := s.cfg.RecentBreachLimit
	if limit <= 0 {
		limit = 25
	}
	end := time.Now()
	start := end.AddDate(0, 0, -7)

	breaches := []domain.TicketSLAStatus{}
	for _, ticketType := range domain.SupportedTicketTypes {
		statuses, err := s.collectStatuses(ctx, ticketType, start, end)
		if err != nil {
			s.logger.Warn("recent breach scan failed",
				zap.String("ticket_type", string(ticketType)), zap.Error(err))
			continue
		}
		for _, status := range statuses {
			if status.OverallCompliance {
				continue
			}
			breaches = append(breaches, status)
			if len(breaches) >= limit {
				return breaches
			}
		}
	}
	return breaches
}

// buildAlerts evaluates the 24-hour compliance and penalty thresholds. A
// failing 24h scan produces no compliance alert rather than a failed request.
func (s *ComplianceService) buildAlerts(ctx context.Context, windowPenalty float64) []domain.SLAAlert {
	alerts := []domain.SLAAlert{}

	end := time.Now()
	dayMetrics, err := s.GenerateSLAMetrics(ctx, end.Add(-24*time.Hour), end)
	if err != nil {
		s.logger.Warn("24h compliance scan failed", zap.Error(err))
	} else {
		var total, compliant int
		for _, m := range dayMetrics {
			total += m.TotalTickets
			compliant += m.CompliantTickets
		}
		if total > 0 {
			compliance := percentage(compliant, total)
			switch {
			case compliance < s.cfg.CriticalComplianceThreshold:
				alerts = append(alerts, domain.SLAAlert{
					Severity: domain.AlertSeverityCritical,
					Code:     "low_compliance_24h",
					Message:  fmt.Sprintf("24h compliance at %.2f%%", compliance),
					Value:    compliance,
				})
			case compliance < s.cfg.HighComplianceThreshold:
				alerts = append(alerts, domain.SLAAlert{
					Severity: domain.AlertSeverityHigh,
					Code:     "low_compliance_24h",
					Message:  fmt.Sprintf("24h compliance at %.2f%%", compliance),
					Value:    compliance,
				})
			}
		}
	}

	if windowPenalty > s.cfg.PenaltyAlertThreshold {
		alerts = append(alerts, domain.SLAAlert{
			Severity: domain.AlertSeverityHigh,
			Code:     "penalty_budget_exceeded",
			Message:  fmt.Sprintf("summed penalty %.2f%% exceeds %.2f%%", windowPenalty, s.cfg.PenaltyAlertThreshold),
			Value:    windowPenalty,
		})
	}
	return alerts
}

// HealthCheck probes the ticket mirror.
func (s *ComplianceService) HealthCheck(ctx context.Context) bool {
	if err := s.tickets.Ping(ctx); err != nil {
		s.logger.Warn("ticket source health check failed", zap.Error(err))
		return false
	}
	return true
}

// percentage computes numerator/denominator*100 rounded to 2 decimals,
// with 0 for an empty denominator.
func percentage(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return schedule.Round2(float64(numerator) / float64(denominator) * 100)
}
