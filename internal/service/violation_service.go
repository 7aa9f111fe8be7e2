package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-compliance-service/internal/cache"
	"github.com/spec-kit/sla-compliance-service/internal/config"
	"github.com/spec-kit/sla-compliance-service/internal/domain"
	"github.com/spec-kit/sla-compliance-service/internal/events"
	"github.com/spec-kit/sla-compliance-service/internal/repository"
	"github.com/spec-kit/sla-compliance-service/internal/schedule"
	"github.com/spec-kit/sla-compliance-service/pkg/util"
)

// ValidationRules toggles the three violation rules and selects the
// combination policy. Callers pick the policy explicitly per call.
type ValidationRules struct {
	CheckGroupClosure     bool `json:"check_group_closure"`
	CheckSLABreach        bool `json:"check_sla_breach"`
	CheckViolationMarking bool `json:"check_violation_marking"`

	// StrictValidation=true flags a ticket only when every enabled rule is
	// non-compliant; false flags on any non-compliant rule.
	StrictValidation bool `json:"strict_validation"`
}

// DefaultStrictRules is the conservative posture used for general validation.
func DefaultStrictRules() ValidationRules {
	return ValidationRules{
		CheckGroupClosure:     true,
		CheckSLABreach:        true,
		CheckViolationMarking: true,
		StrictValidation:      true,
	}
}

// DefaultLenientRules is the sensitive posture used by dashboard verdicts.
func DefaultLenientRules() ValidationRules {
	rules := DefaultStrictRules()
	rules.StrictValidation = false
	return rules
}

// ViolationService evaluates the contractual-violation rules per ticket,
// combines them under the selected policy, and persists the verdict. Each
// evaluation is stateless given its inputs.
type ViolationService struct {
	tickets    repository.TicketSource
	groups     repository.GroupRepository
	violations repository.ViolationRepository
	slas       *SLAConfigService
	compliance *ComplianceService
	dispatcher events.Dispatcher
	cfg        config.SLAConfig
	logger     *zap.Logger

	groupCache *cache.Snapshot[map[string]domain.SupportGroup]
}

// ViolationDependencies bundles collaborators for the service.
type ViolationDependencies struct {
	Tickets    repository.TicketSource
	Groups     repository.GroupRepository
	Violations repository.ViolationRepository
	SLAConfig  *SLAConfigService
	Compliance *ComplianceService
	Dispatcher events.Dispatcher
	Config     config.SLAConfig
	Logger     *zap.Logger
}

// NewViolationService constructs the service.
func NewViolationService(deps ViolationDependencies) *ViolationService {
	return &ViolationService{
		tickets:    deps.Tickets,
		groups:     deps.Groups,
		violations: deps.Violations,
		slas:       deps.SLAConfig,
		compliance: deps.Compliance,
		dispatcher: deps.Dispatcher,
		cfg:        deps.Config,
		logger:     deps.Logger,
		groupCache: cache.NewSnapshot[map[string]domain.SupportGroup](),
	}
}

// ValidateContractualViolation runs the enabled rules against one ticket,
// combines the outcomes, persists the verdict (upsert by ticket sys_id), and
// returns it. A missing ticket or unsupported type is an explicit error;
// individual rule failures degrade to a compliant outcome instead.
func (s *ViolationService) ValidateContractualViolation(ctx context.Context, ticketID string, ticketType domain.TicketType, rules ValidationRules) (*domain.ViolationVerdict, error) {
	if !ticketType.IsSupported() {
		return nil, util.NewUnsupportedTicketType(string(ticketType))
	}

	snapshot, err := s.tickets.GetSnapshot(ctx, ticketID, ticketType)
	if err != nil {
		if util.IsNotFound(err) {
			return nil, util.NewNotFound("ticket", map[string]any{
				"ticket_id":   ticketID,
				"ticket_type": string(ticketType),
			})
		}
		return nil, err
	}

	verdict := &domain.ViolationVerdict{
		TicketSysID:      snapshot.SysID,
		TicketNumber:     snapshot.Number,
		TicketType:       snapshot.Type,
		StrictValidation: rules.StrictValidation,
		ValidatedAt:      time.Now(),
	}

	if rules.CheckGroupClosure {
		verdict.Reasons = append(verdict.Reasons, s.runRule(ctx, snapshot,
			domain.RuleGroupClosure, domain.RuleSeverityHigh,
			"ticket closed by a group present in the support catalog",
			s.evaluateGroupClosure))
	}
	if rules.CheckSLABreach {
		verdict.Reasons = append(verdict.Reasons, s.runRule(ctx, snapshot,
			domain.RuleSLABreach, domain.RuleSeverityCritical,
			"neither response nor resolution SLA breached",
			s.evaluateSLABreach))
	}
	if rules.CheckViolationMarking {
		verdict.Reasons = append(verdict.Reasons, s.runRule(ctx, snapshot,
			domain.RuleViolationMarking, domain.RuleSeverityMedium,
			"ticket not explicitly marked as contractually violated",
			s.evaluateViolationMarking))
	}

	verdict.IsViolated = combineOutcomes(verdict.Reasons, rules.StrictValidation)
	if verdict.IsViolated {
		verdict.PenaltyPercentage = s.resolutionPenalty(snapshot)
		verdict.FinancialImpact = schedule.Round2(s.cfg.ContractMonthlyValue * verdict.PenaltyPercentage / 100)
	}

	if err := s.violations.Upsert(ctx, verdict); err != nil {
		return nil, err
	}

	if verdict.IsViolated {
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:     events.EventViolationRecorded,
			TicketID: verdict.TicketSysID,
			Payload: events.ViolationRecordedPayload{
				TicketNumber:    verdict.TicketNumber,
				TicketType:      verdict.TicketType,
				Strict:          verdict.StrictValidation,
				Penalty:         verdict.PenaltyPercentage,
				FinancialImpact: verdict.FinancialImpact,
			},
		})
	}
	return verdict, nil
}

type ruleFunc func(ctx context.Context, snapshot *domain.TicketSnapshot) (bool, map[string]any, error)

// runRule wraps a rule evaluation with the degradation contract: a failing
// rule is logged and scored compliant so the overall verdict still returns.
func (s *ViolationService) runRule(ctx context.Context, snapshot *domain.TicketSnapshot, rule domain.ViolationRule, severity domain.RuleSeverity, description string, eval ruleFunc) domain.ViolationReason {
	reason := domain.ViolationReason{
		Rule:        rule,
		Description: description,
		Severity:    severity,
	}
	compliant, details, err := eval(ctx, snapshot)
	if err != nil {
		s.logger.Warn("violation rule evaluation failed; defaulting to compliant",
			zap.String("rule", string(rule)),
			zap.String("ticket_id", snapshot.SysID),
			zap.Error(err))
		reason.IsCompliant = true
		reason.Details = map[string]any{"degraded": true, "error": err.Error()}
		return reason
	}
	reason.IsCompliant = compliant
	reason.Details = details
	return reason
}

func (s *ViolationService) evaluateGroupClosure(ctx context.Context, snapshot *domain.TicketSnapshot) (bool, map[string]any, error) {
	groupID := snapshot.AssignmentGroup.Value
	if groupID == "" {
		return false, map[string]any{"assignment_group": nil}, nil
	}
	catalog, err := s.supportGroups(ctx)
	if err != nil {
		return false, nil, err
	}
	group, found := catalog[groupID]
	details := map[string]any{
		"assignment_group": groupID,
		"display_value":    snapshot.AssignmentGroup.DisplayValue,
		"found":            found,
	}
	if found {
		details["group_name"] = group.Name
	}
	return found, details, nil
}

func (s *ViolationService) evaluateSLABreach(ctx context.Context, snapshot *domain.TicketSnapshot) (bool, map[string]any, error) {
	priority, ok := domain.MapPriority(snapshot.Type, snapshot.Priority)
	if !ok {
		s.logger.Warn("unmapped priority in breach rule; defaulting to compliant",
			zap.String("ticket_id", snapshot.SysID),
			zap.String("raw_priority", snapshot.Priority))
		return true, map[string]any{"unmapped_priority": snapshot.Priority}, nil
	}

	status := s.compliance.ComputeSnapshotStatus(ctx, snapshot, priority)
	details := map[string]any{"priority": string(priority)}
	if status.Response != nil {
		details["response_breach_hours"] = status.Response.BreachHours
	}
	if status.Resolution != nil {
		details["resolution_breach_hours"] = status.Resolution.BreachHours
	}
	return status.OverallCompliance, details, nil
}

func (s *ViolationService) evaluateViolationMarking(_ context.Context, snapshot *domain.TicketSnapshot) (bool, map[string]any, error) {
	marked := snapshot.MarkedViolated()
	return !marked, map[string]any{"contractual_violation": marked}, nil
}

// combineOutcomes applies the strict/lenient policy. Strict flags only when
// every enabled rule failed, so a single compliant rule (for example an
// honestly unmarked ticket) suppresses the verdict even when the others
// failed; that asymmetry is deliberate business policy. Zero enabled rules
// never violate.
func combineOutcomes(reasons []domain.ViolationReason, strict bool) bool {
	if len(reasons) == 0 {
		return false
	}
	nonCompliant := 0
	for _, reason := range reasons {
		if !reason.IsCompliant {
			nonCompliant++
		}
	}
	if strict {
		return nonCompliant == len(reasons)
	}
	return nonCompliant > 0
}

// resolutionPenalty looks up the resolution-time threshold for the ticket's
// mapped priority; 0 when nothing matches.
func (s *ViolationService) resolutionPenalty(snapshot *domain.TicketSnapshot) float64 {
	priority, ok := domain.MapPriority(snapshot.Type, snapshot.Priority)
	if !ok {
		return 0
	}
	slaConfig := s.slas.GetSLA(snapshot.Type, priority, domain.MetricResolutionTime)
	if slaConfig == nil {
		return 0
	}
	return slaConfig.PenaltyPercentage
}

// supportGroups returns the cached catalog, refreshing lazily once the
// snapshot is older than the configured TTL. When a refresh fails but a
// stale snapshot exists, the stale copy is served.
func (s *ViolationService) supportGroups(ctx context.Context) (map[string]domain.SupportGroup, error) {
	if !s.groupCache.Stale(s.cfg.GroupCacheTTL()) {
		if catalog, ok := s.groupCache.Get(); ok {
			return catalog, nil
		}
	}

	groups, err := s.groups.ListAll(ctx)
	if err != nil {
		if catalog, ok := s.groupCache.Get(); ok {
			s.logger.Warn("group catalog refresh failed; serving stale cache", zap.Error(err))
			return catalog, nil
		}
		return nil, err
	}

	catalog := make(map[string]domain.SupportGroup, len(groups))
	for _, group := range groups {
		catalog[group.SysID] = group
	}
	s.groupCache.Replace(catalog)
	s.logger.Debug("support group cache refreshed", zap.Int("groups", len(groups)))
	return catalog, nil
}

// GenerateViolationStatistics summarizes persisted, processed verdicts whose
// validation timestamp falls inside [start, end].
func (s *ViolationService) GenerateViolationStatistics(ctx context.Context, start, end time.Time) (*domain.ViolationStatistics, error) {
	verdicts, err := s.violations.ListProcessedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats := &domain.ViolationStatistics{
		WindowStart:  start,
		WindowEnd:    end,
		ByTicketType: make(map[domain.TicketType]int),
		BySeverity:   make(map[domain.RuleSeverity]int),
	}
	for i := range verdicts {
		verdict := &verdicts[i]
		stats.TotalValidated++
		if !verdict.IsViolated {
			continue
		}
		stats.TotalViolated++
		stats.ByTicketType[verdict.TicketType]++
		stats.TotalFinancialImpact += verdict.FinancialImpact
		for _, reason := range verdict.Reasons {
			if !reason.IsCompliant {
				stats.BySeverity[reason.Severity]++
			}
		}
	}
	stats.ViolationRate = percentage(stats.TotalViolated, stats.TotalValidated)
	stats.TotalFinancialImpact = schedule.Round2(stats.TotalFinancialImpact)
	return stats, nil
}

// HealthCheck probes the tracking store and the group catalog.
func (s *ViolationService) HealthCheck(ctx context.Context) bool {
	if err := s.violations.Ping(ctx); err != nil {
		s.logger.Warn("violation store health check failed", zap.Error(err))
		return false
	}
	if err := s.groups.Ping(ctx); err != nil {
		s.logger.Warn("group catalog health check failed", zap.Error(err))
		return false
	}
	return true
}
