package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-compliance-service/internal/domain"
	"github.com/spec-kit/sla-compliance-service/internal/events"
	"github.com/spec-kit/sla-compliance-service/pkg/util"
)

type violationHarness struct {
	svc        *ViolationService
	tickets    *fakeTicketSource
	groups     *fakeGroupRepo
	violations *fakeViolationRepo
	dispatcher *captureDispatcher
}

func newViolationHarness(t *testing.T, tickets *fakeTicketSource, groups *fakeGroupRepo, configs []domain.SLAConfiguration) *violationHarness {
	t.Helper()
	dispatcher := &captureDispatcher{}
	violations := newFakeViolationRepo()
	slaService := testSLAConfigService(t, &fakeSLARepo{configs: configs})
	compliance := NewComplianceService(ComplianceDependencies{
		Tickets:   tickets,
		SLAConfig: slaService,
		HoursCalc: testCalculator(t),
		Config:    testSLAConfig(),
		Logger:    zap.NewNop(),
	})
	svc := NewViolationService(ViolationDependencies{
		Tickets:    tickets,
		Groups:     groups,
		Violations: violations,
		SLAConfig:  slaService,
		Compliance: compliance,
		Dispatcher: dispatcher,
		Config:     testSLAConfig(),
		Logger:     zap.NewNop(),
	})
	return &violationHarness{svc: svc, tickets: tickets, groups: groups, violations: violations, dispatcher: dispatcher}
}

func p1ResolutionSLA() []domain.SLAConfiguration {
	return []domain.SLAConfiguration{
		slaFixture(domain.TicketTypeIncident, domain.MetricResolutionTime, domain.SLAPriorityP1, 4, 10, true),
	}
}

// breachedTicket resolves in 6 business hours against the 4h P1 threshold.
func breachedTicket(sysID string) domain.TicketSnapshot {
	created := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	ticket := ticketFixture(sysID, "INC0020001", domain.TicketTypeIncident, "1", created)
	ticket.ResolvedAt = ptrTime(created.Add(6 * time.Hour))
	return ticket
}

func TestValidateStrictSuppressedByCompliantRule(t *testing.T) {
	// breached SLA and a group missing from the catalog, but the ticket is
	// honestly unmarked: two of three rules fail
	ticket := breachedTicket("inc-v1")
	harness := newViolationHarness(t,
		&fakeTicketSource{snapshots: map[string]domain.TicketSnapshot{"inc-v1": ticket}},
		&fakeGroupRepo{}, p1ResolutionSLA())

	verdict, err := harness.svc.ValidateContractualViolation(context.Background(), "inc-v1", domain.TicketTypeIncident, DefaultStrictRules())
	require.NoError(t, err)
	require.Len(t, verdict.Reasons, 3)

	byRule := make(map[domain.ViolationRule]domain.ViolationReason)
	for _, reason := range verdict.Reasons {
		byRule[reason.Rule] = reason
	}
	assert.False(t, byRule[domain.RuleGroupClosure].IsCompliant)
	assert.False(t, byRule[domain.RuleSLABreach].IsCompliant)
	assert.True(t, byRule[domain.RuleViolationMarking].IsCompliant)

	assert.False(t, verdict.IsViolated)
	assert.Zero(t, verdict.PenaltyPercentage)
	assert.Zero(t, verdict.FinancialImpact)
	assert.Empty(t, harness.dispatcher.ofType(events.EventViolationRecorded))

	// the same outcomes flag the ticket under the lenient policy
	verdict, err = harness.svc.ValidateContractualViolation(context.Background(), "inc-v1", domain.TicketTypeIncident, DefaultLenientRules())
	require.NoError(t, err)
	assert.True(t, verdict.IsViolated)
	assert.Equal(t, 10.0, verdict.PenaltyPercentage)
	assert.Equal(t, 1000.0, verdict.FinancialImpact)
	assert.Len(t, harness.dispatcher.ofType(events.EventViolationRecorded), 1)
}

func TestValidateStrictAllRulesFail(t *testing.T) {
	ticket := breachedTicket("inc-v2")
	ticket.ContractualViolation = ptrBool(true)
	harness := newViolationHarness(t,
		&fakeTicketSource{snapshots: map[string]domain.TicketSnapshot{"inc-v2": ticket}},
		&fakeGroupRepo{}, p1ResolutionSLA())

	verdict, err := harness.svc.ValidateContractualViolation(context.Background(), "inc-v2", domain.TicketTypeIncident, DefaultStrictRules())
	require.NoError(t, err)

	assert.True(t, verdict.IsViolated)
	assert.True(t, verdict.StrictValidation)
	assert.Equal(t, 10.0, verdict.PenaltyPercentage)
	assert.Equal(t, 1000.0, verdict.FinancialImpact)

	recorded := harness.dispatcher.ofType(events.EventViolationRecorded)
	require.Len(t, recorded, 1)
	payload := recorded[0].Payload.(events.ViolationRecordedPayload)
	assert.Equal(t, 1000.0, payload.FinancialImpact)
}

func TestValidateZeroEnabledRules(t *testing.T) {
	ticket := breachedTicket("inc-v3")
	ticket.ContractualViolation = ptrBool(true)
	harness := newViolationHarness(t,
		&fakeTicketSource{snapshots: map[string]domain.TicketSnapshot{"inc-v3": ticket}},
		&fakeGroupRepo{}, p1ResolutionSLA())

	verdict, err := harness.svc.ValidateContractualViolation(context.Background(), "inc-v3", domain.TicketTypeIncident,
		ValidationRules{StrictValidation: true})
	require.NoError(t, err)

	assert.Empty(t, verdict.Reasons)
	assert.False(t, verdict.IsViolated)
}

func TestValidateGroupFoundInCatalog(t *testing.T) {
	ticket := breachedTicket("inc-v4")
	ticket.AssignmentGroup = domain.GroupRef{Value: "grp-1", DisplayValue: "Network Ops"}
	harness := newViolationHarness(t,
		&fakeTicketSource{snapshots: map[string]domain.TicketSnapshot{"inc-v4": ticket}},
		&fakeGroupRepo{groups: []domain.SupportGroup{{SysID: "grp-1", Name: "Network Ops"}}},
		p1ResolutionSLA())

	verdict, err := harness.svc.ValidateContractualViolation(context.Background(), "inc-v4", domain.TicketTypeIncident,
		ValidationRules{CheckGroupClosure: true})
	require.NoError(t, err)
	require.Len(t, verdict.Reasons, 1)
	assert.True(t, verdict.Reasons[0].IsCompliant)
	assert.Equal(t, "Network Ops", verdict.Reasons[0].Details["group_name"])
}

func TestValidateGroupCatalogCached(t *testing.T) {
	ticket := breachedTicket("inc-v5")
	ticket.AssignmentGroup = domain.GroupRef{Value: "grp-1"}
	harness := newViolationHarness(t,
		&fakeTicketSource{snapshots: map[string]domain.TicketSnapshot{"inc-v5": ticket}},
		&fakeGroupRepo{groups: []domain.SupportGroup{{SysID: "grp-1", Name: "Network Ops"}}},
		p1ResolutionSLA())

	rules := ValidationRules{CheckGroupClosure: true}
	_, err := harness.svc.ValidateContractualViolation(context.Background(), "inc-v5", domain.TicketTypeIncident, rules)
	require.NoError(t, err)
	_, err = harness.svc.ValidateContractualViolation(context.Background(), "inc-v5", domain.TicketTypeIncident, rules)
	require.NoError(t, err)

	assert.Equal(t, 1, harness.groups.listCalls)
}

func TestValidateDegradedGroupRule(t *testing.T) {
	ticket := breachedTicket("inc-v6")
	ticket.AssignmentGroup = domain.GroupRef{Value: "grp-1"}
	harness := newViolationHarness(t,
		&fakeTicketSource{snapshots: map[string]domain.TicketSnapshot{"inc-v6": ticket}},
		&fakeGroupRepo{listErr: assert.AnError},
		p1ResolutionSLA())

	verdict, err := harness.svc.ValidateContractualViolation(context.Background(), "inc-v6", domain.TicketTypeIncident,
		ValidationRules{CheckGroupClosure: true, StrictValidation: true})
	require.NoError(t, err)
	require.Len(t, verdict.Reasons, 1)

	reason := verdict.Reasons[0]
	assert.True(t, reason.IsCompliant)
	assert.Equal(t, true, reason.Details["degraded"])
	assert.False(t, verdict.IsViolated)
}

func TestValidateUpsertReplacesRecord(t *testing.T) {
	ticket := breachedTicket("inc-v7")
	ticket.ContractualViolation = ptrBool(true)
	harness := newViolationHarness(t,
		&fakeTicketSource{snapshots: map[string]domain.TicketSnapshot{"inc-v7": ticket}},
		&fakeGroupRepo{}, p1ResolutionSLA())

	_, err := harness.svc.ValidateContractualViolation(context.Background(), "inc-v7", domain.TicketTypeIncident, DefaultStrictRules())
	require.NoError(t, err)
	second, err := harness.svc.ValidateContractualViolation(context.Background(), "inc-v7", domain.TicketTypeIncident,
		ValidationRules{CheckViolationMarking: true, StrictValidation: true})
	require.NoError(t, err)

	require.Len(t, harness.violations.records, 1)
	stored := harness.violations.records["inc-v7"]
	assert.Equal(t, second.IsViolated, stored.IsViolated)
	assert.Len(t, stored.Reasons, 1)
}

func TestValidateInputErrors(t *testing.T) {
	harness := newViolationHarness(t, &fakeTicketSource{}, &fakeGroupRepo{}, nil)

	_, err := harness.svc.ValidateContractualViolation(context.Background(), "missing", domain.TicketTypeIncident, DefaultStrictRules())
	require.Error(t, err)
	assert.True(t, util.IsNotFound(err))

	_, err = harness.svc.ValidateContractualViolation(context.Background(), "x", domain.TicketType("problem"), DefaultStrictRules())
	assert.Error(t, err)
	assert.Empty(t, harness.violations.records)
}

func TestCombineOutcomes(t *testing.T) {
	compliant := domain.ViolationReason{IsCompliant: true}
	failed := domain.ViolationReason{IsCompliant: false}

	assert.False(t, combineOutcomes(nil, true))
	assert.False(t, combineOutcomes(nil, false))

	mixed := []domain.ViolationReason{failed, failed, compliant}
	assert.False(t, combineOutcomes(mixed, true))
	assert.True(t, combineOutcomes(mixed, false))

	allFailed := []domain.ViolationReason{failed, failed, failed}
	assert.True(t, combineOutcomes(allFailed, true))
	assert.True(t, combineOutcomes(allFailed, false))

	allCompliant := []domain.ViolationReason{compliant}
	assert.False(t, combineOutcomes(allCompliant, true))
	assert.False(t, combineOutcomes(allCompliant, false))
}

func TestGenerateViolationStatistics(t *testing.T) {
	harness := newViolationHarness(t, &fakeTicketSource{}, &fakeGroupRepo{}, nil)

	validatedAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	harness.violations.records["a"] = domain.ViolationVerdict{
		TicketSysID: "a", TicketType: domain.TicketTypeIncident,
		IsViolated: true, FinancialImpact: 1000,
		Reasons: []domain.ViolationReason{
			{Rule: domain.RuleSLABreach, Severity: domain.RuleSeverityCritical, IsCompliant: false},
			{Rule: domain.RuleViolationMarking, Severity: domain.RuleSeverityMedium, IsCompliant: false},
		},
		ValidatedAt: validatedAt,
	}
	harness.violations.records["b"] = domain.ViolationVerdict{
		TicketSysID: "b", TicketType: domain.TicketTypeChangeTask,
		IsViolated: true, FinancialImpact: 250.5,
		Reasons: []domain.ViolationReason{
			{Rule: domain.RuleGroupClosure, Severity: domain.RuleSeverityHigh, IsCompliant: false},
		},
		ValidatedAt: validatedAt,
	}
	harness.violations.records["c"] = domain.ViolationVerdict{
		TicketSysID: "c", TicketType: domain.TicketTypeIncident,
		ValidatedAt: validatedAt,
	}
	harness.violations.records["old"] = domain.ViolationVerdict{
		TicketSysID: "old", IsViolated: true,
		ValidatedAt: validatedAt.AddDate(0, -1, 0),
	}

	stats, err := harness.svc.GenerateViolationStatistics(context.Background(),
		validatedAt.AddDate(0, 0, -7), validatedAt.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalValidated)
	assert.Equal(t, 2, stats.TotalViolated)
	assert.Equal(t, 66.67, stats.ViolationRate)
	assert.Equal(t, 1, stats.ByTicketType[domain.TicketTypeIncident])
	assert.Equal(t, 1, stats.ByTicketType[domain.TicketTypeChangeTask])
	assert.Equal(t, 1, stats.BySeverity[domain.RuleSeverityCritical])
	assert.Equal(t, 1, stats.BySeverity[domain.RuleSeverityHigh])
	assert.Equal(t, 1, stats.BySeverity[domain.RuleSeverityMedium])
	assert.Equal(t, 1250.5, stats.TotalFinancialImpact)
}

func TestViolationHealthCheck(t *testing.T) {
	harness := newViolationHarness(t, &fakeTicketSource{}, &fakeGroupRepo{}, nil)
	assert.True(t, harness.svc.HealthCheck(context.Background()))

	harness.groups.pingErr = assert.AnError
	assert.False(t, harness.svc.HealthCheck(context.Background()))

	harness.violations.pingErr = assert.AnError
	assert.False(t, harness.svc.HealthCheck(context.Background()))
}
