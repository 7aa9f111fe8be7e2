package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-compliance-service/internal/config"
	"github.com/spec-kit/sla-compliance-service/internal/domain"
	"github.com/spec-kit/sla-compliance-service/internal/schedule"
)

type fakeSLARepo struct {
	configs   []domain.SLAConfiguration
	listErr   error
	pingErr   error
	listCalls int
}

func (f *fakeSLARepo) ListAll(context.Context) ([]domain.SLAConfiguration, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.configs, nil
}

func (f *fakeSLARepo) ListByTicketType(_ context.Context, ticketType domain.TicketType) ([]domain.SLAConfiguration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.SLAConfiguration
	for _, cfg := range f.configs {
		if cfg.TicketType == ticketType {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (f *fakeSLARepo) Ping(context.Context) error { return f.pingErr }

type fakeTicketSource struct {
	snapshots map[string]domain.TicketSnapshot
	getErr    error
	listErr   error
	pingErr   error
}

func (f *fakeTicketSource) GetSnapshot(_ context.Context, sysID string, ticketType domain.TicketType) (*domain.TicketSnapshot, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	snapshot, ok := f.snapshots[sysID]
	if !ok || snapshot.Type != ticketType {
		return nil, pgx.ErrNoRows
	}
	copied := snapshot
	return &copied, nil
}

func (f *fakeTicketSource) ListCreatedBetween(_ context.Context, ticketType domain.TicketType, start, end time.Time) ([]domain.TicketSnapshot, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.TicketSnapshot
	for _, snapshot := range f.snapshots {
		if snapshot.Type != ticketType {
			continue
		}
		if snapshot.CreatedOn.Before(start) || snapshot.CreatedOn.After(end) {
			continue
		}
		out = append(out, snapshot)
	}
	return out, nil
}

func (f *fakeTicketSource) Ping(context.Context) error { return f.pingErr }

type fakeGroupRepo struct {
	groups    []domain.SupportGroup
	listErr   error
	pingErr   error
	listCalls int
}

func (f *fakeGroupRepo) ListAll(context.Context) ([]domain.SupportGroup, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.groups, nil
}

func (f *fakeGroupRepo) Ping(context.Context) error { return f.pingErr }

type fakeViolationRepo struct {
	records   map[string]domain.ViolationVerdict
	upsertErr error
	listErr   error
	pingErr   error
}

func newFakeViolationRepo() *fakeViolationRepo {
	return &fakeViolationRepo{records: make(map[string]domain.ViolationVerdict)}
}

func (f *fakeViolationRepo) Upsert(_ context.Context, verdict *domain.ViolationVerdict) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.records[verdict.TicketSysID] = *verdict
	return nil
}

func (f *fakeViolationRepo) ListProcessedBetween(_ context.Context, start, end time.Time) ([]domain.ViolationVerdict, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.ViolationVerdict
	for _, verdict := range f.records {
		if verdict.ValidatedAt.Before(start) || verdict.ValidatedAt.After(end) {
			continue
		}
		out = append(out, verdict)
	}
	return out, nil
}

func (f *fakeViolationRepo) Ping(context.Context) error { return f.pingErr }

// testCalculator is the Mon-Fri 08:00-17:00 UTC schedule.
func testCalculator(t *testing.T) *schedule.BusinessHoursCalculator {
	t.Helper()
	window := schedule.DayWindow{StartMinute: 8 * 60, EndMinute: 17 * 60}
	cfg, err := schedule.NewConfig(map[time.Weekday]schedule.DayWindow{
		time.Monday:    window,
		time.Tuesday:   window,
		time.Wednesday: window,
		time.Thursday:  window,
		time.Friday:    window,
	}, nil, "UTC")
	require.NoError(t, err)
	return schedule.NewBusinessHoursCalculator(cfg)
}

func testSLAConfigService(t *testing.T, repo *fakeSLARepo) *SLAConfigService {
	t.Helper()
	svc := NewSLAConfigService(SLAConfigDependencies{Repo: repo, Logger: zap.NewNop()})
	require.NoError(t, svc.RefreshCache(context.Background()))
	return svc
}

func testSLAConfig() config.SLAConfig {
	return config.SLAConfig{
		GroupCacheTTLMinutes:        10,
		DashboardCacheTTLSec:        60,
		RecentBreachLimit:           25,
		HighComplianceThreshold:     80,
		CriticalComplianceThreshold: 60,
		PenaltyAlertThreshold:       2.0,
		ContractMonthlyValue:        10000,
	}
}

func slaFixture(ticketType domain.TicketType, metric domain.MetricType, priority domain.SLAPriority, hours, penalty float64, businessOnly bool) domain.SLAConfiguration {
	return domain.SLAConfiguration{
		ID:                string(ticketType) + "-" + string(metric) + "-" + string(priority),
		TicketType:        ticketType,
		MetricType:        metric,
		Priority:          priority,
		SLAHours:          hours,
		PenaltyPercentage: penalty,
		BusinessHoursOnly: businessOnly,
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func ptrBool(b bool) *bool { return &b }
