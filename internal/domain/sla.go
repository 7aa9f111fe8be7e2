package domain

import "time"

// MetricType identifies which SLA clock a threshold or result refers to.
type MetricType string

const (
	MetricResponseTime   MetricType = "response_time"
	MetricResolutionTime MetricType = "resolution_time"
)

// SLAConfiguration is one contractual threshold row, identified by the
// (ticket type, metric type, priority) triple.
type SLAConfiguration struct {
	ID                string
	TicketType        TicketType
	MetricType        MetricType
	Priority          SLAPriority
	SLAHours          float64
	PenaltyPercentage float64
	BusinessHoursOnly bool
	Description       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SLAKey is the cache key for configuration lookups.
type SLAKey struct {
	TicketType TicketType
	MetricType MetricType
	Priority   SLAPriority
}

// Key returns the lookup key for this configuration.
func (c *SLAConfiguration) Key() SLAKey {
	return SLAKey{TicketType: c.TicketType, MetricType: c.MetricType, Priority: c.Priority}
}

// SLAStatistics aggregates counts over the loaded configuration set.
type SLAStatistics struct {
	TotalConfigurations int                `json:"total_configurations"`
	ByTicketType        map[TicketType]int `json:"by_ticket_type"`
	ByMetricType        map[MetricType]int `json:"by_metric_type"`
	BusinessHoursOnly   int                `json:"business_hours_only"`
	AverageSLAHours     float64            `json:"average_sla_hours"`
	AveragePenalty      float64            `json:"average_penalty"`
	RefreshedAt         time.Time          `json:"refreshed_at"`
}

// ComplianceResult is one metric's outcome for one ticket. Produced fresh
// on every calculation and never mutated afterwards.
type ComplianceResult struct {
	MetricType        MetricType `json:"metric_type"`
	SLAHours          float64    `json:"sla_hours"`
	ActualHours       float64    `json:"actual_hours"`
	IsCompliant       bool       `json:"is_compliant"`
	BreachHours       float64    `json:"breach_hours"`
	PenaltyPercentage float64    `json:"penalty_percentage"`
	BusinessHoursOnly bool       `json:"business_hours_only"`
	CalculatedAt      time.Time  `json:"calculated_at"`
}

// TicketSLAStatus aggregates the per-metric results for one ticket.
type TicketSLAStatus struct {
	TicketSysID            string            `json:"ticket_sys_id"`
	TicketNumber           string            `json:"ticket_number"`
	TicketType             TicketType        `json:"ticket_type"`
	Priority               SLAPriority       `json:"priority"`
	Response               *ComplianceResult `json:"response,omitempty"`
	Resolution             *ComplianceResult `json:"resolution,omitempty"`
	OverallCompliance      bool              `json:"overall_compliance"`
	TotalPenaltyPercentage float64           `json:"total_penalty_percentage"`
}

// Results returns the present per-metric results.
func (s *TicketSLAStatus) Results() []*ComplianceResult {
	results := make([]*ComplianceResult, 0, 2)
	if s.Response != nil {
		results = append(results, s.Response)
	}
	if s.Resolution != nil {
		results = append(results, s.Resolution)
	}
	return results
}

// SLAMetrics is a time-windowed aggregation over many tickets.
type SLAMetrics struct {
	TicketType             TicketType                  `json:"ticket_type"`
	WindowStart            time.Time                   `json:"window_start"`
	WindowEnd              time.Time                   `json:"window_end"`
	TotalTickets           int                         `json:"total_tickets"`
	CompliantTickets       int                         `json:"compliant_tickets"`
	BreachedTickets        int                         `json:"breached_tickets"`
	CompliancePercentage   float64                     `json:"compliance_percentage"`
	TotalPenaltyPercentage float64                     `json:"total_penalty_percentage"`
	AvgResponseHours       float64                     `json:"avg_response_hours"`
	AvgResolutionHours     float64                     `json:"avg_resolution_hours"`
	ByPriority             map[SLAPriority]*SLAMetrics `json:"by_priority,omitempty"`
}

// AlertSeverity grades dashboard alerts.
type AlertSeverity string

const (
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

// SLAAlert flags a degraded compliance condition on the dashboard.
type SLAAlert struct {
	Severity AlertSeverity `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Value    float64       `json:"value"`
}

// SLADashboardData is the composed dashboard payload across ticket types.
type SLADashboardData struct {
	WindowStart          time.Time                  `json:"window_start"`
	WindowEnd            time.Time                  `json:"window_end"`
	TotalTickets         int                        `json:"total_tickets"`
	CompliantTickets     int                        `json:"compliant_tickets"`
	BreachedTickets      int                        `json:"breached_tickets"`
	CompliancePercentage float64                    `json:"compliance_percentage"`
	TotalPenalty         float64                    `json:"total_penalty"`
	ByTicketType         map[TicketType]*SLAMetrics `json:"by_ticket_type"`
	RecentBreaches       []TicketSLAStatus          `json:"recent_breaches"`
	Alerts               []SLAAlert                 `json:"alerts"`
	GeneratedAt          time.Time                  `json:"generated_at"`
}
