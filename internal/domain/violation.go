package domain

import "time"

// ViolationRule names the three independently toggleable compliance rules.
type ViolationRule string

const (
	RuleGroupClosure     ViolationRule = "group_closure"
	RuleSLABreach        ViolationRule = "sla_breach"
	RuleViolationMarking ViolationRule = "violation_marking"
)

// RuleSeverity grades a single rule outcome for statistics breakdowns.
type RuleSeverity string

const (
	RuleSeverityCritical RuleSeverity = "critical"
	RuleSeverityHigh     RuleSeverity = "high"
	RuleSeverityMedium   RuleSeverity = "medium"
)

// ViolationReason is one rule's outcome inside a verdict.
type ViolationReason struct {
	Rule        ViolationRule  `json:"rule"`
	Description string         `json:"description"`
	IsCompliant bool           `json:"is_compliant"`
	Severity    RuleSeverity   `json:"severity"`
	Details     map[string]any `json:"details,omitempty"`
}

// ViolationVerdict is the per-ticket output of the rule engine.
type ViolationVerdict struct {
	TicketSysID       string            `json:"ticket_sys_id"`
	TicketNumber      string            `json:"ticket_number"`
	TicketType        TicketType        `json:"ticket_type"`
	IsViolated        bool              `json:"is_violated"`
	StrictValidation  bool              `json:"strict_validation"`
	Reasons           []ViolationReason `json:"reasons"`
	PenaltyPercentage float64           `json:"penalty_percentage"`
	FinancialImpact   float64           `json:"financial_impact"`
	ValidatedAt       time.Time         `json:"validated_at"`
}

// ViolationStatistics summarizes persisted verdicts over a window.
type ViolationStatistics struct {
	WindowStart          time.Time            `json:"window_start"`
	WindowEnd            time.Time            `json:"window_end"`
	TotalValidated       int                  `json:"total_validated"`
	TotalViolated        int                  `json:"total_violated"`
	ViolationRate        float64              `json:"violation_rate"`
	ByTicketType         map[TicketType]int   `json:"by_ticket_type"`
	BySeverity           map[RuleSeverity]int `json:"by_severity"`
	TotalFinancialImpact float64              `json:"total_financial_impact"`
}

// SupportGroup is one entry of the support-group catalog.
type SupportGroup struct {
	SysID       string   `json:"sys_id"`
	Name        string   `json:"name"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Owner       string   `json:"owner"`
	Temperature float64  `json:"temperature"`
}
