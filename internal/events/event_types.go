package events

import (
	"time"

	"github.com/spec-kit/sla-compliance-service/internal/domain"
)

// EventType identifies engine events.
type EventType string

const (
	EventSLABreachDetected EventType = "sla.breach_detected"
	EventViolationRecorded EventType = "violation.recorded"
	EventSLACacheRefreshed EventType = "sla.cache_refreshed"
)

// Event is the envelope published through the dispatcher. The excluded
// notification fan-out system attaches here.
type Event struct {
	ID        string
	Type      EventType
	TicketID  string
	Timestamp time.Time
	Payload   any
}

// SLABreachPayload describes a detected metric breach.
type SLABreachPayload struct {
	TicketNumber string
	TicketType   domain.TicketType
	MetricType   domain.MetricType
	BreachHours  float64
	Penalty      float64
}

// ViolationRecordedPayload describes a persisted violated verdict.
type ViolationRecordedPayload struct {
	TicketNumber    string
	TicketType      domain.TicketType
	Strict          bool
	Penalty         float64
	FinancialImpact float64
}

// CacheRefreshedPayload describes a completed SLA cache reload.
type CacheRefreshedPayload struct {
	Configurations int
}
