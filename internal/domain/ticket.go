package domain

import "time"

// TicketType enumerates the ticket classes the engine evaluates.
type TicketType string

const (
	TicketTypeIncident    TicketType = "incident"
	TicketTypeChangeTask  TicketType = "change_task"
	TicketTypeCatalogTask TicketType = "sc_task"
)

// SupportedTicketTypes lists every type the engine accepts, in a fixed order.
var SupportedTicketTypes = []TicketType{
	TicketTypeIncident,
	TicketTypeChangeTask,
	TicketTypeCatalogTask,
}

// IsSupported reports whether the type is one the engine evaluates.
func (t TicketType) IsSupported() bool {
	for _, candidate := range SupportedTicketTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// GroupRef is a reference into the support-group catalog.
type GroupRef struct {
	Value        string
	DisplayValue string
}

// TicketSnapshot is the immutable per-evaluation view of one ticket,
// decoded once at the ticket-source boundary.
type TicketSnapshot struct {
	SysID                string
	Number               string
	Type                 TicketType
	State                string
	Priority             string // raw, type-specific encoding
	AssignmentGroup      GroupRef
	CreatedOn            time.Time
	UpdatedOn            time.Time
	FirstResponseAt      *time.Time
	ResolvedAt           *time.Time
	ClosedAt             *time.Time
	ContractualViolation *bool
}

// ResponseTimestamp returns the instant that closes the response-time clock,
// falling back to the last-update time when no explicit first response exists.
func (s *TicketSnapshot) ResponseTimestamp() *time.Time {
	if s.FirstResponseAt != nil {
		return s.FirstResponseAt
	}
	if !s.UpdatedOn.IsZero() && s.UpdatedOn.After(s.CreatedOn) {
		updated := s.UpdatedOn
		return &updated
	}
	return nil
}

// ResolutionTimestamp returns the instant that closes the resolution-time
// clock, preferring resolution over closure.
func (s *TicketSnapshot) ResolutionTimestamp() *time.Time {
	if s.ResolvedAt != nil {
		return s.ResolvedAt
	}
	return s.ClosedAt
}

// MarkedViolated reports whether the ticket carries an explicit
// contractual-violation flag set to true.
func (s *TicketSnapshot) MarkedViolated() bool {
	return s.ContractualViolation != nil && *s.ContractualViolation
}
