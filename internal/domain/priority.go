package domain

// SLAPriority is the canonical priority domain SLA thresholds are keyed by.
type SLAPriority string

const (
	SLAPriorityP1 SLAPriority = "P1"
	SLAPriorityP2 SLAPriority = "P2"
	SLAPriorityP3 SLAPriority = "P3"
	SLAPriorityP4 SLAPriority = "P4"
)

// Raw priority encodings differ per ticket type: incidents use "1".."5",
// change tasks "1".."4", catalog tasks named urgencies. The mapping is
// closed — anything outside it is reported as unmapped, never defaulted.
var priorityMappings = map[TicketType]map[string]SLAPriority{
	TicketTypeIncident: {
		"1": SLAPriorityP1,
		"2": SLAPriorityP2,
		"3": SLAPriorityP3,
		"4": SLAPriorityP4,
		"5": SLAPriorityP4,
	},
	TicketTypeChangeTask: {
		"1": SLAPriorityP1,
		"2": SLAPriorityP2,
		"3": SLAPriorityP3,
		"4": SLAPriorityP4,
	},
	TicketTypeCatalogTask: {
		"Normal":   SLAPriorityP3,
		"Standard": SLAPriorityP4,
	},
}

// MapPriority translates a raw, type-specific priority value into the
// canonical SLAPriority domain. The second return is false when the value
// has no mapping for the given ticket type.
func MapPriority(ticketType TicketType, raw string) (SLAPriority, bool) {
	mapping, ok := priorityMappings[ticketType]
	if !ok {
		return "", false
	}
	priority, ok := mapping[raw]
	return priority, ok
}
