package dto

import (
	"time"

	"github.com/spec-kit/sla-compliance-service/internal/domain"
)

// SLAConfigurationResponse is one threshold row as exposed over HTTP.
type SLAConfigurationResponse struct {
	ID                string             `json:"id"`
	TicketType        domain.TicketType  `json:"ticket_type"`
	MetricType        domain.MetricType  `json:"metric_type"`
	Priority          domain.SLAPriority `json:"priority"`
	SLAHours          float64            `json:"sla_hours"`
	PenaltyPercentage float64            `json:"penalty_percentage"`
	BusinessHoursOnly bool               `json:"business_hours_only"`
	Description       string             `json:"description"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// SLAConfigurationFromDomain maps a domain configuration to its response.
func SLAConfigurationFromDomain(cfg *domain.SLAConfiguration) SLAConfigurationResponse {
	return SLAConfigurationResponse{
		ID:                cfg.ID,
		TicketType:        cfg.TicketType,
		MetricType:        cfg.MetricType,
		Priority:          cfg.Priority,
		SLAHours:          cfg.SLAHours,
		PenaltyPercentage: cfg.PenaltyPercentage,
		BusinessHoursOnly: cfg.BusinessHoursOnly,
		Description:       cfg.Description,
		UpdatedAt:         cfg.UpdatedAt,
	}
}
