package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-compliance-service/internal/api/dto"
	"github.com/spec-kit/sla-compliance-service/internal/domain"
	"github.com/spec-kit/sla-compliance-service/internal/service"
	apperrors "github.com/spec-kit/sla-compliance-service/pkg/util"
)

// SLAHandler exposes SLA configuration access.
type SLAHandler struct {
	service *service.SLAConfigService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAConfigService) *SLAHandler {
	return &SLAHandler{service: slaService}
}

// ListConfigurations GET /api/v1/sla/configurations.
func (h *SLAHandler) ListConfigurations(c *fiber.Ctx) error {
	var configs []domain.SLAConfiguration
	if raw := c.Query("ticket_type"); raw != "" {
		ticketType := domain.TicketType(raw)
		if !ticketType.IsSupported() {
			return apperrors.NewUnsupportedTicketType(raw)
		}
		configs = h.service.GetSLAsForTicketType(ticketType)
	} else {
		configs = h.service.GetAllSLAs()
	}

	items := make([]dto.SLAConfigurationResponse, 0, len(configs))
	for i := range configs {
		items = append(items, dto.SLAConfigurationFromDomain(&configs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetConfiguration GET /api/v1/sla/configurations/lookup.
func (h *SLAHandler) GetConfiguration(c *fiber.Ctx) error {
	rawType := c.Query("ticket_type")
	ticketType := domain.TicketType(rawType)
	if !ticketType.IsSupported() {
		return apperrors.NewUnsupportedTicketType(rawType)
	}
	priority := domain.SLAPriority(c.Query("priority"))
	metric := domain.MetricType(c.Query("metric_type"))
	if priority == "" || metric == "" {
		return apperrors.NewValidationError("priority and metric_type required", nil)
	}

	cfg := h.service.GetSLA(ticketType, priority, metric)
	if cfg == nil {
		// no SLA applies; absence is data, not an error
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": dto.SLAConfigurationFromDomain(cfg)})
}

// Statistics GET /api/v1/sla/statistics.
func (h *SLAHandler) Statistics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.Statistics()})
}

// Refresh POST /api/v1/sla/refresh.
func (h *SLAHandler) Refresh(c *fiber.Ctx) error {
	if err := h.service.RefreshCache(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.service.Statistics()})
}
