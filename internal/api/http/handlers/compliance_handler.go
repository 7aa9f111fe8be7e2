package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-compliance-service/internal/domain"
	"github.com/spec-kit/sla-compliance-service/internal/service"
	apperrors "github.com/spec-kit/sla-compliance-service/pkg/util"
)

// ComplianceHandler exposes per-ticket and aggregate compliance access.
type ComplianceHandler struct {
	service *service.ComplianceService
}

// NewComplianceHandler constructs handler.
func NewComplianceHandler(complianceService *service.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{service: complianceService}
}

// GetTicketSLA GET /api/v1/compliance/tickets/:id.
func (h *ComplianceHandler) GetTicketSLA(c *fiber.Ctx) error {
	rawType := c.Query("type")
	if rawType == "" {
		return apperrors.NewValidationError("type query parameter required", nil)
	}

	status, err := h.service.CalculateTicketSLA(c.UserContext(), c.Params("id"), domain.TicketType(rawType))
	if err != nil {
		return err
	}
	if status == nil {
		return apperrors.NewNotFound("ticket sla status", map[string]any{
			"ticket_id": c.Params("id"),
		})
	}
	return c.JSON(fiber.Map{"data": status})
}

// Metrics GET /api/v1/compliance/metrics.
func (h *ComplianceHandler) Metrics(c *fiber.Ctx) error {
	start, end, err := parseWindow(c)
	if err != nil {
		return err
	}

	var types []domain.TicketType
	if raw := c.Query("type"); raw != "" {
		types = append(types, domain.TicketType(raw))
	}
	metrics, err := h.service.GenerateSLAMetrics(c.UserContext(), start, end, types...)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics})
}

// Dashboard GET /api/v1/compliance/dashboard.
func (h *ComplianceHandler) Dashboard(c *fiber.Ctx) error {
	start, end, err := parseWindow(c)
	if err != nil {
		return err
	}
	dashboard, err := h.service.GetDashboardData(c.UserContext(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboard})
}

// parseWindow reads start/end query params (RFC3339), defaulting to the
// trailing 30 days.
func parseWindow(c *fiber.Ctx) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("invalid start timestamp", map[string]any{"start": raw})
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("invalid end timestamp", map[string]any{"end": raw})
		}
		end = parsed
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("end before start", nil)
	}
	return start, end, nil
}
