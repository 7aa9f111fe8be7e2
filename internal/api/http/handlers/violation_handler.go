package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-compliance-service/internal/api/dto"
	"github.com/spec-kit/sla-compliance-service/internal/domain"
	"github.com/spec-kit/sla-compliance-service/internal/service"
	apperrors "github.com/spec-kit/sla-compliance-service/pkg/util"
)

// ViolationHandler exposes the violation rule engine.
type ViolationHandler struct {
	service *service.ViolationService
}

// NewViolationHandler constructs handler.
func NewViolationHandler(violationService *service.ViolationService) *ViolationHandler {
	return &ViolationHandler{service: violationService}
}

// Validate POST /api/v1/violations/:id/validate.
//
// The request body selects rules and the combination policy; absent rule
// toggles default to enabled and an absent strict flag defaults to lenient,
// the posture dashboards consume.
func (h *ViolationHandler) Validate(c *fiber.Ctx) error {
	rawType := c.Query("type")
	if rawType == "" {
		return apperrors.NewValidationError("type query parameter required", nil)
	}

	var req dto.ValidateViolationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	rules := service.DefaultLenientRules()
	if req.CheckGroupClosure != nil {
		rules.CheckGroupClosure = *req.CheckGroupClosure
	}
	if req.CheckSLABreach != nil {
		rules.CheckSLABreach = *req.CheckSLABreach
	}
	if req.CheckViolationMarking != nil {
		rules.CheckViolationMarking = *req.CheckViolationMarking
	}
	if req.StrictValidation != nil {
		rules.StrictValidation = *req.StrictValidation
	}

	verdict, err := h.service.ValidateContractualViolation(c.UserContext(), c.Params("id"), domain.TicketType(rawType), rules)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": verdict})
}

// Statistics GET /api/v1/violations/statistics.
func (h *ViolationHandler) Statistics(c *fiber.Ctx) error {
	start, end, err := parseWindow(c)
	if err != nil {
		return err
	}
	stats, err := h.service.GenerateViolationStatistics(c.UserContext(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
