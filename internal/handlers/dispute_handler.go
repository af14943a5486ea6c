package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kampusgig/backend/internal/models"
	"github.com/kampusgig/backend/internal/services/dispute"
)

type DisputeHandler struct {
	Disputes *dispute.Service
}

func NewDisputeHandler(disputeService *dispute.Service) *DisputeHandler {
	return &DisputeHandler{Disputes: disputeService}
}

// List is the administrative review feed, most recent first.
func (h *DisputeHandler) List(c *fiber.Ctx) error {
	list, err := h.Disputes.List()
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, list)
}

type UpdateDisputeRequest struct {
	Status     string `json:"status"` // under_review / resolved / escalated
	Resolution string `json:"resolution"`
}

func (h *DisputeHandler) UpdateStatus(c *fiber.Ctx) error {
	disputeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid dispute ID")
	}

	var req UpdateDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	d, err := h.Disputes.UpdateStatus(disputeID, models.DisputeStatus(req.Status), req.Resolution)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, d)
}
