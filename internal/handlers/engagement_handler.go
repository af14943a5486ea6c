package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kampusgig/backend/internal/models"
	"github.com/kampusgig/backend/internal/realtime"
	"github.com/kampusgig/backend/internal/services/engagement"
)

type EngagementHandler struct {
	Engagements *engagement.Service
	Hub         *realtime.Hub
}

func NewEngagementHandler(engagementService *engagement.Service, hub *realtime.Hub) *EngagementHandler {
	return &EngagementHandler{Engagements: engagementService, Hub: hub}
}

func (h *EngagementHandler) pushStatus(eng *models.Engagement) {
	h.Hub.SendToParties(eng.PayerID, eng.WorkerID, fiber.Map{
		"type":       "engagement_status_update",
		"engagement": eng,
	})
}

func (h *EngagementHandler) Get(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	engID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid engagement ID")
	}

	eng, err := h.Engagements.Get(engID, uid)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, eng)
}

func (h *EngagementHandler) ListMine(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	list, err := h.Engagements.ListForUser(uid)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, list)
}

// Deposit funds a contract-variant engagement.
func (h *EngagementHandler) Deposit(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	engID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid engagement ID")
	}

	eng, err := h.Engagements.Deposit(engID, uid)
	if err != nil {
		return respondErr(c, err)
	}

	h.pushStatus(eng)
	return ok(c, eng)
}

type SubmitWorkRequest struct {
	URL   string `json:"url"`
	Notes string `json:"notes"`
}

func (h *EngagementHandler) SubmitWork(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	engID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid engagement ID")
	}

	var req SubmitWorkRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.URL) == "" {
		return fail(c, fiber.StatusBadRequest, "deliverable url is required")
	}

	eng, err := h.Engagements.SubmitWork(engID, uid, req.URL, req.Notes)
	if err != nil {
		return respondErr(c, err)
	}

	h.pushStatus(eng)
	return ok(c, eng)
}

func (h *EngagementHandler) ApproveWork(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	engID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid engagement ID")
	}

	eng, err := h.Engagements.ApproveWork(engID, uid)
	if err != nil {
		return respondErr(c, err)
	}

	h.pushStatus(eng)
	return ok(c, eng)
}

func (h *EngagementHandler) Cancel(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	engID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid engagement ID")
	}

	eng, err := h.Engagements.Cancel(engID, uid)
	if err != nil {
		return respondErr(c, err)
	}

	h.pushStatus(eng)
	return ok(c, eng)
}

type RaiseDisputeRequest struct {
	Description string `json:"description"`
}

func (h *EngagementHandler) RaiseDispute(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	engID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid engagement ID")
	}

	var req RaiseDisputeRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Description) == "" {
		return fail(c, fiber.StatusBadRequest, "dispute description is required")
	}

	eng, err := h.Engagements.RaiseDispute(engID, uid, req.Description)
	if err != nil {
		return respondErr(c, err)
	}

	h.pushStatus(eng)
	return ok(c, eng)
}
