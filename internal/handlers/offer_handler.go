package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kampusgig/backend/internal/models"
	"github.com/kampusgig/backend/internal/realtime"
	"github.com/kampusgig/backend/internal/services/offers"
)

type OfferHandler struct {
	Offers *offers.Service
	Hub    *realtime.Hub
}

func NewOfferHandler(offerService *offers.Service, hub *realtime.Hub) *OfferHandler {
	return &OfferHandler{Offers: offerService, Hub: hub}
}

type CreateOfferRequest struct {
	Message      string `json:"message"`
	Attachment   string `json:"attachment"`
	Amount       int64  `json:"amount"`        // proposal only
	DeliveryDays int    `json:"delivery_days"` // proposal only
}

func (h *OfferHandler) create(c *fiber.Ctx, p offers.VariantPolicy) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	gigID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid gig ID")
	}

	var req CreateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	offer, err := h.Offers.Create(uid, gigID, p, offers.CreateInput{
		Message:      req.Message,
		Attachment:   req.Attachment,
		Amount:       req.Amount,
		DeliveryDays: req.DeliveryDays,
	})
	if err != nil {
		return respondErr(c, err)
	}

	return created(c, offer)
}

// Apply creates an application-variant offer against the gig's fixed budget.
func (h *OfferHandler) Apply(c *fiber.Ctx) error {
	return h.create(c, offers.ApplicationPolicy)
}

// Propose creates a proposal-variant offer with the student's own terms.
func (h *OfferHandler) Propose(c *fiber.Ctx) error {
	return h.create(c, offers.ProposalPolicy)
}

type AcceptOfferRequest struct {
	StartDate string `json:"start_date"` // ISO format: 2026-09-01
	DueDate   string `json:"due_date"`
}

func (h *OfferHandler) Accept(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid offer ID")
	}

	var req AcceptOfferRequest
	_ = c.BodyParser(&req)

	var terms offers.AcceptTerms
	if t, err := time.Parse("2006-01-02", req.StartDate); err == nil {
		terms.StartDate = t
	}
	if t, err := time.Parse("2006-01-02", req.DueDate); err == nil {
		terms.DueDate = t
	}

	eng, err := h.Offers.Accept(uid, offerID, terms)
	if err != nil {
		return respondErr(c, err)
	}

	h.Hub.SendToParties(eng.PayerID, eng.WorkerID, fiber.Map{
		"type":       "engagement_created",
		"engagement": eng,
	})

	return created(c, eng)
}

func (h *OfferHandler) Reject(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid offer ID")
	}

	offer, err := h.Offers.Reject(uid, offerID)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, offer)
}

func (h *OfferHandler) Withdraw(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid offer ID")
	}

	offer, err := h.Offers.Withdraw(uid, offerID)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, offer)
}

func (h *OfferHandler) ListByGig(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	gigID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid gig ID")
	}

	list, err := h.Offers.ListByGig(uid, gigID)
	if err != nil {
		return respondErr(c, err)
	}

	out := make([]models.Offer, 0, len(list))
	out = append(out, list...)
	return ok(c, out)
}
