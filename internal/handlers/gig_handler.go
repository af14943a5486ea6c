package handlers

import (
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kampusgig/backend/internal/models"
)

type GigHandler struct {
	DB *gorm.DB
}

func NewGigHandler(db *gorm.DB) *GigHandler {
	return &GigHandler{DB: db}
}

type CreateGigRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Budget      int64          `json:"budget"`
	Attachments datatypes.JSON `json:"attachments"`
}

func (h *GigHandler) Create(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req CreateGigRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Title) == "" {
		return fail(c, fiber.StatusBadRequest, "title is required")
	}
	if req.Budget <= 0 {
		return fail(c, fiber.StatusBadRequest, "budget must be positive")
	}

	gig := models.Gig{
		ID:          uuid.New(),
		OwnerID:     uid,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Budget:      req.Budget,
		Attachments: req.Attachments,
		Status:      models.GigStatusOpen,
	}
	if err := h.DB.Create(&gig).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to create gig")
	}

	return created(c, gig)
}

func (h *GigHandler) ListPublic(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	offset := (page - 1) * limit

	q := h.DB.Model(&models.Gig{}).Where("status = ?", models.GigStatusOpen)

	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	q.Count(&total)

	var gigs []models.Gig
	if err := q.Preload("Owner").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&gigs).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to fetch gigs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    gigs,
		"meta": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total_items": total,
			"total_pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func (h *GigHandler) GetDetail(c *fiber.Ctx) error {
	gigID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid gig ID")
	}

	var gig models.Gig
	if err := h.DB.Preload("Owner").First(&gig, "id = ?", gigID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "gig not found")
	}

	return ok(c, gig)
}

func (h *GigHandler) ListMine(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var gigs []models.Gig
	if err := h.DB.Where("owner_id = ?", uid).
		Order("created_at DESC").
		Find(&gigs).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to fetch gigs")
	}

	return ok(c, gigs)
}

func (h *GigHandler) Close(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	gigID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid gig ID")
	}

	var gig models.Gig
	if err := h.DB.First(&gig, "id = ?", gigID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "gig not found")
	}
	if gig.OwnerID != uid {
		return fail(c, fiber.StatusForbidden, "only the gig owner can close it")
	}
	if gig.Status != models.GigStatusOpen {
		return fail(c, fiber.StatusUnprocessableEntity, "only open gigs can be closed")
	}

	gig.Status = models.GigStatusClosed
	if err := h.DB.Save(&gig).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to close gig")
	}

	return ok(c, gig)
}
