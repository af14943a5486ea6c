package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/kampusgig/backend/internal/models"
)

type NotificationHandler struct {
	DB *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{DB: db}
}

func (h *NotificationHandler) ListMine(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var list []models.Notification
	if err := h.DB.Where("user_id = ?", uid).
		Order("created_at DESC").
		Limit(50).
		Find(&list).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to fetch notifications")
	}
	return ok(c, list)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", uid, false).
		Update("is_read", true).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to update notifications")
	}
	return ok(c, fiber.Map{"message": "all read"})
}
