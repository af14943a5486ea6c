package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kampusgig/backend/internal/apperr"
)

func getUserUUID(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals("userId")
	if v == nil {
		return uuid.Nil, fmt.Errorf("unauthorized")
	}

	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		return uuid.Parse(t)
	case []byte:
		return uuid.ParseBytes(t)
	default:
		return uuid.Nil, fmt.Errorf("invalid userId type: %T", v)
	}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:     fiber.StatusNotFound,
	apperr.KindForbidden:    fiber.StatusForbidden,
	apperr.KindConflict:     fiber.StatusConflict,
	apperr.KindInvalidState: fiber.StatusUnprocessableEntity,
	apperr.KindValidation:   fiber.StatusBadRequest,
}

// respondErr maps core errors to the response envelope. Anything without a
// kind is a plain 500.
func respondErr(c *fiber.Ctx, err error) error {
	if status, ok := kindStatus[apperr.KindOf(err)]; ok {
		return fail(c, status, err.Error())
	}
	return fail(c, fiber.StatusInternalServerError, "internal server error")
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
