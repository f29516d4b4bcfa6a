package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
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

// getAuth returns the caller's id and role set by the JWT middleware.
func getAuth(c *fiber.Ctx) (uuid.UUID, models.Role, error) {
	uid, err := getUserUUID(c)
	if err != nil {
		return uuid.Nil, "", apperr.New(apperr.CodeUnauthorized, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)
	return uid, models.Role(role), nil
}

// viewerID is the caller on routes where authentication is optional.
func viewerID(c *fiber.Ctx) uuid.UUID {
	uid, err := getUserUUID(c)
	if err != nil {
		return uuid.Nil
	}
	return uid
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Invalid("Invalid " + name)
	}
	return id, nil
}
