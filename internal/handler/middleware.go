package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Sakin08/New-web-sub002/internal/auth"
)

// RequireAuth validates the bearer token and stores the viewer's user id in
// locals for the notification handlers.
func RequireAuth(jv *auth.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := auth.ParseBearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		uid, err := jv.Validate(token)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals("user_id", uid)
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	uid, _ := c.Locals("user_id").(string)
	return uid
}
