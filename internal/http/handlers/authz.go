package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"homestock/internal/domain"
	"homestock/internal/services"
	"homestock/internal/validate"
)

// RequireUser rejects requests without a logged-in session.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return fail(c, domain.Unauthorized("login required"))
		}
		u, err := auth.CurrentUser(c.UserContext(), sid)
		if err != nil || u == nil {
			return fail(c, domain.Unauthorized("login required"))
		}
		c.Locals("user", u)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// guard checks the current user's permission on a household.
func guard(c *fiber.Ctx, access *services.AccessService, homeID int64, write bool) error {
	u := currentUser(c)
	if u == nil {
		return domain.Unauthorized("login required")
	}
	if _, err := access.Require(c.UserContext(), u.ID, homeID, write); err != nil {
		return err
	}
	return nil
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

// pathID reads a positive numeric route parameter.
func pathID(c *fiber.Ctx, name string) (int64, bool) {
	return validate.ID(c.Params(name))
}

func errInvalidParam(c *fiber.Ctx, name string) error {
	return domain.Invalid("invalid %s %q", name, c.Params(name))
}
