package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"homestock/internal/domain"
	"homestock/internal/log"
	"homestock/internal/services"
	"homestock/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type credentials struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return badRequest(c, "email", "enter a valid email")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return badRequest(c, "name", "enter a name up to 100 characters")
	}
	if !validate.Password(in.Password) {
		return badRequest(c, "password", "password needs 8-72 characters with upper, lower, digit and symbol")
	}
	u, err := h.Auth.Register(c.UserContext(), email, name, in.Password)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(u)
}

// POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return fail(c, services.ErrBadCreds)
	}
	u, err := h.Auth.Login(c.UserContext(), sid, email, in.Password)
	if err != nil {
		if domain.IsCode(err, domain.CodeUnauthorized) {
			log.Security(c, "auth.login.fail", map[string]any{"email": email})
		}
		return fail(c, err)
	}
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(u)
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(c.UserContext(), sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.SendStatus(fiber.StatusNoContent)
}
