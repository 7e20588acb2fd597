package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "homestock/internal/log"
	"homestock/internal/services"
	"homestock/internal/validate"
)

type HomeHandler struct {
	Homes  *services.HomeService
	Access *services.AccessService
}

// GET /homes
func (h *HomeHandler) List(c *fiber.Ctx) error {
	homes, err := h.Homes.ListForUser(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(homes)
}

// POST /homes
func (h *HomeHandler) Create(c *fiber.Ctx) error {
	var in struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return badRequest(c, "name", "enter a home name up to 100 characters")
	}
	home, err := h.Homes.Create(c.UserContext(), name, currentUser(c).ID)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "home.create", map[string]any{"home_id": home.ID})
	return c.Status(fiber.StatusCreated).JSON(home)
}

// GET /homes/:homeId
func (h *HomeHandler) Get(c *fiber.Ctx) error {
	homeID, ok := pathID(c, "homeId")
	if !ok {
		return badRequest(c, "homeId", "invalid homeId")
	}
	if err := guard(c, h.Access, homeID, false); err != nil {
		return fail(c, err)
	}
	home, err := h.Homes.Get(c.UserContext(), homeID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(home)
}

// GET /homes/:homeId/members (owner only)
func (h *HomeHandler) Members(c *fiber.Ctx) error {
	homeID, ok := pathID(c, "homeId")
	if !ok {
		return badRequest(c, "homeId", "invalid homeId")
	}
	if err := h.Access.RequireOwner(c.UserContext(), currentUser(c).ID, homeID); err != nil {
		return fail(c, err)
	}
	perms, err := h.Access.Members(c.UserContext(), homeID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(perms)
}

// DELETE /homes/:homeId (owner only)
func (h *HomeHandler) Delete(c *fiber.Ctx) error {
	homeID, ok := pathID(c, "homeId")
	if !ok {
		return badRequest(c, "homeId", "invalid homeId")
	}
	if err := h.Access.RequireOwner(c.UserContext(), currentUser(c).ID, homeID); err != nil {
		return fail(c, err)
	}
	if err := h.Homes.Delete(c.UserContext(), homeID); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "home.delete", map[string]any{"home_id": homeID})
	return c.SendStatus(fiber.StatusNoContent)
}
