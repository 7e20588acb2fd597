package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "homestock/internal/log"
	"homestock/internal/services"
	"homestock/internal/validate"
)

type InviteHandler struct {
	Invites *services.InviteService
	Access  *services.AccessService
}

// POST /invites (owner only)
func (h *InviteHandler) Create(c *fiber.Ctx) error {
	var in struct {
		HomeID int64  `json:"homeId"`
		Type   string `json:"type"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	typ, ok := validate.InviteType(in.Type)
	if !ok {
		return badRequest(c, "type", "type must be read or read-write")
	}
	u := currentUser(c)
	if err := h.Access.RequireOwner(c.UserContext(), u.ID, in.HomeID); err != nil {
		return fail(c, err)
	}
	link, err := h.Invites.Create(c.UserContext(), in.HomeID, typ, u.ID)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "invite.create", map[string]any{"home_id": in.HomeID, "type": typ})
	return c.Status(fiber.StatusCreated).JSON(link)
}

// POST /invites/:code/redeem
func (h *InviteHandler) Redeem(c *fiber.Ctx) error {
	code, ok := validate.Code(c.Params("code"))
	if !ok {
		return badRequest(c, "code", "invalid invite code")
	}
	perm, err := h.Invites.Redeem(c.UserContext(), code, currentUser(c).ID)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "invite.redeem", map[string]any{"home_id": perm.HomeID, "type": perm.Type})
	return c.JSON(perm)
}
