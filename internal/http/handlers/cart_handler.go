package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "homestock/internal/log"
	"homestock/internal/services"
)

type CartHandler struct {
	Cart   *services.CartService
	Stock  *services.StockService
	Access *services.AccessService
}

// home parses :homeId and checks the caller's access to it.
func (h *CartHandler) home(c *fiber.Ctx, write bool) (int64, error) {
	homeID, ok := pathID(c, "homeId")
	if !ok {
		return 0, errInvalidParam(c, "homeId")
	}
	return homeID, guard(c, h.Access, homeID, write)
}

// GET /cart/:homeId
func (h *CartHandler) View(c *fiber.Ctx) error {
	homeID, err := h.home(c, false)
	if err != nil {
		return fail(c, err)
	}
	cv, err := h.Cart.GetOrCreate(c.UserContext(), homeID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(cv)
}

// POST /cart/:homeId/products
func (h *CartHandler) Add(c *fiber.Ctx) error {
	homeID, err := h.home(c, true)
	if err != nil {
		return fail(c, err)
	}
	var in struct {
		ProductID int64 `json:"productId"`
		Quantity  *int  `json:"quantity"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	cv, err := h.Cart.AddProduct(c.UserContext(), homeID, in.ProductID, qty)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "cart.add", map[string]any{"home_id": homeID, "product_id": in.ProductID, "quantity": qty})
	return c.JSON(cv)
}

// PATCH /cart/:homeId/products/:lineId
func (h *CartHandler) UpdateLine(c *fiber.Ctx) error {
	homeID, err := h.home(c, true)
	if err != nil {
		return fail(c, err)
	}
	lineID, ok := pathID(c, "lineId")
	if !ok {
		return badRequest(c, "lineId", "invalid lineId")
	}
	var patch services.LinePatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	cv, err := h.Cart.UpdateLine(c.UserContext(), homeID, lineID, patch)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "cart.update", map[string]any{"home_id": homeID, "line_id": lineID})
	return c.JSON(cv)
}

// DELETE /cart/:homeId/products/:lineId
func (h *CartHandler) RemoveLine(c *fiber.Ctx) error {
	homeID, err := h.home(c, true)
	if err != nil {
		return fail(c, err)
	}
	lineID, ok := pathID(c, "lineId")
	if !ok {
		return badRequest(c, "lineId", "invalid lineId")
	}
	cv, err := h.Cart.RemoveLine(c.UserContext(), homeID, lineID)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "cart.remove", map[string]any{"home_id": homeID, "line_id": lineID})
	return c.JSON(cv)
}

// DELETE /cart/:homeId?onlyChecked=
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	homeID, err := h.home(c, true)
	if err != nil {
		return fail(c, err)
	}
	onlyChecked := c.QueryBool("onlyChecked", false)
	cv, err := h.Cart.Clear(c.UserContext(), homeID, onlyChecked)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "cart.clear", map[string]any{"home_id": homeID, "only_checked": onlyChecked})
	return c.JSON(cv)
}

// GET /cart/:homeId/suggestions
func (h *CartHandler) Suggestions(c *fiber.Ctx) error {
	homeID, err := h.home(c, false)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.Stock.Suggestions(c.UserContext(), homeID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
