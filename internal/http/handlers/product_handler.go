package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "homestock/internal/log"
	"homestock/internal/services"
	"homestock/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Stock   *services.StockService
	Access  *services.AccessService
}

// GET /products?homeId=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var homeIDs []int64
	if raw := c.Query("homeId"); raw != "" {
		id, ok := validate.ID(raw)
		if !ok {
			return badRequest(c, "homeId", "invalid homeId")
		}
		if err := guard(c, h.Access, id, false); err != nil {
			return fail(c, err)
		}
		homeIDs = []int64{id}
	} else {
		ids, err := h.Access.HomeIDs(ctx, currentUser(c).ID)
		if err != nil {
			return fail(c, err)
		}
		homeIDs = ids
	}
	out := []services.ProductView{}
	for _, id := range homeIDs {
		ps, err := h.Catalog.ListProductsByHome(ctx, id)
		if err != nil {
			return fail(c, err)
		}
		out = append(out, ps...)
	}
	return c.JSON(out)
}

// GET /products/subcategory/:id
func (h *ProductHandler) ListBySubcategory(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "invalid subcategory id")
	}
	sub, err := h.Catalog.GetSubcategory(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	if err := guard(c, h.Access, sub.HomeID, false); err != nil {
		return fail(c, err)
	}
	out, err := h.Catalog.ListProductsBySubcategory(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// GET /products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, err := h.load(c, false)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

// GET /products/:id/stock
func (h *ProductHandler) GetStock(c *fiber.Ctx) error {
	p, err := h.load(c, false)
	if err != nil {
		return fail(c, err)
	}
	st, err := h.Stock.GetStock(c.UserContext(), p.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(st)
}

// POST /products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return badRequest(c, "name", "enter a product name up to 100 characters")
	}
	in.Name = name
	if err := guard(c, h.Access, in.HomeID, true); err != nil {
		return fail(c, err)
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID, "home_id": p.HomeID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PATCH /products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var patch services.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	if patch.Name != nil {
		name, ok := validate.Name(*patch.Name)
		if !ok {
			return badRequest(c, "name", "enter a product name up to 100 characters")
		}
		patch.Name = &name
	}
	p, err := h.load(c, true)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.Catalog.UpdateProduct(c.UserContext(), p.ID, patch)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": p.ID})
	return c.JSON(out)
}

// DELETE /products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	p, err := h.load(c, true)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), p.ID); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": p.ID})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) load(c *fiber.Ctx, write bool) (services.ProductView, error) {
	id, ok := pathID(c, "id")
	if !ok {
		return services.ProductView{}, errInvalidParam(c, "id")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return services.ProductView{}, err
	}
	return p, guard(c, h.Access, p.HomeID, write)
}
