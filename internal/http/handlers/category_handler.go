package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "homestock/internal/log"
	"homestock/internal/services"
	"homestock/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
	Access  *services.AccessService
}

// GET /homes/:homeId/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	homeID, ok := pathID(c, "homeId")
	if !ok {
		return badRequest(c, "homeId", "invalid homeId")
	}
	if err := guard(c, h.Access, homeID, false); err != nil {
		return fail(c, err)
	}
	cats, err := h.Catalog.ListCategories(c.UserContext(), homeID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(cats)
}

// POST /categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in struct {
		HomeID int64  `json:"homeId"`
		Name   string `json:"name"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return badRequest(c, "name", "enter a category name up to 100 characters")
	}
	if err := guard(c, h.Access, in.HomeID, true); err != nil {
		return fail(c, err)
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), in.HomeID, name)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "category.create", map[string]any{"category_id": cat.ID, "home_id": cat.HomeID})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// DELETE /categories/:id
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "invalid category id")
	}
	cat, err := h.Catalog.GetCategory(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	if err := guard(c, h.Access, cat.HomeID, true); err != nil {
		return fail(c, err)
	}
	if err := h.Catalog.DeleteCategory(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "category.delete", map[string]any{"category_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /categories/:id/subcategories
func (h *CategoryHandler) Subcategories(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "invalid category id")
	}
	cat, err := h.Catalog.GetCategory(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	if err := guard(c, h.Access, cat.HomeID, false); err != nil {
		return fail(c, err)
	}
	subs, err := h.Catalog.ListSubcategories(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(subs)
}

// POST /subcategories
func (h *CategoryHandler) CreateSubcategory(c *fiber.Ctx) error {
	var in struct {
		CategoryID int64  `json:"categoryId"`
		Name       string `json:"name"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return badRequest(c, "name", "enter a subcategory name up to 100 characters")
	}
	cat, err := h.Catalog.GetCategory(c.UserContext(), in.CategoryID)
	if err != nil {
		return fail(c, err)
	}
	if err := guard(c, h.Access, cat.HomeID, true); err != nil {
		return fail(c, err)
	}
	sub, err := h.Catalog.CreateSubcategory(c.UserContext(), cat.ID, name)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "subcategory.create", map[string]any{"subcategory_id": sub.ID, "category_id": cat.ID})
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// DELETE /subcategories/:id
func (h *CategoryHandler) DeleteSubcategory(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "invalid subcategory id")
	}
	sub, err := h.Catalog.GetSubcategory(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	if err := guard(c, h.Access, sub.HomeID, true); err != nil {
		return fail(c, err)
	}
	if err := h.Catalog.DeleteSubcategory(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "subcategory.delete", map[string]any{"subcategory_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
