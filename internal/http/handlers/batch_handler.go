package handlers

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/gofiber/fiber/v2"

	applog "homestock/internal/log"
	"homestock/internal/services"
	"homestock/internal/validate"
)

type BatchHandler struct {
	Batches *services.BatchService
	Catalog *services.CatalogService
	Access  *services.AccessService
}

// GET /product-batches?homeId=&expiresBy=YYYY-MM-DD
func (h *BatchHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	expiresBy, ok := validate.Date(c.Query("expiresBy"))
	if !ok {
		return badRequest(c, "expiresBy", "expiresBy must be a YYYY-MM-DD date")
	}
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
		if len(ids) == 0 {
			return c.JSON([]services.BatchView{})
		}
		homeIDs = ids
	}
	out, err := h.Batches.ListAll(ctx, expiresBy, homeIDs...)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// GET /product-batches/product/:productId
func (h *BatchHandler) ListByProduct(c *fiber.Ctx) error {
	id, ok := pathID(c, "productId")
	if !ok {
		return badRequest(c, "productId", "invalid productId")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	if err := guard(c, h.Access, p.HomeID, false); err != nil {
		return fail(c, err)
	}
	out, err := h.Batches.ListByProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// GET /product-batches/expired/:homeId
func (h *BatchHandler) ListExpired(c *fiber.Ctx) error {
	return h.listHome(c, h.Batches.ListExpired)
}

// GET /product-batches/expiring-soon/:homeId
func (h *BatchHandler) ListExpiringSoon(c *fiber.Ctx) error {
	return h.listHome(c, h.Batches.ListExpiringSoon)
}

func (h *BatchHandler) listHome(c *fiber.Ctx, list func(ctx context.Context, homeID int64) ([]services.BatchView, error)) error {
	homeID, ok := pathID(c, "homeId")
	if !ok {
		return badRequest(c, "homeId", "invalid homeId")
	}
	if err := guard(c, h.Access, homeID, false); err != nil {
		return fail(c, err)
	}
	out, err := list(c.UserContext(), homeID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// GET /product-batches/:id
func (h *BatchHandler) Get(c *fiber.Ctx) error {
	b, err := h.load(c, false)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(b)
}

// POST /product-batches
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var in services.BatchInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	if err := guard(c, h.Access, in.HomeID, true); err != nil {
		return fail(c, err)
	}
	b, err := h.Batches.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "batch.create", map[string]any{"batch_id": b.ID, "product_id": b.ProductID})
	return c.Status(fiber.StatusCreated).JSON(b)
}

// POST /product-batches/bulk
func (h *BatchHandler) CreateMany(c *fiber.Ctx) error {
	var in services.BulkBatchInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	if err := guard(c, h.Access, in.HomeID, true); err != nil {
		return fail(c, err)
	}
	out, err := h.Batches.CreateMany(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "batch.create_many", map[string]any{"product_id": in.ProductID, "quantity": in.Quantity})
	return c.Status(fiber.StatusCreated).JSON(out)
}

// POST /product-batches/consume
func (h *BatchHandler) Consume(c *fiber.Ctx) error {
	var in services.ConsumeInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	if err := guard(c, h.Access, in.HomeID, true); err != nil {
		return fail(c, err)
	}
	if err := h.Batches.Consume(c.UserContext(), in); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "batch.consume", map[string]any{"product_id": in.ProductID, "quantity": in.Quantity})
	return c.SendStatus(fiber.StatusNoContent)
}

// PATCH /product-batches/:id
func (h *BatchHandler) Update(c *fiber.Ctx) error {
	var in struct {
		ExpirationDate *civil.Date `json:"expirationDate"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	b, err := h.load(c, true)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.Batches.Update(c.UserContext(), b.ID, in.ExpirationDate)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "batch.update", map[string]any{"batch_id": b.ID})
	return c.JSON(out)
}

// DELETE /product-batches/:id
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	b, err := h.load(c, true)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Batches.Remove(c.UserContext(), b.ID); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "batch.delete", map[string]any{"batch_id": b.ID})
	return c.SendStatus(fiber.StatusNoContent)
}

// load fetches the batch named by :id and checks access to its household.
func (h *BatchHandler) load(c *fiber.Ctx, write bool) (services.BatchView, error) {
	id, ok := pathID(c, "id")
	if !ok {
		return services.BatchView{}, errInvalidParam(c, "id")
	}
	b, err := h.Batches.Get(c.UserContext(), id)
	if err != nil {
		return services.BatchView{}, err
	}
	if err := guard(c, h.Access, b.HomeID, write); err != nil {
		return services.BatchView{}, err
	}
	return b, nil
}
