package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "homestock/internal/log"
)

// Routes mounts the JSON API. Everything except /auth and /healthz needs a session.
func Routes(app *fiber.App, d *Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	// Auth (login throttled)
	auth := app.Group("/auth")
	auth.Post("/register", d.AuthHandler.Register)
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later", "code": "rate_limited"})
		},
	}), d.AuthHandler.Login)
	auth.Post("/logout", d.AuthHandler.Logout)

	user := RequireUser(d.Auth)

	homes := app.Group("/homes", user)
	homes.Get("/", d.HomeHandler.List)
	homes.Post("/", d.HomeHandler.Create)
	homes.Get("/:homeId", d.HomeHandler.Get)
	homes.Delete("/:homeId", d.HomeHandler.Delete)
	homes.Get("/:homeId/members", d.HomeHandler.Members)
	homes.Get("/:homeId/categories", d.CategoryHandler.List)

	cats := app.Group("/categories", user)
	cats.Post("/", d.CategoryHandler.Create)
	cats.Delete("/:id", d.CategoryHandler.Delete)
	cats.Get("/:id/subcategories", d.CategoryHandler.Subcategories)

	subs := app.Group("/subcategories", user)
	subs.Post("/", d.CategoryHandler.CreateSubcategory)
	subs.Delete("/:id", d.CategoryHandler.DeleteSubcategory)

	products := app.Group("/products", user)
	products.Get("/", d.ProductHandler.List)
	products.Post("/", d.ProductHandler.Create)
	products.Get("/subcategory/:id", d.ProductHandler.ListBySubcategory)
	products.Get("/:id", d.ProductHandler.Detail)
	products.Patch("/:id", d.ProductHandler.Update)
	products.Delete("/:id", d.ProductHandler.Delete)
	products.Get("/:id/stock", d.ProductHandler.GetStock)

	batches := app.Group("/product-batches", user)
	batches.Get("/", d.BatchHandler.List)
	batches.Post("/", d.BatchHandler.Create)
	batches.Post("/bulk", d.BatchHandler.CreateMany)
	batches.Post("/consume", d.BatchHandler.Consume)
	batches.Get("/product/:productId", d.BatchHandler.ListByProduct)
	batches.Get("/expired/:homeId", d.BatchHandler.ListExpired)
	batches.Get("/expiring-soon/:homeId", d.BatchHandler.ListExpiringSoon)
	batches.Get("/:id", d.BatchHandler.Get)
	batches.Patch("/:id", d.BatchHandler.Update)
	batches.Delete("/:id", d.BatchHandler.Delete)

	cart := app.Group("/cart", user)
	cart.Get("/:homeId", d.CartHandler.View)
	cart.Delete("/:homeId", d.CartHandler.Clear)
	cart.Get("/:homeId/suggestions", d.CartHandler.Suggestions)
	cart.Post("/:homeId/products", d.CartHandler.Add)
	cart.Patch("/:homeId/products/:lineId", d.CartHandler.UpdateLine)
	cart.Delete("/:homeId/products/:lineId", d.CartHandler.RemoveLine)

	invites := app.Group("/invites", user)
	invites.Post("/", d.InviteHandler.Create)
	invites.Post("/:code/redeem", d.InviteHandler.Redeem)

	app.Use(NotFound)
}
