package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/kamaudev/dukashop/internal/auth"
	"github.com/kamaudev/dukashop/internal/handlers"
	"github.com/kamaudev/dukashop/internal/models"
)

type Deps struct {
	JWTSecret        []byte
	AuthHandler      *handlers.AuthHandler
	ProductHandler   *handlers.ProductHandler
	OrderHandler     *handlers.OrderHandler
	PaymentHandler   *handlers.PaymentHandler
	CategoryHandler  *handlers.CategoryHandler
	FlashSaleHandler *handlers.FlashSaleHandler
	SettingsHandler  *handlers.SettingsHandler
	UserAdminHandler *handlers.UserAdminHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	authed := auth.RequireAuth(d.JWTSecret)
	adminOnly := auth.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
	orderViewers := auth.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin, models.RoleSales)
	superOnly := auth.RequireRoles(models.RoleSuperAdmin)

	api.POST("/auth/register", d.AuthHandler.Register)
	api.POST("/auth/login", d.AuthHandler.Login)
	api.GET("/auth/me", d.AuthHandler.Me, authed)

	api.GET("/products", d.ProductHandler.GetProducts)
	api.GET("/products/search", d.ProductHandler.SearchProducts)
	api.GET("/products/:id", d.ProductHandler.GetProduct)
	api.POST("/products", d.ProductHandler.CreateProduct, authed, adminOnly)
	api.PUT("/products/:id", d.ProductHandler.UpdateProduct, authed, adminOnly)
	api.DELETE("/products/:id", d.ProductHandler.DeleteProduct, authed, adminOnly)

	api.GET("/categories", d.CategoryHandler.List)
	api.POST("/categories", d.CategoryHandler.Create, authed, adminOnly)
	api.PUT("/categories/:id", d.CategoryHandler.Update, authed, adminOnly)
	api.DELETE("/categories/:id", d.CategoryHandler.Delete, authed, adminOnly)

	api.GET("/flash-sales", d.FlashSaleHandler.List)
	api.POST("/flash-sales", d.FlashSaleHandler.Create, authed, adminOnly)
	api.PUT("/flash-sales/:id", d.FlashSaleHandler.Update, authed, adminOnly)
	api.DELETE("/flash-sales/:id", d.FlashSaleHandler.Delete, authed, adminOnly)

	api.POST("/orders", d.OrderHandler.CreateOrder, authed)
	api.GET("/orders/me", d.OrderHandler.MyOrders, authed)
	api.GET("/orders/:id", d.OrderHandler.GetOrder, authed)
	api.GET("/orders/:id/invoice", d.OrderHandler.Invoice, authed)
	api.GET("/orders", d.OrderHandler.ListOrders, authed, orderViewers)
	api.PUT("/orders/:id/status", d.OrderHandler.UpdateStatus, authed, adminOnly)

	api.POST("/payments/submit", d.PaymentHandler.Submit, authed)
	api.GET("/payments/order/:id", d.PaymentHandler.ForOrder, authed)
	api.GET("/payments", d.PaymentHandler.List, authed, adminOnly)
	api.PUT("/payments/:id/confirm", d.PaymentHandler.Confirm, authed, adminOnly)
	api.PUT("/payments/:id/reject", d.PaymentHandler.Reject, authed, adminOnly)

	api.GET("/settings", d.SettingsHandler.Get, authed, adminOnly)
	api.PUT("/settings", d.SettingsHandler.Update, authed, superOnly)

	api.GET("/users", d.UserAdminHandler.List, authed, superOnly)
	api.PUT("/users/:id/role", d.UserAdminHandler.UpdateRole, authed, superOnly)
}
