package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/models"
	"github.com/kamaudev/dukashop/internal/settings"
)

// CategoryHandler covers the admin category CRUD plus the public listing.
type CategoryHandler struct {
	DB *gorm.DB
}

func (h *CategoryHandler) List(c echo.Context) error {
	var cats []models.Category
	if err := h.DB.Order("name ASC").Find(&cats).Error; err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	return respondList(c, cats, int64(len(cats)))
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var req models.Category
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Slug == "" {
		return respondError(c, http.StatusBadRequest, "name and slug are required")
	}
	req.ID = 0
	if err := h.DB.Create(&req).Error; err != nil {
		return respondError(c, http.StatusBadRequest, "category already exists")
	}
	return respondData(c, http.StatusCreated, req)
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	var existing models.Category
	if err := h.DB.First(&existing, id).Error; err != nil {
		return respondError(c, http.StatusNotFound, "category not found")
	}
	var req models.Category
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	existing.Name = req.Name
	existing.Slug = req.Slug
	if err := h.DB.Save(&existing).Error; err != nil {
		return respondError(c, http.StatusBadRequest, "category already exists")
	}
	return respondData(c, http.StatusOK, existing)
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := h.DB.Delete(&models.Category{}, id).Error; err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	return respondMessage(c, http.StatusOK, "category deleted")
}

// FlashSaleHandler manages time-boxed discounts.
type FlashSaleHandler struct {
	DB *gorm.DB
}

func (h *FlashSaleHandler) List(c echo.Context) error {
	var sales []models.FlashSale
	if err := h.DB.Order("starts_at DESC").Find(&sales).Error; err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	return respondList(c, sales, int64(len(sales)))
}

func (h *FlashSaleHandler) Create(c echo.Context) error {
	var req models.FlashSale
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == 0 || req.SalePrice < 0 {
		return respondError(c, http.StatusBadRequest, "product_id and a non-negative sale_price are required")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return respondError(c, http.StatusBadRequest, "ends_at must be after starts_at")
	}
	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		return respondError(c, http.StatusBadRequest, "product not found")
	}
	req.ID = 0
	now := time.Now()
	req.Active = !req.StartsAt.After(now) && req.EndsAt.After(now)
	if err := h.DB.Create(&req).Error; err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	return respondData(c, http.StatusCreated, req)
}

func (h *FlashSaleHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	var existing models.FlashSale
	if err := h.DB.First(&existing, id).Error; err != nil {
		return respondError(c, http.StatusNotFound, "flash sale not found")
	}
	var req models.FlashSale
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	if req.SalePrice < 0 {
		return respondError(c, http.StatusBadRequest, "sale_price must be non-negative")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return respondError(c, http.StatusBadRequest, "ends_at must be after starts_at")
	}
	existing.SalePrice = req.SalePrice
	existing.StartsAt = req.StartsAt
	existing.EndsAt = req.EndsAt
	now := time.Now()
	existing.Active = !existing.StartsAt.After(now) && existing.EndsAt.After(now)
	if err := h.DB.Save(&existing).Error; err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	return respondData(c, http.StatusOK, existing)
}

func (h *FlashSaleHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := h.DB.Delete(&models.FlashSale{}, id).Error; err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	return respondMessage(c, http.StatusOK, "flash sale deleted")
}

// SettingsHandler exposes the singleton settings row.
type SettingsHandler struct {
	Settings *settings.Store
}

func (h *SettingsHandler) Get(c echo.Context) error {
	setting, err := h.Settings.Get(c.Request().Context())
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	return respondData(c, http.StatusOK, setting)
}

func (h *SettingsHandler) Update(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	setting, err := h.Settings.Update(c.Request().Context(), fields)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, http.StatusOK, setting)
}

// UserAdminHandler is the super-admin user management surface.
type UserAdminHandler struct {
	DB *gorm.DB
}

func (h *UserAdminHandler) List(c echo.Context) error {
	var users []models.User
	if err := h.DB.Order("id ASC").Find(&users).Error; err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	return respondList(c, users, int64(len(users)))
}

var assignableRoles = map[models.Role]bool{
	models.RoleCustomer:   true,
	models.RoleAdmin:      true,
	models.RoleSuperAdmin: true,
	models.RoleSales:      true,
}

func (h *UserAdminHandler) UpdateRole(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	var req struct {
		Role   models.Role `json:"role"`
		Active *bool       `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	if !assignableRoles[req.Role] {
		return respondError(c, http.StatusBadRequest, "unknown role")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return respondError(c, http.StatusNotFound, "user not found")
	}
	user.Role = req.Role
	if req.Active != nil {
		user.Active = *req.Active
	}
	if err := h.DB.Save(&user).Error; err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	return respondData(c, http.StatusOK, user)
}
