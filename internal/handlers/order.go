package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/auth"
	"github.com/kamaudev/dukashop/internal/invoice"
	"github.com/kamaudev/dukashop/internal/models"
	"github.com/kamaudev/dukashop/internal/service/order"
	"github.com/kamaudev/dukashop/internal/settings"
	"github.com/kamaudev/dukashop/internal/util"
)

type OrderHandler struct {
	DB       *gorm.DB
	Orders   *order.Service
	Settings *settings.Store
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Items    []order.LineRequest `json:"items"`
		Delivery order.Delivery      `json:"delivery"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	idemKey := c.Request().Header.Get("Idempotency-Key")
	created, err := h.Orders.Checkout(c.Request().Context(), userID, req.Items, req.Delivery, idemKey)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, http.StatusCreated, created)
}

func (h *OrderHandler) MyOrders(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	orders, err := h.Orders.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondList(c, orders, int64(len(orders)))
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	found, err := h.loadAuthorized(c)
	if err != nil {
		return err
	}
	if found == nil {
		return nil // response already written
	}
	return respondData(c, http.StatusOK, found)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Orders.List(c.Request().Context(), offset, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondList(c, orders, total)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	updated, err := h.Orders.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, http.StatusOK, updated)
}

func (h *OrderHandler) Invoice(c echo.Context) error {
	found, err := h.loadAuthorized(c)
	if err != nil {
		return err
	}
	if found == nil {
		return nil
	}

	ctx := c.Request().Context()
	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, found.UserID).Error; err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	setting, err := h.Settings.Get(ctx)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}

	var payment *models.Payment
	var latest models.Payment
	if err := h.DB.WithContext(ctx).
		Where("order_id = ?", found.ID).
		Order("id DESC").
		First(&latest).Error; err == nil {
		payment = &latest
	}

	pdfBytes, err := invoice.Render(found, &user, payment, setting)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "invoice generation failed")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="invoice-`+found.Number+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

// loadAuthorized fetches the order and enforces that customers only see
// their own. A nil order with a nil error means the rejection response has
// already been written.
func (h *OrderHandler) loadAuthorized(c echo.Context) (*models.Order, error) {
	id, err := paramID(c)
	if err != nil {
		return nil, respondError(c, http.StatusBadRequest, err.Error())
	}
	found, err := h.Orders.Get(c.Request().Context(), id)
	if err != nil {
		return nil, respondServiceError(c, err)
	}

	role := auth.RoleOf(c)
	if role == models.RoleCustomer {
		userID, err := auth.UserID(c)
		if err != nil {
			return nil, err
		}
		if found.UserID != userID {
			return nil, respondError(c, http.StatusForbidden, "not your order")
		}
	}
	return found, nil
}
