package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kamaudev/dukashop/internal/auth"
	"github.com/kamaudev/dukashop/internal/models"
	"github.com/kamaudev/dukashop/internal/service/order"
	"github.com/kamaudev/dukashop/internal/service/payment"
	"github.com/kamaudev/dukashop/internal/util"
)

type PaymentHandler struct {
	Payments *payment.Service
	Orders   *order.Service
}

func (h *PaymentHandler) Submit(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req payment.SubmitRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	created, err := h.Payments.Submit(c.Request().Context(), userID, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, http.StatusCreated, created)
}

func (h *PaymentHandler) ForOrder(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	found, err := h.Orders.Get(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	if auth.RoleOf(c) == models.RoleCustomer {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		if found.UserID != userID {
			return respondError(c, http.StatusForbidden, "not your order")
		}
	}

	payments, err := h.Payments.ListForOrder(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondList(c, payments, int64(len(payments)))
}

func (h *PaymentHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	payments, total, err := h.Payments.List(c.Request().Context(), offset, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondList(c, payments, total)
}

func (h *PaymentHandler) Confirm(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	confirmed, err := h.Payments.Confirm(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, http.StatusOK, confirmed)
}

func (h *PaymentHandler) Reject(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	rejected, err := h.Payments.Reject(c.Request().Context(), id, req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, http.StatusOK, rejected)
}
