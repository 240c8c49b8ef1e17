package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kamaudev/dukashop/internal/service/catalog"
	"github.com/kamaudev/dukashop/internal/service/search"
	"github.com/kamaudev/dukashop/internal/util"
)

type ProductHandler struct {
	Catalog *catalog.Service
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	product, err := h.Catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	products, total, err := h.Catalog.ListProducts(c.Request().Context(), catalog.ListFilter{
		Category:   c.QueryParam("category"),
		ActiveOnly: c.QueryParam("include_inactive") != "true",
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondList(c, products, total)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	product, err := h.Catalog.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	product, err := h.Catalog.UpdateProduct(c.Request().Context(), id, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := h.Catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return respondMessage(c, http.StatusOK, "product deleted")
}

func (h *ProductHandler) SearchProducts(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return respondError(c, http.StatusBadRequest, "q is required")
	}
	if h.Catalog.ES == nil {
		return respondError(c, http.StatusServiceUnavailable, "search unavailable")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, products, err := search.Search(c.Request().Context(), h.Catalog.ES, h.Catalog.Index, q, from, limit)
	if err != nil {
		return respondError(c, http.StatusBadGateway, "search failed")
	}
	return respondList(c, products, total)
}
