package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kamaudev/dukashop/internal/models"
)

func TestProductCRUD(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.createUser(models.RoleAdmin)

	rec := env.do(http.MethodPost, "/api/products", adminToken, map[string]any{
		"name":     "Solar lamp",
		"category": models.CategoryElectronics,
		"price":    2500,
		"stock":    10,
		"images":   []string{"https://cdn.example.com/lamp.jpg"},
	})
	requireStatus(t, rec, http.StatusCreated)
	created := decodeData[models.Product](t, rec)
	require.True(t, created.Active)

	rec = env.do(http.MethodGet, "/api/products/1", "", nil)
	requireStatus(t, rec, http.StatusOK)
	fetched := decodeData[models.Product](t, rec)
	require.Equal(t, "Solar lamp", fetched.Name)
	require.Equal(t, []string{"https://cdn.example.com/lamp.jpg"}, fetched.Images)

	rec = env.do(http.MethodPut, "/api/products/1", adminToken, map[string]any{
		"name":     "Solar lamp XL",
		"category": models.CategoryElectronics,
		"price":    3000,
		"stock":    8,
	})
	requireStatus(t, rec, http.StatusOK)
	updated := decodeData[models.Product](t, rec)
	require.Equal(t, 3000.0, updated.Price)

	rec = env.do(http.MethodDelete, "/api/products/1", adminToken, nil)
	requireStatus(t, rec, http.StatusOK)
	require.Equal(t, "product deleted", decodeEnvelope(t, rec).Message)

	rec = env.do(http.MethodGet, "/api/products/1", "", nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestProductCreateRejectsBadCategoryAndPrice(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.createUser(models.RoleAdmin)

	rec := env.do(http.MethodPost, "/api/products", adminToken, map[string]any{
		"name": "Thing", "category": "furniture", "price": 10,
	})
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.do(http.MethodPost, "/api/products", adminToken, map[string]any{
		"name": "Thing", "category": models.CategoryServices, "price": -5,
	})
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestProductMutationsAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createUser(models.RoleCustomer)

	body := map[string]any{"name": "X", "category": models.CategoryServices, "price": 1}

	rec := env.do(http.MethodPost, "/api/products", customerToken, body)
	requireStatus(t, rec, http.StatusForbidden)

	rec = env.do(http.MethodPost, "/api/products", "", body)
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestProductListFiltersAndPaginates(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		env.createProduct("Lamp", 100, 5)
	}
	inactive := env.createProduct("Hidden", 100, 5)
	require.NoError(t, env.DB.Model(&models.Product{}).Where("id = ?", inactive.ID).Update("active", false).Error)

	rec := env.do(http.MethodGet, "/api/products", "", nil)
	requireStatus(t, rec, http.StatusOK)
	envBody := decodeEnvelope(t, rec)
	require.Equal(t, int64(3), envBody.Count, "inactive products are hidden by default")

	rec = env.do(http.MethodGet, "/api/products?page=1&size=2", "", nil)
	envBody = decodeEnvelope(t, rec)
	require.Equal(t, int64(3), envBody.Count)
}
