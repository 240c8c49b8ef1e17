package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kamaudev/dukashop/internal/models"
)

func submitPayment(t *testing.T, env *testEnv, token string, orderID uint, amount float64) models.Payment {
	t.Helper()
	rec := env.do(http.MethodPost, "/api/payments/submit", token, map[string]any{
		"order_id":     orderID,
		"amount":       amount,
		"phone_number": "0712345678",
		"mpesa_code":   "XYZ123",
	})
	requireStatus(t, rec, http.StatusCreated)
	return decodeData[models.Payment](t, rec)
}

func TestPaymentSubmitThenAdminConfirm(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createUser(models.RoleCustomer)
	_, adminToken := env.createUser(models.RoleAdmin)
	product := env.createProduct("Solar lamp", 2500, 10)
	created := decodeData[models.Order](t, env.do(http.MethodPost, "/api/orders", customerToken, checkoutBody(product.ID, 2)))

	payment := submitPayment(t, env, customerToken, created.ID, created.TotalAmount)
	require.Equal(t, models.PaymentStatusPending, payment.Status)

	// order is untouched until the admin confirms
	fetched := decodeData[models.Order](t, env.do(http.MethodGet, orderPath(created.ID), customerToken, nil))
	require.Equal(t, models.PaymentStatusPending, fetched.PaymentStatus)

	rec := env.do(http.MethodPut, fmt.Sprintf("/api/payments/%d/confirm", payment.ID), adminToken, nil)
	requireStatus(t, rec, http.StatusOK)

	fetched = decodeData[models.Order](t, env.do(http.MethodGet, orderPath(created.ID), customerToken, nil))
	require.Equal(t, models.PaymentStatusConfirmed, fetched.PaymentStatus)
	require.Equal(t, models.OrderStatusConfirmed, fetched.Status)
}

func TestPaymentRejectRequiresReason(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createUser(models.RoleCustomer)
	_, adminToken := env.createUser(models.RoleAdmin)
	product := env.createProduct("Lamp", 100, 5)
	created := decodeData[models.Order](t, env.do(http.MethodPost, "/api/orders", customerToken, checkoutBody(product.ID, 1)))
	payment := submitPayment(t, env, customerToken, created.ID, created.TotalAmount)

	rec := env.do(http.MethodPut, fmt.Sprintf("/api/payments/%d/reject", payment.ID), adminToken, map[string]string{})
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.do(http.MethodPut, fmt.Sprintf("/api/payments/%d/reject", payment.ID), adminToken, map[string]string{
		"reason": "code not found in statement",
	})
	requireStatus(t, rec, http.StatusOK)
	rejected := decodeData[models.Payment](t, rec)
	require.Equal(t, models.PaymentStatusRejected, rejected.Status)
}

func TestPaymentAdminActionsAreGated(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createUser(models.RoleCustomer)
	product := env.createProduct("Lamp", 100, 5)
	created := decodeData[models.Order](t, env.do(http.MethodPost, "/api/orders", customerToken, checkoutBody(product.ID, 1)))
	payment := submitPayment(t, env, customerToken, created.ID, created.TotalAmount)

	rec := env.do(http.MethodPut, fmt.Sprintf("/api/payments/%d/confirm", payment.ID), customerToken, nil)
	requireStatus(t, rec, http.StatusForbidden)

	rec = env.do(http.MethodGet, "/api/payments", customerToken, nil)
	requireStatus(t, rec, http.StatusForbidden)
}

func TestPaymentsForOrderVisibleToOwner(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createUser(models.RoleCustomer)
	product := env.createProduct("Lamp", 100, 5)
	created := decodeData[models.Order](t, env.do(http.MethodPost, "/api/orders", customerToken, checkoutBody(product.ID, 1)))
	submitPayment(t, env, customerToken, created.ID, created.TotalAmount)

	rec := env.do(http.MethodGet, fmt.Sprintf("/api/payments/order/%d", created.ID), customerToken, nil)
	requireStatus(t, rec, http.StatusOK)
	require.Equal(t, int64(1), decodeEnvelope(t, rec).Count)

	other := models.User{Name: "Other", Email: "other2@example.com", PasswordHash: "x", Role: models.RoleCustomer, Active: true}
	require.NoError(t, env.DB.Create(&other).Error)
	rec = env.do(http.MethodGet, fmt.Sprintf("/api/payments/order/%d", created.ID), env.tokenFor(other), nil)
	requireStatus(t, rec, http.StatusForbidden)
}
