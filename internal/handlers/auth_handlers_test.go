package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kamaudev/dukashop/internal/models"
)

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Wanjiku",
		"email":    "wanjiku@example.com",
		"phone":    "0712000001",
		"password": "password123",
	})
	requireStatus(t, rec, http.StatusCreated)

	registered := decodeData[struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}](t, rec)
	require.Equal(t, models.RoleCustomer, registered.User.Role)
	require.NotEmpty(t, registered.Token)

	rec = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "wanjiku@example.com",
		"password": "password123",
	})
	requireStatus(t, rec, http.StatusOK)
	loggedIn := decodeData[struct {
		Token string `json:"token"`
	}](t, rec)

	rec = env.do(http.MethodGet, "/api/auth/me", loggedIn.Token, nil)
	requireStatus(t, rec, http.StatusOK)
	me := decodeData[models.User](t, rec)
	require.Equal(t, "wanjiku@example.com", me.Email)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "",
		"email":    "not-an-email",
		"password": "123",
	})
	requireStatus(t, rec, http.StatusBadRequest)
	envBody := decodeEnvelope(t, rec)
	require.False(t, envBody.Success)
	require.Len(t, envBody.Errors, 3)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(models.RoleCustomer)

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Other",
		"email":    "customer@example.com",
		"password": "password123",
	})
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(models.RoleCustomer)

	rec := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "customer@example.com",
		"password": "wrong",
	})
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/api/auth/me", "", nil)
	requireStatus(t, rec, http.StatusUnauthorized)
}
