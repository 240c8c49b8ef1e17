package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/auth"
	"github.com/kamaudev/dukashop/internal/config"
	"github.com/kamaudev/dukashop/internal/handlers"
	"github.com/kamaudev/dukashop/internal/hash"
	"github.com/kamaudev/dukashop/internal/models"
	"github.com/kamaudev/dukashop/internal/outbox"
	"github.com/kamaudev/dukashop/internal/service/catalog"
	"github.com/kamaudev/dukashop/internal/service/order"
	"github.com/kamaudev/dukashop/internal/service/payment"
	"github.com/kamaudev/dukashop/internal/settings"
	httpserver "github.com/kamaudev/dukashop/internal/transport/http"
)

var testSecret = []byte("handlers-test-secret")

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	settingsStore := &settings.Store{DB: db}
	outboxQueue := &outbox.Queue{DB: db}
	catalogSvc := &catalog.Service{DB: db, Index: "products"}
	orderSvc := &order.Service{DB: db, Outbox: outboxQueue, Settings: settingsStore}
	paymentSvc := &payment.Service{DB: db, Outbox: outboxQueue}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		JWTSecret:        testSecret,
		AuthHandler:      &handlers.AuthHandler{DB: db, JWTSecret: testSecret},
		ProductHandler:   &handlers.ProductHandler{Catalog: catalogSvc},
		OrderHandler:     &handlers.OrderHandler{DB: db, Orders: orderSvc, Settings: settingsStore},
		PaymentHandler:   &handlers.PaymentHandler{Payments: paymentSvc, Orders: orderSvc},
		CategoryHandler:  &handlers.CategoryHandler{DB: db},
		FlashSaleHandler: &handlers.FlashSaleHandler{DB: db},
		SettingsHandler:  &handlers.SettingsHandler{Settings: settingsStore},
		UserAdminHandler: &handlers.UserAdminHandler{DB: db},
	})

	return &testEnv{T: t, E: e, DB: db}
}

func (env *testEnv) createUser(role models.Role) (models.User, string) {
	env.T.Helper()
	passwordHash, err := hash.HashPassword("password123")
	require.NoError(env.T, err)
	user := models.User{
		Name:         "Test " + string(role),
		Email:        string(role) + "@example.com",
		Phone:        "0712000000",
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	token, err := auth.IssueToken(testSecret, user.ID, user.Role)
	require.NoError(env.T, err)
	return user, token
}

func (env *testEnv) tokenFor(user models.User) string {
	env.T.Helper()
	token, err := auth.IssueToken(testSecret, user.ID, user.Role)
	require.NoError(env.T, err)
	return token
}

func orderPath(id uint) string {
	return fmt.Sprintf("/api/orders/%d", id)
}

func (env *testEnv) createProduct(name string, price float64, stock uint) models.Product {
	env.T.Helper()
	product := models.Product{
		Name:     name,
		Category: models.CategoryElectronics,
		Price:    price,
		Stock:    stock,
		Active:   true,
	}
	require.NoError(env.T, env.DB.Create(&product).Error)
	return product
}

func (env *testEnv) do(method, path, token string, body any, headers ...[2]string) *httptest.ResponseRecorder {
	env.T.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for _, h := range headers {
		req.Header.Set(h[0], h[1])
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   int64           `json:"count"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success, "expected success envelope, got: %s", rec.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}
