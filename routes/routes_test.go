package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restopos-backend/config"
	"restopos-backend/controllers"
	"restopos-backend/services"
	"restopos-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newAPI(t *testing.T) (*apiClient, *utils.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.ConnectDB("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := utils.NewMetrics()
	hub := services.NewFloorHub(logger)
	deps := services.Deps{Publisher: hub, Metrics: metrics, Logger: logger}
	methods := []string{"cash", "card"}

	h := &controllers.Handler{
		DB:       db,
		Orders:   services.NewOrderService(db, decimal.RequireFromString("0.10"), deps),
		Tables:   services.NewTableService(db, deps),
		Billing:  services.NewBillingService(db, methods, services.DefaultQRGenerator{BaseURL: "http://pos.test"}, deps),
		Receipts: services.NewReceiptService(db, services.DisabledSender{}, "Test Kitchen", "Rs.", deps),
		Catalog:  services.NewCatalogService(db),
		Reports:  services.NewReportService(db, deps),
		Auth:     controllers.AuthConfig{Secret: "test-secret", TTL: time.Hour},
		Logger:   logger,
	}
	r := SetupRouter(h, Options{Hub: hub, Metrics: metrics, CORSOrigins: []string{"http://localhost:3000"}})
	return &apiClient{t: t, router: r}, metrics
}

func (a *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// call performs a request, asserts the status and decodes the body into a map.
func (a *apiClient) call(method, path string, body any, status int) map[string]any {
	a.t.Helper()
	w := a.do(method, path, body)
	require.Equal(a.t, status, w.Code, w.Body.String())
	out := map[string]any{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return out
}

func (a *apiClient) as(token string) *apiClient {
	return &apiClient{t: a.t, router: a.router, token: token}
}

func register(t *testing.T, api *apiClient) *apiClient {
	t.Helper()
	resp := api.call(http.MethodPost, "/auth/register", gin.H{
		"email":    "owner@example.com",
		"name":     "Owner",
		"password": "longpassword",
	}, http.StatusCreated)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return api.as(token)
}

func TestServiceFlow(t *testing.T) {
	api, _ := newAPI(t)
	admin := register(t, api)

	category := admin.call(http.MethodPost, "/api/menu/categories", gin.H{"name": "Mains"}, http.StatusCreated)
	item := admin.call(http.MethodPost, "/api/menu/items", gin.H{
		"categoryId":      category["id"],
		"referenceNumber": "101",
		"name":            "Dal Bhat",
		"price":           "250",
	}, http.StatusCreated)
	table := admin.call(http.MethodPost, "/api/tables", gin.H{"tableNumber": "T1"}, http.StatusCreated)
	tablePath := "/api/tables/" + table["id"].(string)

	order := admin.call(http.MethodPost, tablePath+"/order", nil, http.StatusCreated)
	again := admin.call(http.MethodPost, tablePath+"/order", nil, http.StatusOK)
	assert.Equal(t, order["id"], again["id"])
	orderPath := "/api/orders/" + order["id"].(string)

	order = admin.call(http.MethodPost, orderPath+"/items", gin.H{"menuItemId": item["id"], "quantity": 2}, http.StatusOK)
	assert.Equal(t, "550", order["total"])

	admin.call(http.MethodPost, orderPath+"/confirm", nil, http.StatusOK)
	admin.call(http.MethodPut, orderPath+"/status", gin.H{"status": "ready"}, http.StatusConflict)
	admin.call(http.MethodPut, orderPath+"/status", gin.H{"status": "preparing"}, http.StatusOK)

	settled := admin.call(http.MethodPost, orderPath+"/settle", gin.H{"paymentMethod": "cash", "amountReceived": 600}, http.StatusOK)
	assert.Equal(t, "50", settled["change"])
	bill := settled["bill"].(map[string]any)
	assert.Equal(t, true, bill["isPaid"])

	admin.call(http.MethodPost, orderPath+"/settle", gin.H{"paymentMethod": "cash"}, http.StatusConflict)

	got := admin.call(http.MethodGet, tablePath, nil, http.StatusOK)
	assert.Equal(t, "available", got["status"])

	w := admin.do(http.MethodGet, "/api/bills/"+bill["id"].(string)+"/qr", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	report := admin.call(http.MethodGet, "/api/reports/sales?range=today", nil, http.StatusOK)
	assert.Equal(t, "550", report["totalRevenue"])

	dashboard := admin.call(http.MethodGet, "/api/dashboard", nil, http.StatusOK)
	assert.Equal(t, "550", dashboard["todayRevenue"])
}

func TestCancelAndMove(t *testing.T) {
	api, _ := newAPI(t)
	admin := register(t, api)

	t1 := admin.call(http.MethodPost, "/api/tables", gin.H{"tableNumber": "T1"}, http.StatusCreated)
	t2 := admin.call(http.MethodPost, "/api/tables", gin.H{"tableNumber": "T2"}, http.StatusCreated)
	order := admin.call(http.MethodPost, "/api/tables/"+t1["id"].(string)+"/order", nil, http.StatusCreated)
	orderPath := "/api/orders/" + order["id"].(string)

	moved := admin.call(http.MethodPost, orderPath+"/move", gin.H{"tableId": t2["id"]}, http.StatusOK)
	assert.Equal(t, t2["id"], moved["tableId"])

	admin.call(http.MethodDelete, orderPath, gin.H{"reason": "walked out"}, http.StatusOK)
	admin.call(http.MethodGet, orderPath, nil, http.StatusNotFound)

	t2Now := admin.call(http.MethodGet, "/api/tables/"+t2["id"].(string), nil, http.StatusOK)
	assert.Equal(t, "available", t2Now["status"])
}

func TestAccessControl(t *testing.T) {
	api, _ := newAPI(t)

	api.call(http.MethodGet, "/api/tables", nil, http.StatusUnauthorized)

	admin := register(t, api)
	api.call(http.MethodPost, "/auth/register", gin.H{
		"email": "intruder@example.com", "name": "X", "password": "longpassword",
	}, http.StatusForbidden)

	admin.call(http.MethodPost, "/api/staff", gin.H{
		"email": "waiter@example.com", "name": "Wes", "password": "longpassword", "role": "waiter",
	}, http.StatusCreated)
	admin.call(http.MethodPost, "/api/staff", gin.H{
		"email": "chef@example.com", "name": "Chef", "password": "longpassword", "role": "owner",
	}, http.StatusBadRequest)

	login := api.call(http.MethodPost, "/auth/login", gin.H{"identifier": "WAITER@example.com", "password": "longpassword"}, http.StatusOK)
	waiter := api.as(login["token"].(string))
	api.call(http.MethodPost, "/auth/login", gin.H{"identifier": "waiter@example.com", "password": "wrong"}, http.StatusUnauthorized)

	me := waiter.call(http.MethodGet, "/auth/me", nil, http.StatusOK)
	assert.Equal(t, "waiter", me["role"])

	waiter.call(http.MethodGet, "/api/tables", nil, http.StatusOK)
	waiter.call(http.MethodPost, "/api/menu/categories", gin.H{"name": "Drinks"}, http.StatusForbidden)
	waiter.call(http.MethodGet, "/api/reports/sales", nil, http.StatusForbidden)
	waiter.call(http.MethodGet, "/api/staff", nil, http.StatusForbidden)
	waiter.call(http.MethodPost, "/api/customers", gin.H{"firstName": "Ram", "phone": "+9779800000009"}, http.StatusCreated)

	admin.call(http.MethodPost, "/api/staff", gin.H{
		"email": "kitchen@example.com", "name": "Kiran", "password": "longpassword", "role": "kitchen",
	}, http.StatusCreated)
	login = api.call(http.MethodPost, "/auth/login", gin.H{"identifier": "kitchen@example.com", "password": "longpassword"}, http.StatusOK)
	kitchen := api.as(login["token"].(string))

	table := admin.call(http.MethodPost, "/api/tables", gin.H{"tableNumber": "K1"}, http.StatusCreated)
	order := admin.call(http.MethodPost, "/api/tables/"+table["id"].(string)+"/order", nil, http.StatusCreated)
	orderPath := "/api/orders/" + order["id"].(string)
	admin.call(http.MethodPost, orderPath+"/confirm", nil, http.StatusOK)

	kitchen.call(http.MethodPut, orderPath+"/status", gin.H{"status": "preparing"}, http.StatusOK)
	kitchen.call(http.MethodPost, "/api/customers", gin.H{"firstName": "Hari", "phone": "+9779800000010"}, http.StatusForbidden)
	kitchen.call(http.MethodDelete, orderPath, nil, http.StatusForbidden)
}

func TestAddItemQuantity(t *testing.T) {
	api, _ := newAPI(t)
	admin := register(t, api)

	category := admin.call(http.MethodPost, "/api/menu/categories", gin.H{"name": "Drinks"}, http.StatusCreated)
	item := admin.call(http.MethodPost, "/api/menu/items", gin.H{
		"categoryId": category["id"], "referenceNumber": "7", "name": "Lassi", "price": "10",
	}, http.StatusCreated)
	table := admin.call(http.MethodPost, "/api/tables", gin.H{"tableNumber": "T9"}, http.StatusCreated)
	order := admin.call(http.MethodPost, "/api/tables/"+table["id"].(string)+"/order", nil, http.StatusCreated)
	orderPath := "/api/orders/" + order["id"].(string)

	admin.call(http.MethodPost, orderPath+"/items", gin.H{"menuItemId": item["id"], "quantity": 0}, http.StatusBadRequest)
	admin.call(http.MethodPost, orderPath+"/items", gin.H{"menuItemId": item["id"], "quantity": -2}, http.StatusBadRequest)
	got := admin.call(http.MethodGet, orderPath, nil, http.StatusOK)
	assert.Equal(t, "0", got["total"], "rejected adds leave the order untouched")

	added := admin.call(http.MethodPost, orderPath+"/items", gin.H{"menuItemId": item["id"]}, http.StatusOK)
	lines := added["items"].([]any)
	require.Len(t, lines, 1)
	assert.EqualValues(t, 1, lines[0].(map[string]any)["quantity"], "a missing quantity means one")
}

func TestMoneyIsExactDecimalString(t *testing.T) {
	api, _ := newAPI(t)
	admin := register(t, api)

	category := admin.call(http.MethodPost, "/api/menu/categories", gin.H{"name": "Snacks"}, http.StatusCreated)
	item := admin.call(http.MethodPost, "/api/menu/items", gin.H{
		"categoryId": category["id"], "referenceNumber": "S1", "name": "Samosa", "price": "12.30",
	}, http.StatusCreated)
	table := admin.call(http.MethodPost, "/api/tables", gin.H{"tableNumber": "T6"}, http.StatusCreated)
	order := admin.call(http.MethodPost, "/api/tables/"+table["id"].(string)+"/order", nil, http.StatusCreated)

	order = admin.call(http.MethodPost, "/api/orders/"+order["id"].(string)+"/items", gin.H{"menuItemId": item["id"]}, http.StatusOK)
	for field, want := range map[string]string{"subtotal": "12.3", "serviceCharge": "1.23", "total": "13.53"} {
		raw, ok := order[field].(string)
		require.True(t, ok, field)
		assert.Equal(t, want, raw, field)
		assert.GreaterOrEqual(t, decimal.RequireFromString(raw).Exponent(), int32(-2), field)
	}
}

func TestCancelOrderBody(t *testing.T) {
	api, _ := newAPI(t)
	admin := register(t, api)

	table := admin.call(http.MethodPost, "/api/tables", gin.H{"tableNumber": "T5"}, http.StatusCreated)
	order := admin.call(http.MethodPost, "/api/tables/"+table["id"].(string)+"/order", nil, http.StatusCreated)
	orderPath := "/api/orders/" + order["id"].(string)

	req := httptest.NewRequest(http.MethodDelete, orderPath, strings.NewReader(`{"reason":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+admin.token)
	w := httptest.NewRecorder()
	admin.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	admin.call(http.MethodGet, orderPath, nil, http.StatusOK)

	admin.call(http.MethodDelete, orderPath, nil, http.StatusOK)
	admin.call(http.MethodGet, orderPath, nil, http.StatusNotFound)
}

func TestErrorMapping(t *testing.T) {
	api, _ := newAPI(t)
	admin := register(t, api)

	admin.call(http.MethodGet, "/api/orders/not-a-uuid", nil, http.StatusBadRequest)
	admin.call(http.MethodGet, "/api/orders/"+uuid.NewString(), nil, http.StatusNotFound)
	admin.call(http.MethodPost, "/api/tables", gin.H{}, http.StatusBadRequest)
	admin.call(http.MethodPost, "/api/tables", gin.H{"tableNumber": "T1"}, http.StatusCreated)
	resp := admin.call(http.MethodPost, "/api/tables", gin.H{"tableNumber": "T1"}, http.StatusConflict)
	assert.Equal(t, "table T1 already exists", resp["error"])
	admin.call(http.MethodPost, "/api/orders", gin.H{"orderType": "dine_in"}, http.StatusBadRequest)
	admin.call(http.MethodGet, "/api/reports/sales?range=fortnight", nil, http.StatusBadRequest)
}

func TestCustomers(t *testing.T) {
	api, _ := newAPI(t)
	admin := register(t, api)

	created := admin.call(http.MethodPost, "/api/customers", gin.H{"firstName": "Sita", "phone": "+977 980-000-0003"}, http.StatusCreated)
	assert.Equal(t, "+9779800000003", created["phone"])
	admin.call(http.MethodPost, "/api/customers", gin.H{"firstName": "Sita", "phone": "+9779800000003"}, http.StatusConflict)
	admin.call(http.MethodPost, "/api/customers", gin.H{"firstName": "Bad", "phone": "12"}, http.StatusBadRequest)

	w := admin.do(http.MethodGet, "/api/customers?search=sit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	admin.call(http.MethodGet, "/api/customers/"+created["id"].(string), nil, http.StatusOK)
}

func TestHealthAndMetrics(t *testing.T) {
	api, metrics := newAPI(t)
	require.NotNil(t, metrics)

	api.call(http.MethodGet, "/health", nil, http.StatusOK)

	w := api.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}
