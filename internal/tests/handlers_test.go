package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	httpapi "couple-kitchen/internal/api/http"
	"couple-kitchen/internal/domain"
	"couple-kitchen/internal/service"
	"couple-kitchen/internal/storage"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	mem := storage.NewMemoryStore()
	menuSvc := service.NewMenuService(mem, nil)
	orderSvc := service.NewOrderService(mem, mem, nil, nil, nil)
	walletSvc := service.NewWalletService(mem)
	chatSvc := service.NewChatService(mem)

	handler := httpapi.NewHandler(menuSvc, orderSvc, walletSvc, chatSvc)
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func addDishViaAPI(t *testing.T, r http.Handler, name string, price float64) int {
	t.Helper()
	payload := fmt.Sprintf(`{"name":%q,"emoji":"🍝","category":"lunch","price":%v,"role":"chef"}`, name, price)
	w := doRequest(t, r, "POST", "/api/menu", payload)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	return int(body["id"].(float64))
}

func TestHealthCheckHandler(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "kitchen-svc", body["service"])
}

func TestProposeDishHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantCode     int
		wantApproved bool
	}{
		{
			name:         "chef creation is approved",
			body:         `{"name":"Fried Egg","emoji":"🍳","price":5,"role":"chef"}`,
			wantCode:     http.StatusCreated,
			wantApproved: true,
		},
		{
			name:         "diner proposal stays pending",
			body:         `{"name":"Sunrise Salad","emoji":"🥗","role":"diner"}`,
			wantCode:     http.StatusCreated,
			wantApproved: false,
		},
		{
			name:         "legacy isApproved flag",
			body:         `{"name":"Curry Rice","emoji":"🍛","price":30,"isApproved":true}`,
			wantCode:     http.StatusCreated,
			wantApproved: true,
		},
		{
			name:     "missing emoji",
			body:     `{"name":"Fried Egg"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid JSON",
			body:     `{invalid}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			r := newTestRouter(t)
			w := doRequest(t, r, "POST", "/api/menu", testCase.body)
			assert.Equal(t, testCase.wantCode, w.Code)

			body := decodeBody(t, w)
			if testCase.wantCode == http.StatusCreated {
				assert.Equal(t, testCase.wantApproved, body["isApproved"])
			} else {
				assert.Equal(t, false, body["success"])
				assert.NotEmpty(t, body["message"])
			}
		})
	}
}

func TestMenuOnlyShowsApprovedDishes(t *testing.T) {
	r := newTestRouter(t)

	addDishViaAPI(t, r, "Fried Egg", 5)
	w := doRequest(t, r, "POST", "/api/menu", `{"name":"Secret Dish","emoji":"🤫","role":"diner"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, "GET", "/api/menu", "")
	require.Equal(t, http.StatusOK, w.Code)
	var menu []domain.Dish
	require.NoError(t, json.NewDecoder(w.Body).Decode(&menu))
	require.Len(t, menu, 1)
	assert.Equal(t, "Fried Egg", menu[0].Name)

	w = doRequest(t, r, "GET", "/api/menu/pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	var pending []domain.Dish
	require.NoError(t, json.NewDecoder(w.Body).Decode(&pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "Secret Dish", pending[0].Name)
}

func TestApproveDishHandler(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, "POST", "/api/menu", `{"name":"Sunrise Salad","emoji":"🥗","role":"diner"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := int(decodeBody(t, w)["id"].(float64))

	w = doRequest(t, r, "PUT", fmt.Sprintf("/api/menu/%d/approve", id), `{"price":20}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["isApproved"])
	assert.Equal(t, 20.0, body["price"])

	w = doRequest(t, r, "PUT", "/api/menu/999/approve", `{"price":20}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditAndDeleteDishHandlers(t *testing.T) {
	r := newTestRouter(t)
	id := addDishViaAPI(t, r, "Curry Rice", 30)

	w := doRequest(t, r, "PUT", fmt.Sprintf("/api/menu/%d", id), `{"price":25}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 25.0, body["price"])
	assert.Equal(t, "Curry Rice", body["name"])

	w = doRequest(t, r, "DELETE", fmt.Sprintf("/api/menu/%d", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Curry Rice", decodeBody(t, w)["name"])

	w = doRequest(t, r, "DELETE", fmt.Sprintf("/api/menu/%d", id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaceOrderHandler(t *testing.T) {
	r := newTestRouter(t)
	id := addDishViaAPI(t, r, "Sweet Sandwich", 10)

	w := doRequest(t, r, "POST", "/api/order", fmt.Sprintf(`{"items":[{"dishId":%d,"quantity":2}]}`, id))
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	order := body["order"].(map[string]interface{})
	assert.Equal(t, "waiting", order["status"])
	assert.Equal(t, 20.0, order["totalPrice"])

	w = doRequest(t, r, "GET", "/api/wallet", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 80.0, decodeBody(t, w)["balance"])
}

func TestPlaceOrderHandlerFailures(t *testing.T) {
	r := newTestRouter(t)
	id := addDishViaAPI(t, r, "Romantic Pasta", 80)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "empty items", body: `{"items":[]}`, wantCode: http.StatusBadRequest},
		{name: "unknown dish", body: `{"items":[{"dishId":999,"quantity":1}]}`, wantCode: http.StatusBadRequest},
		{
			name:     "insufficient funds",
			body:     fmt.Sprintf(`{"items":[{"dishId":%d,"quantity":2}]}`, id),
			wantCode: http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			w := doRequest(t, r, "POST", "/api/order", testCase.body)
			assert.Equal(t, testCase.wantCode, w.Code)

			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}

	// The failed attempts must not have touched the wallet.
	w := doRequest(t, r, "GET", "/api/wallet", "")
	assert.Equal(t, 100.0, decodeBody(t, w)["balance"])
}

func TestOrderStatusHandler(t *testing.T) {
	r := newTestRouter(t)
	id := addDishViaAPI(t, r, "Fried Egg", 5)

	w := doRequest(t, r, "POST", "/api/order", fmt.Sprintf(`{"items":[{"dishId":%d,"quantity":1}]}`, id))
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int(decodeBody(t, w)["order"].(map[string]interface{})["id"].(float64))

	w = doRequest(t, r, "PUT", fmt.Sprintf("/api/order/%d", orderID), `{"status":"done"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, "PUT", fmt.Sprintf("/api/order/%d", orderID), `{"status":"cooking"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cooking", decodeBody(t, w)["status"])

	w = doRequest(t, r, "PUT", "/api/order/999", `{"status":"cooking"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateOrderHandler(t *testing.T) {
	r := newTestRouter(t)
	id := addDishViaAPI(t, r, "Romantic Pasta", 10)

	w := doRequest(t, r, "POST", "/api/order", fmt.Sprintf(`{"items":[{"dishId":%d,"quantity":1}]}`, id))
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int(decodeBody(t, w)["order"].(map[string]interface{})["id"].(float64))

	// Rating before completion is rejected server-side.
	w = doRequest(t, r, "PUT", fmt.Sprintf("/api/order/%d/rate", orderID), `{"rating":4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	doRequest(t, r, "PUT", fmt.Sprintf("/api/order/%d", orderID), `{"status":"cooking"}`)
	doRequest(t, r, "PUT", fmt.Sprintf("/api/order/%d", orderID), `{"status":"done"}`)

	w = doRequest(t, r, "PUT", fmt.Sprintf("/api/order/%d/rate", orderID), `{"rating":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, "PUT", fmt.Sprintf("/api/order/%d/rate", orderID), `{"rating":4}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4.0, decodeBody(t, w)["rating"])

	w = doRequest(t, r, "GET", "/api/ratings?dish=Romantic+Pasta", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 4.0, body["average"])
	assert.Equal(t, 1.0, body["count"])

	w = doRequest(t, r, "GET", "/api/ratings", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletHandlers(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, "GET", "/api/wallet", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100.0, decodeBody(t, w)["balance"])

	w = doRequest(t, r, "POST", "/api/wallet/recharge", `{"amount":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, "POST", "/api/wallet/recharge", `{"amount":25}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])

	w = doRequest(t, r, "GET", "/api/wallet", "")
	assert.Equal(t, 125.0, decodeBody(t, w)["balance"])
}

func TestMessageHandlers(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, "POST", "/api/messages", `{"sender":"chef","content":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, "POST", "/api/messages", `{"sender":"chef","content":"dinner is ready"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, "POST", "/api/messages", `{"sender":"diner","content":"on my way"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, "GET", "/api/messages", "")
	require.Equal(t, http.StatusOK, w.Code)

	var messages []domain.Message
	require.NoError(t, json.NewDecoder(w.Body).Decode(&messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "chef", messages[0].Sender)
	assert.Equal(t, "diner", messages[1].Sender)
}
