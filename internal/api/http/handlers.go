package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"couple-kitchen/internal/domain"
	"couple-kitchen/internal/service"

	"github.com/gorilla/mux"
)

type Handler struct {
	Menu   service.MenuServiceInterface
	Orders service.OrderServiceInterface
	Wallet service.WalletServiceInterface
	Chat   service.ChatServiceInterface
}

func NewHandler(menu service.MenuServiceInterface, orders service.OrderServiceInterface, wallet service.WalletServiceInterface, chat service.ChatServiceInterface) *Handler {
	return &Handler{
		Menu:   menu,
		Orders: orders,
		Wallet: wallet,
		Chat:   chat,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/menu", h.getMenu).Methods("GET")
	r.HandleFunc("/api/menu", h.proposeDish).Methods("POST")
	r.HandleFunc("/api/menu/pending", h.getPendingDishes).Methods("GET")
	r.HandleFunc("/api/menu/{id}/approve", h.approveDish).Methods("PUT")
	r.HandleFunc("/api/menu/{id}", h.editDish).Methods("PUT")
	r.HandleFunc("/api/menu/{id}", h.deleteDish).Methods("DELETE")

	r.HandleFunc("/api/orders", h.getOrders).Methods("GET")
	r.HandleFunc("/api/order", h.placeOrder).Methods("POST")
	r.HandleFunc("/api/order/{id}", h.updateOrderStatus).Methods("PUT")
	r.HandleFunc("/api/order/{id}/rate", h.rateOrder).Methods("PUT")
	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")
	r.HandleFunc("/api/ratings", h.getDishRating).Methods("GET")

	r.HandleFunc("/api/wallet", h.getWallet).Methods("GET")
	r.HandleFunc("/api/wallet/recharge", h.rechargeWallet).Methods("POST")

	r.HandleFunc("/api/messages", h.getMessages).Methods("GET")
	r.HandleFunc("/api/messages", h.postMessage).Methods("POST")
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]interface{}{"success": false, "message": message})
}

// respondError maps domain errors onto the {success:false, message} contract.
func respondError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientFundsError
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &insufficient):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrInvalidState):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeFailure(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("[kitchen-svc] store error: %v", err)
		writeFailure(w, http.StatusServiceUnavailable, domain.ErrStoreUnavailable.Error())
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "kitchen-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.Menu.ListApproved(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dishes)
}

func (h *Handler) getPendingDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.Menu.ListPending(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dishes)
}

func (h *Handler) proposeDish(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string  `json:"name"`
		Emoji      string  `json:"emoji"`
		Category   string  `json:"category"`
		Price      float64 `json:"price"`
		Role       string  `json:"role"`
		IsApproved bool    `json:"isApproved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	role := req.Role
	if req.IsApproved && role == "" {
		// Legacy clients signal chef intent with isApproved.
		role = domain.RoleChef
	}

	dish, err := h.Menu.Propose(r.Context(), req.Name, req.Emoji, req.Category, req.Price, role)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dish)
}

func (h *Handler) approveDish(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	dish, err := h.Menu.Approve(r.Context(), id, req.Price)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) editDish(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req struct {
		Name     *string  `json:"name"`
		Emoji    *string  `json:"emoji"`
		Category *string  `json:"category"`
		Price    *float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	dish, err := h.Menu.Edit(r.Context(), id, service.DishUpdate{
		Name:     req.Name,
		Emoji:    req.Emoji,
		Category: req.Category,
		Price:    req.Price,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) deleteDish(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	dish, err := h.Menu.Delete(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []service.PlacedItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.Orders.Place(r.Context(), req.Items)
	if err != nil {
		respondError(w, err)
		return
	}

	order.QRCode = h.Orders.QRLink(order.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	order, err := h.Orders.Get(id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req struct {
		Status domain.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.Orders.Advance(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) rateOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.Orders.Rate(r.Context(), id, req.Rating)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	qr, err := h.Orders.QRCode(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if len(qr) == 0 {
		writeFailure(w, http.StatusNotFound, "QR code not found")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(qr)
}

func (h *Handler) getDishRating(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("dish")
	if name == "" {
		writeFailure(w, http.StatusBadRequest, "dish query parameter is required")
		return
	}

	avg, count, err := h.Orders.AverageRating(r.Context(), name)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dish":    name,
		"average": avg,
		"count":   count,
	})
}

func (h *Handler) getWallet(w http.ResponseWriter, r *http.Request) {
	balance, err := h.Wallet.Balance()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"balance": balance})
}

func (h *Handler) rechargeWallet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.Wallet.Recharge(req.Amount); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) getMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.Chat.Recent()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender  string `json:"sender"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	msg, err := h.Chat.Post(req.Sender, req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
