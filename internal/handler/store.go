package handler

import (
	"log/slog"
	"net/http"

	"ckryptbit/internal/config"
	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/httputil"
	storesvc "ckryptbit/internal/service/store"
)

// StoreHandler handles identity, catalog, cart, order, and asset
// endpoints.
type StoreHandler struct {
	store  *storesvc.Service
	logger *slog.Logger
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(store *storesvc.Service, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{
		store:  store,
		logger: logger,
	}
}

// Login resolves a username to the stub identity. Subsequent requests
// carry the username in the X-Username header.
func (h *StoreHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Username) > config.MaxUsernameLength {
		httputil.RespondError(w, http.StatusBadRequest, "username too long")
		return
	}

	user, err := h.store.Login(req.Username)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, user)
}

// ListProducts returns the catalog.
func (h *StoreHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.store.Products())
}

// CreateProduct adds a catalog entry.
func (h *StoreHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var product models.Product
	if err := httputil.ParseJSON(w, r, &product); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.CreateProduct(r.Context(), product)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, created)
}

// UpdateProduct replaces a catalog entry.
func (h *StoreHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var product models.Product
	if err := httputil.ParseJSON(w, r, &product); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	product.ID = r.PathValue("id")

	updated, err := h.store.UpdateProduct(r.Context(), product)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, updated)
}

// DeleteProduct removes a catalog entry.
func (h *StoreHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if err := h.store.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type cartResponse struct {
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
}

// GetCart returns the caller's cart.
func (h *StoreHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, cartResponse{
		Items: h.store.Cart(user.ID),
		Total: h.store.CartTotal(user.ID),
	})
}

// AddCartItem adds a product to the caller's cart.
func (h *StoreHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.store.AddToCart(user.ID, req.ProductID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, cartResponse{
		Items: h.store.Cart(user.ID),
		Total: h.store.CartTotal(user.ID),
	})
}

// RemoveCartItem drops a product line from the caller's cart.
func (h *StoreHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	h.store.RemoveFromCart(user.ID, r.PathValue("id"))
	httputil.RespondJSON(w, http.StatusOK, cartResponse{
		Items: h.store.Cart(user.ID),
		Total: h.store.CartTotal(user.ID),
	})
}

// Checkout converts the caller's cart into orders and digital assets.
func (h *StoreHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	result, err := h.store.Checkout(r.Context(), user)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, result)
}

// ListOrders returns the caller's orders.
func (h *StoreHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.store.OrdersFor(user.ID))
}

// ListAllOrders returns every order for the admin console.
func (h *StoreHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.store.AllOrders())
}

// SubmitTargetInfo attaches assessment scope to an order and starts the
// scripted progression.
func (h *StoreHandler) SubmitTargetInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var info models.PentestTargetInfo
	if err := httputil.ParseJSON(w, r, &info); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SubmitTargetInfo(r.Context(), r.PathValue("id"), user.ID, info); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SubmitFeedback records a report rating.
func (h *StoreHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Comment) > config.MaxFeedbackCommentLength {
		httputil.RespondError(w, http.StatusBadRequest, "comment too long")
		return
	}

	if err := h.store.SubmitFeedback(r.Context(), r.PathValue("id"), user.ID, req.Rating, req.Comment); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcknowledgeUpdate clears the pending-admin-update marker on an order.
func (h *StoreHandler) AcknowledgeUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.store.AcknowledgeUpdate(r.Context(), r.PathValue("id"), user.ID); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateOrderStatus overrides an order's status from the admin console.
func (h *StoreHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req struct {
		Status     models.PentestStatus `json:"status"`
		AdminNotes string               `json:"admin_notes"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.AdminUpdateStatus(r.Context(), r.PathValue("id"), req.Status, req.AdminNotes); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NotifyCustomer marks the latest admin update as communicated.
func (h *StoreHandler) NotifyCustomer(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if err := h.store.NotifyCustomer(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadReport streams the plain-text report deliverable.
func (h *StoreHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	filename, content, err := h.store.ReportText(r.PathValue("id"), user.ID)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write([]byte(content))
}

// ListAssets returns the caller's acquired digital assets.
func (h *StoreHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.store.AssetsFor(user.ID))
}
