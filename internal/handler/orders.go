package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bookworm/backend/internal/domain/order"
)

type createOrderRequest struct {
	Items []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
}

type orderItemResponse struct {
	BookID     int64           `json:"book_id"`
	Title      string          `json:"title"`
	CoverPhoto string          `json:"cover_photo,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	ItemTotal  decimal.Decimal `json:"item_total"`
}

type orderResponse struct {
	ID        int64               `json:"id"`
	OrderDate time.Time           `json:"order_date"`
	Amount    decimal.Decimal     `json:"amount"`
	Items     []orderItemResponse `json:"items"`
}

type createOrderResponse struct {
	Success bool          `json:"success"`
	Order   orderResponse `json:"order"`
}

type ordersListResponse struct {
	Total int             `json:"total"`
	Items []orderResponse `json:"items"`
}

// createOrder handles POST /orders. The authenticated user comes from the
// API key middleware.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	items := make([]order.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.Item{BookID: it.BookID, Quantity: it.Quantity}
	}

	o, err := h.orders.CreateOrder(r.Context(), userID, items)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{
		Success: true,
		Order:   h.orderResponse(o, false),
	})
}

// listOrders handles GET /orders, returning the authenticated user's order
// history.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	orders, err := h.orders.ListUserOrders(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ordersListResponse{
		Total: len(orders),
		Items: make([]orderResponse, len(orders)),
	}
	for i := range orders {
		resp.Items[i] = h.orderResponse(&orders[i], false)
	}
	writeJSON(w, http.StatusOK, resp)
}

// orderDetail handles GET /orders/{orderID}, enforcing ownership.
func (h *Handler) orderDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		writeBadRequest(w, "order id must be an integer")
		return
	}

	o, err := h.orders.GetOrderDetail(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.orderResponse(o, true))
}

// orderResponse projects an order into its JSON shape. Cover photos are only
// included on the detail view.
func (h *Handler) orderResponse(o *order.Order, withCovers bool) orderResponse {
	resp := orderResponse{
		ID:        o.ID,
		OrderDate: o.OrderDate,
		Amount:    o.Amount,
		Items:     make([]orderItemResponse, len(o.Items)),
	}
	for i, it := range o.Items {
		resp.Items[i] = orderItemResponse{
			BookID:    it.BookID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     it.Price,
			ItemTotal: it.Total(),
		}
		if withCovers {
			resp.Items[i].CoverPhoto = h.cover(it.CoverPhoto)
		}
	}
	return resp
}
