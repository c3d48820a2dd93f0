package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/bookworm/backend/internal/domain/catalog"
	"github.com/bookworm/backend/internal/domain/order"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure here is unrecoverable.
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates a domain error into an HTTP status and JSON body.
// Unrecognized errors become opaque 500s and are logged with the request
// scoped logger.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		qtyErr  *order.InvalidQuantityError
		bookErr *order.BookNotFoundError
		status  int
		message string
	)

	switch {
	case errors.Is(err, order.ErrEmptyItems):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &qtyErr):
		status, message = http.StatusBadRequest, qtyErr.Error()
	case errors.As(err, &bookErr):
		status, message = http.StatusNotFound, bookErr.Error()
	case errors.Is(err, catalog.ErrBookNotFound):
		status, message = http.StatusNotFound, "book not found"
	case errors.Is(err, order.ErrOrderNotFound):
		status, message = http.StatusNotFound, "order not found"
	case errors.Is(err, order.ErrForbidden):
		status, message = http.StatusForbidden, "not authorized to view this order"
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		status, message = http.StatusInternalServerError, "internal server error"
	}

	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}
