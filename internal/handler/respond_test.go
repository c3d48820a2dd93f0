package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookworm/backend/internal/domain/catalog"
	"github.com/bookworm/backend/internal/domain/order"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"empty items", order.ErrEmptyItems, http.StatusBadRequest},
		{"invalid quantity", &order.InvalidQuantityError{BookID: 1, Quantity: 9}, http.StatusBadRequest},
		{"book not found in cart", &order.BookNotFoundError{BookID: 1}, http.StatusNotFound},
		{"book not found", catalog.ErrBookNotFound, http.StatusNotFound},
		{"order not found", order.ErrOrderNotFound, http.StatusNotFound},
		{"forbidden", order.ErrForbidden, http.StatusForbidden},
		{"wrapped order not found", errors.Wrap(order.ErrOrderNotFound, "get order"), http.StatusNotFound},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(zctx.Base(req.Context(), zap.NewNop()))
			w := httptest.NewRecorder()

			writeError(w, req, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.status, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestWriteError_InternalHidesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(zctx.Base(req.Context(), zap.NewNop()))
	w := httptest.NewRecorder()

	writeError(w, req, errors.New("pq: connection refused"))

	resp := decodeError(t, w)
	assert.Equal(t, "internal server error", resp.Message)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestListBooks_BadQueryParams(t *testing.T) {
	h := New(Config{}, nil, nil)

	for _, q := range []string{
		"category_id=abc",
		"author_id=x",
		"min_rating=high",
		"page=one",
		"size=big",
	} {
		req := httptest.NewRequest(http.MethodGet, "/books?"+q, nil)
		w := httptest.NewRecorder()

		h.listBooks(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", q)
	}
}

func TestBookDetail_BadID(t *testing.T) {
	h := New(Config{}, nil, nil)
	r := h.Routes(&stubAPIKeyRepo{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/books/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCover(t *testing.T) {
	h := New(Config{ImageBaseURL: "https://cdn.example.com/covers"}, nil, nil)
	assert.Equal(t, "https://cdn.example.com/covers/book1.jpg", h.cover("book1.jpg"))
	assert.Equal(t, "", h.cover(""))

	bare := New(Config{}, nil, nil)
	assert.Equal(t, "book1.jpg", bare.cover("book1.jpg"))
}
