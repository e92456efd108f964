package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/sales"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/session"
)

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadRequest
	}
	return id, nil
}

// writeError maps an error from the terminal's components to a status and
// a JSON body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stock    *cart.StockExceededError
		rejected *checkout.SaleRejectedError
		apiErr   *clients.APIError
	)

	switch {
	case errors.As(err, &stock):
		limit := stock.Max
		middleware.WriteErrorBody(w, http.StatusConflict, middleware.ErrorResponse{
			Error:         err.Error(),
			CorrelationID: middleware.GetCorrelationID(r.Context()),
			Max:           &limit,
		})
	case errors.Is(err, errBadRequest):
		middleware.WriteError(w, r, http.StatusBadRequest, "bad request")
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, session.ErrPasswordMismatch),
		errors.Is(err, session.ErrMissingCredentials),
		isValidation(err):
		middleware.WriteError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrCheckoutInProgress),
		errors.Is(err, session.ErrUserExists):
		middleware.WriteError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, clients.ErrAuthExpired),
		errors.Is(err, session.ErrNoSession),
		errors.Is(err, session.ErrInvalidCredentials):
		middleware.WriteError(w, r, http.StatusUnauthorized, err.Error())
	case errors.As(err, &rejected):
		middleware.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, sales.ErrNotFound):
		middleware.WriteError(w, r, http.StatusNotFound, err.Error())
	case clients.IsNetwork(err):
		middleware.WriteError(w, r, http.StatusBadGateway, "pos api unreachable")
	case errors.As(err, &apiErr):
		middleware.WriteError(w, r, http.StatusBadGateway, err.Error())
	default:
		h.d.Logger.Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		middleware.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func isValidation(err error) bool {
	for _, v := range []error{
		catalog.ErrSKURequired,
		catalog.ErrNameRequired,
		catalog.ErrInvalidPrice,
		catalog.ErrInvalidCost,
		catalog.ErrInvalidStock,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
