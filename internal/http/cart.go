package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/middleware"
)

type cartResponse struct {
	Lines              []cart.LineView `json:"lines"`
	Units              int             `json:"units"`
	Total              decimal.Decimal `json:"total"`
	CheckoutInProgress bool            `json:"checkoutInProgress"`
}

func (h *Handler) cartView() cartResponse {
	c := h.d.Cart.Cart()
	return cartResponse{
		Lines:              h.d.Cart.Lines(),
		Units:              c.Units(),
		Total:              h.d.Cart.Total(),
		CheckoutInProgress: h.d.Checkout.InProgress(),
	}
}

// stockNotice is the 409 body of a cart mutation that hit the stock limit.
// A clamp has already been applied, so the resulting cart travels with it.
type stockNotice struct {
	middleware.ErrorResponse
	Cart cartResponse `json:"cart"`
}

// writeCartResult answers a cart mutation with the new cart or the error.
func (h *Handler) writeCartResult(w http.ResponseWriter, r *http.Request, err error) {
	var stock *cart.StockExceededError
	switch {
	case errors.As(err, &stock):
		limit := stock.Max
		writeJSON(w, http.StatusConflict, stockNotice{
			ErrorResponse: middleware.ErrorResponse{
				Error:         err.Error(),
				CorrelationID: middleware.GetCorrelationID(r.Context()),
				Max:           &limit,
			},
			Cart: h.cartView(),
		})
	case err != nil:
		h.writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, h.cartView())
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.d.Cart.Clear(r.Context())
	writeJSON(w, http.StatusOK, h.cartView())
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, ok := h.d.Products.Product(req.ProductID)
	if !ok {
		h.writeError(w, r, catalog.ErrNotFound)
		return
	}
	_, err := h.d.Cart.AddOne(r.Context(), p)
	h.writeCartResult(w, r, err)
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Quantity == nil {
		h.writeError(w, r, errBadRequest)
		return
	}
	_, err = h.d.Cart.SetQuantity(r.Context(), id, *req.Quantity)
	h.writeCartResult(w, r, err)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.d.Cart.Remove(r.Context(), id)
	writeJSON(w, http.StatusOK, h.cartView())
}

type enterCodeRequest struct {
	Code string `json:"code"`
}

// EnterCode handles a code typed at the till. Unlike the scanner, typed
// codes match the SKU regardless of case.
func (h *Handler) EnterCode(w http.ResponseWriter, r *http.Request) {
	var req enterCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, ok := h.d.Products.Snapshot().FindSKU(req.Code)
	if !ok {
		h.writeError(w, r, fmt.Errorf("%w: sku %q", catalog.ErrNotFound, req.Code))
		return
	}
	_, err := h.d.Cart.AddOne(r.Context(), p)
	h.writeCartResult(w, r, err)
}
