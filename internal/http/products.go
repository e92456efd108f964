package httpapi

import (
	"net/http"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/catalog"
)

// ListProducts serves the inventory screen: the snapshot, optionally
// filtered by ?q= and grouped by category with ?grouped=true.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.d.Products.Snapshot().Filter(r.URL.Query().Get("q"))
	if products == nil {
		products = []catalog.Product{}
	}

	if grouped, _ := strconv.ParseBool(r.URL.Query().Get("grouped")); grouped {
		groups := catalog.GroupByCategory(products)
		if groups == nil {
			groups = []catalog.CategoryGroup{}
		}
		writeJSON(w, http.StatusOK, groups)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// SearchProducts serves the sale screen suggestions.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	found := h.d.Products.Snapshot().Search(r.URL.Query().Get("q"))
	if found == nil {
		found = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, found)
}

func (h *Handler) ReloadProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.d.Products.Load(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.Input
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.d.Inventory.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in catalog.Input
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.d.Inventory.Update(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.d.Inventory.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
