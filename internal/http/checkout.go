package httpapi

import "net/http"

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	conf, err := h.d.Checkout.Submit(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}
