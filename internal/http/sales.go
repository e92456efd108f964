package httpapi

import (
	"bytes"
	"net/http"
	"time"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/sales"
)

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	list, err := h.d.History.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []sales.Sale{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.d.History.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetTicket renders the printable receipt in the terminal's local time.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.d.History.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := sales.RenderTicket(&buf, s, time.Local); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// DailyReport totals sales per day, newest first. ?month=YYYY-MM narrows it.
func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			h.writeError(w, r, errBadRequest)
			return
		}
	}
	totals, err := h.d.History.Daily(r.Context(), month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeReport(w, totals)
}

// MonthlyReport totals sales per month, newest first. ?year=YYYY narrows it.
func (h *Handler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	year := r.URL.Query().Get("year")
	if year != "" {
		if _, err := time.Parse("2006", year); err != nil {
			h.writeError(w, r, errBadRequest)
			return
		}
	}
	totals, err := h.d.History.Monthly(r.Context(), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeReport(w, totals)
}

func writeReport(w http.ResponseWriter, totals []sales.PeriodTotals) {
	if totals == nil {
		totals = []sales.PeriodTotals{}
	}
	writeJSON(w, http.StatusOK, totals)
}
