package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/sales"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/session"
)

type Deps struct {
	Logger *zap.Logger
	Cfg    config.Config

	Session   *session.Gate
	Products  *catalog.Source
	Inventory *catalog.Inventory
	Cart      *cart.Manager
	Checkout  *checkout.Submitter
	History   *sales.History
}

type Handler struct {
	d Deps
}

func NewRouter(d Deps) http.Handler {
	h := &Handler{d: d}

	r := chi.NewRouter()
	// Middlewares (outer -> inner)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Recover(d.Logger))

	r.Get("/health", h.Health)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.CurrentSession)
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/logout", h.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(d.Session))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/search", h.SearchProducts)
			r.Post("/reload", h.ReloadProducts)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Put("/items/{id}", h.SetItemQuantity)
			r.Delete("/items/{id}", h.RemoveItem)
			r.Post("/scan", h.EnterCode)
		})

		r.Post("/checkout", h.Checkout)

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.ListSales)
			r.Get("/{id}", h.GetSale)
			r.Get("/{id}/ticket", h.GetTicket)
		})

		r.Get("/reports/daily", h.DailyReport)
		r.Get("/reports/monthly", h.MonthlyReport)
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	loaded, _ := h.d.Products.Loaded()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"service":        "pos-terminal",
		"terminalId":     h.d.Cfg.TerminalID,
		"productsLoaded": loaded,
	})
}
