package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/funnelcart/api/controllers"
	cartcontrollers "github.com/angelmondragon/funnelcart/api/controllers/cart"
	"github.com/angelmondragon/funnelcart/api/middleware"
	enginecart "github.com/angelmondragon/funnelcart/internal/cart"
	"github.com/angelmondragon/funnelcart/internal/catalog"
	"github.com/angelmondragon/funnelcart/internal/history"
	"github.com/angelmondragon/funnelcart/pkg/config"
	"github.com/angelmondragon/funnelcart/pkg/enums"
	"github.com/angelmondragon/funnelcart/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Cart     *enginecart.Cart
	Catalog  catalog.Lookup
	Currency enums.Currency
	Events   history.Service
	Pingers  map[string]controllers.Pinger
	Registry *prometheus.Registry
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/api/v1/packages/{refID}", controllers.PackageMetrics(deps.Catalog, deps.Currency, logg))

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", cartcontrollers.Fetch(deps.Cart, logg))
		r.Post("/items", cartcontrollers.AddItem(deps.Cart, logg))
		r.Patch("/items/{refID}", cartcontrollers.UpdateQuantity(deps.Cart, logg))
		r.Delete("/items/{refID}", cartcontrollers.RemoveItem(deps.Cart, logg))
		r.Post("/swap", cartcontrollers.Swap(deps.Cart, logg))
		r.Post("/clear", cartcontrollers.Clear(deps.Cart, logg))
		r.Post("/coupons", cartcontrollers.ApplyCoupon(deps.Cart, logg))
		r.Delete("/coupons/{code}", cartcontrollers.RemoveCoupon(deps.Cart, logg))
		r.Post("/profile", cartcontrollers.ApplyProfile(deps.Cart, logg))
		r.Delete("/profile", cartcontrollers.RevertProfile(deps.Cart, logg))
		r.Post("/shipping", cartcontrollers.SetShipping(deps.Cart, logg))
		r.Get("/history", cartcontrollers.History(deps.Cart, deps.Events, logg))
	})

	return r
}
