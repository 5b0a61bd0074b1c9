package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dreamcandylab/candylab-backend/api/controllers"
	cartcontrollers "github.com/dreamcandylab/candylab-backend/api/controllers/cart"
	jellycontrollers "github.com/dreamcandylab/candylab-backend/api/controllers/jellies"
	ordercontrollers "github.com/dreamcandylab/candylab-backend/api/controllers/orders"
	"github.com/dreamcandylab/candylab-backend/api/middleware"
	"github.com/dreamcandylab/candylab-backend/internal/auth"
	"github.com/dreamcandylab/candylab-backend/internal/cart"
	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	checkoutsvc "github.com/dreamcandylab/candylab-backend/internal/checkout"
	"github.com/dreamcandylab/candylab-backend/internal/jellies"
	"github.com/dreamcandylab/candylab-backend/internal/orders"
	"github.com/dreamcandylab/candylab-backend/internal/pricing"
	"github.com/dreamcandylab/candylab-backend/pkg/auth/session"
	"github.com/dreamcandylab/candylab-backend/pkg/config"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/metrics"
	"github.com/dreamcandylab/candylab-backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer touches.
type RedisStore interface {
	redis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
	Ping(ctx context.Context) error
}

// Dependencies carries everything the HTTP surface is wired to.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker

	Auth     auth.Service
	Register auth.RegisterService

	Resolver   *catalog.Resolver
	Cart       cart.Service
	Calculator *pricing.Calculator
	Checkout   checkoutsvc.Service
	Orders     orders.Recorder
	Jellies    jellies.Service
	Votes      jellycontrollers.VoteLedger

	HTTPMetrics *metrics.HTTP
	Gatherer    prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.RateLimitPolicy{
		Name:     "login",
		Window:   cfg.AuthRateLimit.LoginWindow,
		PerIP:    cfg.AuthRateLimit.LoginIPLimit,
		PerEmail: cfg.AuthRateLimit.LoginEmailLimit,
	}
	registerPolicy := middleware.RateLimitPolicy{
		Name:     "register",
		Window:   cfg.AuthRateLimit.RegisterWindow,
		PerIP:    cfg.AuthRateLimit.RegisterIPLimit,
		PerEmail: cfg.AuthRateLimit.RegisterEmailLimit,
	}

	authenticate := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	idempotent := middleware.Idempotency(deps.Redis, logg)

	cartHandlers := cartcontrollers.NewHandlers(deps.Cart, deps.Calculator, logg)
	jellyHandlers := jellycontrollers.NewHandlers(deps.Jellies, deps.Votes, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(
				middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
				idempotent,
			).Post("/register", controllers.AuthRegister(deps.Register, deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(logg))
			r.Get("/best-sellers", controllers.ProductBestSellers())
			r.Get("/{productId}", controllers.ProductDetail(deps.Resolver, logg))
		})

		// public contest reads
		r.Get("/jellies", jellyHandlers.Latest())
		r.Get("/jellies/ranking", jellyHandlers.Ranking())
		r.Get("/jellies/winner", jellyHandlers.Winner())

		r.Group(func(r chi.Router) {
			r.Use(authenticate, idempotent)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandlers.Fetch())
				r.Delete("/", cartHandlers.Clear())
				r.Post("/items", cartHandlers.AddItem())
				r.Patch("/items/{productId}", cartHandlers.UpdateQuantity())
				r.Delete("/items/{productId}", cartHandlers.RemoveItem())
			})

			r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))
			r.Post("/checkout/quote", controllers.CheckoutQuote(deps.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.Mine(deps.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			})

			r.Post("/jellies", jellyHandlers.Create())
			r.Get("/jellies/mine", jellyHandlers.Mine())
			r.Get("/jellies/voted", jellyHandlers.Voted())
			r.Post("/jellies/{jellyId}/votes", jellyHandlers.Vote())
			r.Delete("/jellies/{jellyId}", jellyHandlers.Delete())

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Get("/orders", ordercontrollers.AdminList(deps.Orders, logg))
				r.Delete("/jellies/{jellyId}", jellyHandlers.Delete())
			})
		})

		r.Get("/jellies/{jellyId}", jellyHandlers.Get())
		r.Get("/jellies/{jellyId}/product", jellyHandlers.Product())
	})

	return r
}

