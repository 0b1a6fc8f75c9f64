package ledgerd

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/mybank/mybank/internal/config"
	"github.com/mybank/mybank/internal/ledgerd/store"
	"github.com/mybank/mybank/internal/middleware"
)

const maxLoginAttemptsPerMinute = 5

// Server wraps the Fiber application serving the ledger API.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// New instantiates the HTTP server and wires middleware and routes.
func New(cfg config.Config, st store.Store, cache *redis.Client, log *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	registerRoutes(app, NewHandler(st, NewLogNotifier(log), log), cfg, cache, log)

	return &Server{app: app, cfg: cfg}
}

func registerRoutes(app *fiber.App, h *Handler, cfg config.Config, cache *redis.Client, log *slog.Logger) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	api := app.Group("/api/v1")
	api.Post("/login", middleware.LoginRateLimit(cache, maxLoginAttemptsPerMinute), h.Login)
	// Transfers are the only mutating endpoint; replay protection applies
	// there, keyed by the client's per-draft transaction id.
	transfers := api.Group("/transfers")
	if cache != nil {
		transfers.Use(middleware.Idempotency(cache, cfg.IdempotencyTTL, log))
	}
	transfers.Post("/", h.Transfer)
	api.Get("/transactions", h.Transactions)
	api.Get("/statements", h.Statement)
}

// App exposes the underlying Fiber application, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
