package verify

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-errors"
)

// AppDeps carries everything the HTTP layer needs, constructed by the
// caller and injected here; the app holds no globals.
type AppDeps struct {
	Guard         *Guard
	Auth          Authenticator
	Verifications *VerificationService
	Users         *UserAdmin
	Activity      ActivityLog
	Analytics     *Analytics
	Logger        Logger

	// RateLimitMax/RateLimitWindow gate admission on /api. Zero values
	// disable the limiter (tests).
	RateLimitMax    int
	RateLimitWindow time.Duration

	// StaticDir is the dashboard root; empty disables static serving.
	StaticDir string
}

// NewApp assembles the fiber application: admission gate, static dashboard,
// health check, and the API routes behind the guard.
func NewApp(deps AppDeps) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = defLogger{}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          newErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())

	if deps.RateLimitMax > 0 {
		app.Use("/api", limiter.New(limiter.Config{
			Max:        deps.RateLimitMax,
			Expiration: deps.RateLimitWindow,
		}))
	}

	if deps.StaticDir != "" {
		app.Static("/", deps.StaticDir)
	}

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	registerRoutes(app, deps)

	return app
}

func registerRoutes(app *fiber.App, deps AppDeps) {
	guard := deps.Guard

	authCtrl := &AuthController{Auth: deps.Auth}
	verifyCtrl := &VerificationController{Service: deps.Verifications}
	userCtrl := &UserController{Admin: deps.Users}
	activityCtrl := &ActivityController{Log: deps.Activity}
	analyticsCtrl := &AnalyticsController{Analytics: deps.Analytics}

	auth := app.Group("/api/auth")
	auth.Post("/login", authCtrl.Login)
	auth.Post("/change-password", guard.Protected(), authCtrl.ChangePassword)

	vrf := app.Group("/api/v1/verify")
	vrf.Get("/", guard.Protected(), verifyCtrl.List)
	vrf.Post("/", guard.RequireAdmin(), verifyCtrl.Upsert)
	vrf.Post("/bulk/discord", guard.Protected(), verifyCtrl.BulkByDiscordIDs)
	vrf.Post("/bulk/ckey", guard.Protected(), verifyCtrl.BulkByCkeys)
	vrf.Get("/ckey/:ckey", guard.Protected(), verifyCtrl.GetByCkey)
	vrf.Put("/ckey/:ckey", guard.RequireAdmin(), verifyCtrl.UpdateByCkey)
	vrf.Delete("/ckey/:ckey", guard.RequireAdmin(), verifyCtrl.DeleteByCkey)
	vrf.Get("/:discord_id", guard.Protected(), verifyCtrl.Get)
	vrf.Put("/:discord_id", guard.RequireAdmin(), verifyCtrl.Update)
	vrf.Delete("/:discord_id", guard.RequireAdmin(), verifyCtrl.Delete)

	users := app.Group("/api/users", guard.RequireAdmin())
	users.Get("/", userCtrl.List)
	users.Post("/", userCtrl.Create)
	users.Put("/:id", userCtrl.UpdateRole)
	users.Delete("/:id", userCtrl.Delete)

	app.Get("/api/activity", guard.RequireAdmin(), activityCtrl.List)
	app.Get("/api/analytics", guard.Protected(), analyticsCtrl.Stats)
}

// newErrorHandler maps the error taxonomy to HTTP responses. Internal
// errors are logged with their cause and surfaced as an opaque message;
// everything else carries its caller-facing message through.
func newErrorHandler(logger Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var rich *errors.Error
		if errors.As(err, &rich) {
			status := rich.Code
			if status < fiber.StatusBadRequest {
				status = statusFromCategory(rich.Category)
			}

			if rich.Category == errors.CategoryInternal {
				logger.Error("request failed path=%s: %v", c.Path(), err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "database error",
				})
			}

			return c.Status(status).JSON(fiber.Map{"error": rich.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		logger.Error("unhandled error path=%s: %v", c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
}

func statusFromCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryBadInput, errors.CategoryValidation:
		return fiber.StatusBadRequest
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
