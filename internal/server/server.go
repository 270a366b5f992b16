package server

import (
	"errors"
	"os"

	"flashdeck/internal/ai"
	"flashdeck/internal/cache"
	"flashdeck/internal/database"
	"flashdeck/internal/database/repositories"
	"flashdeck/internal/entitlements"
	"flashdeck/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
)

type FiberServer struct {
	*fiber.App

	db        database.Service
	log       *logger.Logger
	validate  *validator.Validate
	notifier  cache.Notifier
	gate      entitlements.Provider
	generator *ai.Generator

	decks  repositories.DeckRepository
	cards  repositories.CardRepository
	users  repositories.UserRepository
	search repositories.SearchRepository

	jwtSecret []byte
}

func New(db database.Service, log *logger.Logger, notifier cache.Notifier, aiClient ai.Client) *FiberServer {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "secret"
		log.Warn("JWT_SECRET not set, using insecure default")
	}

	decks := repositories.NewDeckRepository(db.DB(), log)
	cards := repositories.NewCardRepository(db.DB(), decks, log)
	users := repositories.NewUserRepository(db.DB(), log)
	gate := entitlements.NewPlanProvider(users)

	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader: "flashdeck",
			AppName:      "flashdeck",
			ErrorHandler: errorHandler(log),
		}),
		db:        db,
		log:       log,
		validate:  validator.New(),
		notifier:  notifier,
		gate:      gate,
		generator: ai.NewGenerator(gate, decks, cards, aiClient, log),
		decks:     decks,
		cards:     cards,
		users:     users,
		search:    repositories.NewSearchRepository(db.DB()),
		jwtSecret: []byte(jwtSecret),
	}
	server.App.Use(favicon.New())
	server.App.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		MaxAge:       3600,
	}))
	server.App.Use(fiberlogger.New())
	server.App.Use(pprof.New())
	return server
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// errorHandler translates the error taxonomy into HTTP statuses. Storage
// detail stays in the logs; the client only sees a generic failure.
func errorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var validationErr *repositories.ValidationError
		var fieldErrs validator.ValidationErrors
		var deniedErr *entitlements.DeniedError
		var fiberErr *fiber.Error

		switch {
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error()})
		case errors.As(err, &fieldErrs):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fieldErrs.Error()})
		case errors.Is(err, repositories.ErrNotFoundOrDenied):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		case errors.As(err, &deniedErr):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   deniedErr.Error(),
				"feature": string(deniedErr.Feature),
				"upgrade": "/pricing",
			})
		case errors.Is(err, ai.ErrUpstreamRateLimit):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, please try again later"})
		case errors.Is(err, ai.ErrUpstreamCredentials):
			log.Error("generation credentials rejected", "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "generation service is not configured"})
		case errors.Is(err, ai.ErrUpstreamGeneration):
			log.Error("generation failed", "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to generate flashcards, please try again"})
		case errors.Is(err, repositories.ErrIncorrectPassword):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "incorrect password"})
		case errors.Is(err, repositories.ErrStorage):
			log.Error("storage failure", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		case errors.As(err, &fiberErr):
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		default:
			log.Error("unhandled error", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}
}
