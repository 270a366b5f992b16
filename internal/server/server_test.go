package server

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"flashdeck/internal/ai"
	"flashdeck/internal/database/repositories"
	"flashdeck/internal/entitlements"
	"flashdeck/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &repositories.ValidationError{Field: "title", Reason: "is required"}, fiber.StatusBadRequest},
		{"not found or denied", repositories.ErrNotFoundOrDenied, fiber.StatusNotFound},
		{"feature gate", &entitlements.DeniedError{Feature: entitlements.FeatureAIGeneration}, fiber.StatusForbidden},
		{"rate limit", fmt.Errorf("wrapped: %w", ai.ErrUpstreamRateLimit), fiber.StatusTooManyRequests},
		{"bad credentials", ai.ErrUpstreamCredentials, fiber.StatusBadGateway},
		{"generation failure", ai.ErrUpstreamGeneration, fiber.StatusBadGateway},
		{"incorrect password", repositories.ErrIncorrectPassword, fiber.StatusUnauthorized},
		{"storage", fmt.Errorf("%w: broke", repositories.ErrStorage), fiber.StatusInternalServerError},
		{"fiber error", fiber.ErrUnauthorized, fiber.StatusUnauthorized},
		{"unknown", fmt.Errorf("mystery"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: errorHandler(logger.NewNop())})
			app.Get("/boom", func(c *fiber.Ctx) error {
				return tc.err
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
