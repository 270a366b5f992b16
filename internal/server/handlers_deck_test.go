package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"flashdeck/internal/cache"
	"flashdeck/internal/database/dto"
	"flashdeck/internal/database/models"
	"flashdeck/internal/database/repositories"
	"flashdeck/internal/entitlements"
	"flashdeck/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGate struct {
	features map[entitlements.Feature]bool
}

func (f fakeGate) Has(ctx context.Context, userID string, feature entitlements.Feature) (bool, error) {
	return f.features[feature], nil
}

type quotaDecks struct {
	count      int64
	countCalls int
	created    int
}

func (f *quotaDecks) Create(ctx context.Context, userID, title, description string) (*models.Deck, error) {
	f.created++
	return &models.Deck{ID: 1, UserID: userID, Title: title, Description: description}, nil
}
func (f *quotaDecks) CountForUser(ctx context.Context, userID string) (int64, error) {
	f.countCalls++
	return f.count, nil
}
func (f *quotaDecks) GetAllForUser(ctx context.Context, userID string) ([]models.DeckSummary, error) {
	panic("unexpected call")
}
func (f *quotaDecks) GetByID(ctx context.Context, id int64, userID string) (*models.Deck, error) {
	panic("unexpected call")
}
func (f *quotaDecks) GetWithCards(ctx context.Context, id int64, userID string) (*models.DeckWithCards, error) {
	panic("unexpected call")
}
func (f *quotaDecks) CreateWithCards(ctx context.Context, userID, title, description string, cards []dto.CardContent) (*models.Deck, error) {
	panic("unexpected call")
}
func (f *quotaDecks) Update(ctx context.Context, id int64, userID string, title, description *string) error {
	panic("unexpected call")
}
func (f *quotaDecks) Delete(ctx context.Context, id int64, userID string) error {
	panic("unexpected call")
}

func newDeckTestApp(gate entitlements.Provider, decks repositories.DeckRepository) *fiber.App {
	s := &FiberServer{
		App:      fiber.New(fiber.Config{ErrorHandler: errorHandler(logger.NewNop())}),
		log:      logger.NewNop(),
		validate: validator.New(),
		notifier: cache.Noop{},
		gate:     gate,
		decks:    decks,
	}
	s.App.Use(func(c *fiber.Ctx) error {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
		c.Locals("user", token)
		return c.Next()
	})
	s.App.Post("/decks", s.createDeck)
	return s.App
}

func TestCreateDeckFreePlanCap(t *testing.T) {
	decks := &quotaDecks{count: 3}
	app := newDeckTestApp(fakeGate{}, decks)

	req := httptest.NewRequest("POST", "/decks", bytes.NewBufferString(`{"title":"One too many"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, decks.created)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, string(entitlements.FeatureUnlimitedDecks), body["feature"])
	assert.Equal(t, "/pricing", body["upgrade"])
}

func TestCreateDeckFreePlanUnderCap(t *testing.T) {
	decks := &quotaDecks{count: 2}
	app := newDeckTestApp(fakeGate{}, decks)

	req := httptest.NewRequest("POST", "/decks", bytes.NewBufferString(`{"title":"Still room"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, decks.created)
}

func TestCreateDeckProPlanSkipsCount(t *testing.T) {
	decks := &quotaDecks{count: 50}
	gate := fakeGate{features: map[entitlements.Feature]bool{entitlements.FeatureUnlimitedDecks: true}}
	app := newDeckTestApp(gate, decks)

	req := httptest.NewRequest("POST", "/decks", bytes.NewBufferString(`{"title":"Deck fifty-one"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, decks.created)
	assert.Equal(t, 0, decks.countCalls, "pro users should not be counted")
}
