package repositories

import (
	"context"
	"strings"
	"testing"
	"time"

	"flashdeck/internal/database/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDeckValidation(t *testing.T) {
	decks, _ := newTestRepos()
	ctx := context.Background()
	userID := newTestUserID()

	_, err := decks.Create(ctx, userID, "", "")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "title", validationErr.Field)

	_, err = decks.Create(ctx, userID, strings.Repeat("x", 256), "")
	require.ErrorAs(t, err, &validationErr)
}

func TestListDecksWithCardCounts(t *testing.T) {
	decks, cards := newTestRepos()
	ctx := context.Background()
	userID := newTestUserID()

	first, err := decks.Create(ctx, userID, "Spanish", "basics")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := decks.Create(ctx, userID, "French", "")
	require.NoError(t, err)

	_, err = cards.CreateBatch(ctx, first.ID, userID, []dto.CardContent{
		{Front: "Hello", Back: "Hola"},
		{Front: "Goodbye", Back: "Adios"},
	})
	require.NoError(t, err)

	summaries, err := decks.GetAllForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Newest first
	assert.Equal(t, second.ID, summaries[0].ID)
	assert.Equal(t, int64(0), summaries[0].CardCount)
	assert.Equal(t, first.ID, summaries[1].ID)
	assert.Equal(t, int64(2), summaries[1].CardCount)
}

func TestListDecksEmptyForNewUser(t *testing.T) {
	decks, _ := newTestRepos()

	summaries, err := decks.GetAllForUser(context.Background(), newTestUserID())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestCrossUserAccessDenied(t *testing.T) {
	decks, cards := newTestRepos()
	ctx := context.Background()
	owner := newTestUserID()
	intruder := newTestUserID()

	deck, err := decks.Create(ctx, owner, "Private", "not yours")
	require.NoError(t, err)
	card, err := cards.Create(ctx, deck.ID, owner, dto.CardContent{Front: "Question", Back: "Answer"})
	require.NoError(t, err)

	_, err = decks.GetByID(ctx, deck.ID, intruder)
	assert.ErrorIs(t, err, ErrNotFoundOrDenied)

	_, err = decks.GetWithCards(ctx, deck.ID, intruder)
	assert.ErrorIs(t, err, ErrNotFoundOrDenied)

	title := "stolen"
	assert.ErrorIs(t, decks.Update(ctx, deck.ID, intruder, &title, nil), ErrNotFoundOrDenied)
	assert.ErrorIs(t, decks.Delete(ctx, deck.ID, intruder), ErrNotFoundOrDenied)

	_, err = cards.Create(ctx, deck.ID, intruder, dto.CardContent{Front: "sneak", Back: "sneak"})
	assert.ErrorIs(t, err, ErrNotFoundOrDenied)

	_, err = cards.CreateBatch(ctx, deck.ID, intruder, []dto.CardContent{{Front: "sneak", Back: "sneak"}})
	assert.ErrorIs(t, err, ErrNotFoundOrDenied)

	_, err = cards.GetByID(ctx, card.ID, intruder)
	assert.ErrorIs(t, err, ErrNotFoundOrDenied)

	front := "defaced"
	_, err = cards.Update(ctx, card.ID, intruder, &front, nil)
	assert.ErrorIs(t, err, ErrNotFoundOrDenied)
	_, err = cards.Delete(ctx, card.ID, intruder)
	assert.ErrorIs(t, err, ErrNotFoundOrDenied)
	assert.ErrorIs(t, cards.DeleteAllInDeck(ctx, deck.ID, intruder), ErrNotFoundOrDenied)

	// The owner is unaffected
	got, err := decks.GetWithCards(ctx, deck.ID, owner)
	require.NoError(t, err)
	assert.Len(t, got.Cards, 1)
}

func TestCreateDeckWithCardsAtomicity(t *testing.T) {
	decks, _ := newTestRepos()
	ctx := context.Background()
	userID := newTestUserID()

	// Postgres rejects NUL bytes in text, so the card insert fails after
	// the deck insert succeeded inside the transaction.
	_, err := decks.CreateWithCards(ctx, userID, "Doomed", "", []dto.CardContent{
		{Front: "fine", Back: "fine"},
		{Front: "bad\x00byte", Back: "whatever"},
	})
	require.Error(t, err)

	count, err := decks.CountForUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "failed card insert must roll back the deck")
}

func TestCreateDeckWithCardsScenario(t *testing.T) {
	decks, cards := newTestRepos()
	ctx := context.Background()
	userID := newTestUserID()

	deck, err := decks.CreateWithCards(ctx, userID, "Spanish", "basics", []dto.CardContent{
		{Front: "Hello", Back: "Hola"},
	})
	require.NoError(t, err)
	assert.NotZero(t, deck.ID)

	got, err := decks.GetWithCards(ctx, deck.ID, userID)
	require.NoError(t, err)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, "Hola", got.Cards[0].Back)
	cardID := got.Cards[0].ID

	require.NoError(t, decks.Delete(ctx, deck.ID, userID))

	_, err = decks.GetWithCards(ctx, deck.ID, userID)
	assert.ErrorIs(t, err, ErrNotFoundOrDenied)

	// Cascade: the card went with the deck
	_, err = cards.GetByID(ctx, cardID, userID)
	assert.ErrorIs(t, err, ErrNotFoundOrDenied)
}

func TestUpdateDeckPartial(t *testing.T) {
	decks, _ := newTestRepos()
	ctx := context.Background()
	userID := newTestUserID()

	deck, err := decks.Create(ctx, userID, "Original", "keep me")
	require.NoError(t, err)

	title := "Renamed"
	require.NoError(t, decks.Update(ctx, deck.ID, userID, &title, nil))

	got, err := decks.GetByID(ctx, deck.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "keep me", got.Description)
	assert.True(t, got.UpdatedAt.After(deck.UpdatedAt))
}

func TestUpdateDeckNoOpRefreshesUpdatedAt(t *testing.T) {
	decks, _ := newTestRepos()
	ctx := context.Background()
	userID := newTestUserID()

	deck, err := decks.Create(ctx, userID, "Static", "")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, decks.Update(ctx, deck.ID, userID, nil, nil))

	got, err := decks.GetByID(ctx, deck.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "Static", got.Title)
	assert.True(t, got.UpdatedAt.After(deck.UpdatedAt))
}

func TestGetWithCardsOrderedByMostRecentlyUpdated(t *testing.T) {
	decks, cards := newTestRepos()
	ctx := context.Background()
	userID := newTestUserID()

	deck, err := decks.Create(ctx, userID, "Ordering", "")
	require.NoError(t, err)

	older, err := cards.Create(ctx, deck.ID, userID, dto.CardContent{Front: "first", Back: "first back"})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = cards.Create(ctx, deck.ID, userID, dto.CardContent{Front: "second", Back: "second back"})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	front := "first edited"
	_, err = cards.Update(ctx, older.ID, userID, &front, nil)
	require.NoError(t, err)

	got, err := decks.GetWithCards(ctx, deck.ID, userID)
	require.NoError(t, err)
	require.Len(t, got.Cards, 2)
	assert.Equal(t, older.ID, got.Cards[0].ID, "edited card should sort first")
}
