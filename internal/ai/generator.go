package ai

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"flashdeck/internal/database/dto"
	"flashdeck/internal/database/models"
	"flashdeck/internal/database/repositories"
	"flashdeck/internal/entitlements"
	"flashdeck/internal/logger"
)

// GeneratedBatchSize is the contract with the generation service: every
// successful run yields exactly this many cards.
const GeneratedBatchSize = 20

const (
	minFrontLen = 5
	maxFrontLen = 500
	minBackLen  = 10
	maxBackLen  = 1000
)

type Result struct {
	CardsGenerated int           `json:"cards_generated"`
	Cards          []models.Card `json:"cards"`
}

// Generator is the bulk-ingestion pipeline: entitlement gate, ownership
// guard, upstream generation, structural validation, batch insert.
type Generator struct {
	gate   entitlements.Provider
	decks  repositories.DeckRepository
	cards  repositories.CardRepository
	client Client
	log    *logger.Logger
}

func NewGenerator(gate entitlements.Provider, decks repositories.DeckRepository, cards repositories.CardRepository, client Client, log *logger.Logger) *Generator {
	return &Generator{
		gate:   gate,
		decks:  decks,
		cards:  cards,
		client: client,
		log:    log.With("service", "Generator"),
	}
}

func buildPrompt(title, description string) string {
	return fmt.Sprintf(`Generate exactly %d educational flashcards about "%s" with the following context: %s

Requirements:
- Each question should be clear, specific, and test understanding
- Each answer should be comprehensive yet concise (2-4 sentences maximum)
- Use simple language appropriate for learning
- Avoid ambiguous questions
- Focus on key concepts and practical knowledge
- Ensure factual accuracy
- Cover different aspects of the topic
- Progress from basic to more advanced concepts
- Use the deck description to understand the scope and focus of the flashcards

Format each card with:
- Front: A clear question or prompt
- Back: A detailed but digestible answer`, GeneratedBatchSize, title, description)
}

// validateBatch rejects any batch that violates the output contract. A
// wrong count or an out-of-bounds field fails the whole batch; nothing
// is trimmed or padded.
func validateBatch(cards []dto.CardContent) error {
	if len(cards) != GeneratedBatchSize {
		return fmt.Errorf("%w: expected %d cards, got %d", ErrUpstreamGeneration, GeneratedBatchSize, len(cards))
	}
	for i, card := range cards {
		frontLen := utf8.RuneCountInString(card.Front)
		if frontLen < minFrontLen || frontLen > maxFrontLen {
			return fmt.Errorf("%w: card %d front length %d out of bounds [%d,%d]", ErrUpstreamGeneration, i, frontLen, minFrontLen, maxFrontLen)
		}
		backLen := utf8.RuneCountInString(card.Back)
		if backLen < minBackLen || backLen > maxBackLen {
			return fmt.Errorf("%w: card %d back length %d out of bounds [%d,%d]", ErrUpstreamGeneration, i, backLen, minBackLen, maxBackLen)
		}
	}
	return nil
}

// GenerateCards runs one ingestion for the deck. The upstream call
// happens outside any transaction; only the final insert is atomic, so
// two concurrent runs for the same deck may both append a batch.
func (g *Generator) GenerateCards(ctx context.Context, userID string, deckID int64, deckTitle, deckDescription string) (*Result, error) {
	if strings.TrimSpace(deckTitle) == "" {
		return nil, &repositories.ValidationError{Field: "deck_title", Reason: "is required"}
	}
	// The description is a hard precondition here, not optional context:
	// without it the prompt has no scope.
	if strings.TrimSpace(deckDescription) == "" {
		return nil, &repositories.ValidationError{Field: "deck_description", Reason: "is required for AI generation"}
	}

	allowed, err := g.gate.Has(ctx, userID, entitlements.FeatureAIGeneration)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &entitlements.DeniedError{Feature: entitlements.FeatureAIGeneration}
	}

	if _, err := g.decks.GetByID(ctx, deckID, userID); err != nil {
		return nil, err
	}

	generated, err := g.client.GenerateDeckCards(ctx, buildPrompt(deckTitle, deckDescription))
	if err != nil {
		return nil, err
	}
	if err := validateBatch(generated); err != nil {
		g.log.Warn("discarding malformed batch", "deck_id", deckID, "error", err)
		return nil, err
	}

	// Ownership was just verified; CreateBatch re-checks it, which also
	// covers the deck being deleted while the upstream call was in
	// flight.
	inserted, err := g.cards.CreateBatch(ctx, deckID, userID, generated)
	if err != nil {
		return nil, err
	}

	g.log.Info("generated cards", "deck_id", deckID, "count", len(inserted))
	return &Result{CardsGenerated: len(inserted), Cards: inserted}, nil
}
