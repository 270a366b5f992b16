package repositories

import (
	"context"
	"database/sql"
	"strings"

	"flashdeck/internal/database/models"
)

type SearchRepository interface {
	SearchQuery(ctx context.Context, query string, userID string) (*models.SearchResult, error)
}

type searchRepository struct {
	db *sql.DB
}

func NewSearchRepository(db *sql.DB) SearchRepository {
	return &searchRepository{db: db}
}

// SearchQuery runs a full-text search over the user's decks and cards.
// Card matches are joined through the owning deck so the result never
// includes another user's content.
func (s *searchRepository) SearchQuery(ctx context.Context, query string, userID string) (*models.SearchResult, error) {
	tsQuery := "to_tsquery('english', $1)"
	decksQuery := `
		SELECT id, user_id, title, COALESCE(description, ''), created_at, updated_at
		FROM decks
		WHERE user_id = $2 AND
		      (to_tsvector('english', title) @@ ` + tsQuery + ` OR
		       to_tsvector('english', COALESCE(description, '')) @@ ` + tsQuery + `)
		ORDER BY ts_rank(to_tsvector('english', title || ' ' || COALESCE(description, '')), ` + tsQuery + `) DESC`
	cardsQuery := `
		SELECT c.id, c.deck_id, c.front, c.back, c.created_at, c.updated_at
		FROM cards c
		INNER JOIN decks d ON d.id = c.deck_id
		WHERE d.user_id = $2 AND
		      (to_tsvector('english', c.front) @@ ` + tsQuery + ` OR
		       to_tsvector('english', c.back) @@ ` + tsQuery + `)
		ORDER BY ts_rank(to_tsvector('english', c.front || ' ' || c.back), ` + tsQuery + `) DESC`

	formattedQuery := formatTsQuery(query)

	deckRows, err := s.db.QueryContext(ctx, decksQuery, formattedQuery, userID)
	if err != nil {
		return nil, storageErr("searching decks", err)
	}
	defer deckRows.Close()

	var decks []models.Deck
	for deckRows.Next() {
		var deck models.Deck
		if err := deckRows.Scan(
			&deck.ID,
			&deck.UserID,
			&deck.Title,
			&deck.Description,
			&deck.CreatedAt,
			&deck.UpdatedAt,
		); err != nil {
			return nil, storageErr("scanning deck result", err)
		}
		decks = append(decks, deck)
	}
	if err := deckRows.Err(); err != nil {
		return nil, storageErr("iterating deck results", err)
	}

	cardRows, err := s.db.QueryContext(ctx, cardsQuery, formattedQuery, userID)
	if err != nil {
		return nil, storageErr("searching cards", err)
	}
	defer cardRows.Close()

	var cards []models.Card
	for cardRows.Next() {
		var card models.Card
		if err := cardRows.Scan(
			&card.ID,
			&card.DeckID,
			&card.Front,
			&card.Back,
			&card.CreatedAt,
			&card.UpdatedAt,
		); err != nil {
			return nil, storageErr("scanning card result", err)
		}
		cards = append(cards, card)
	}
	if err := cardRows.Err(); err != nil {
		return nil, storageErr("iterating card results", err)
	}

	return &models.SearchResult{
		Decks: decks,
		Cards: cards,
	}, nil
}

func formatTsQuery(query string) string {
	words := strings.Fields(query)
	for i, word := range words {
		word = strings.ReplaceAll(word, "'", "''")
		// Prefix matching
		words[i] = word + ":*"
	}
	return strings.Join(words, " & ")
}
