package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"flashdeck/internal/database/dto"
	"flashdeck/internal/database/models"
	"flashdeck/internal/logger"
)

type CardRepository interface {
	Create(ctx context.Context, deckID int64, userID string, content dto.CardContent) (*models.Card, error)
	CreateBatch(ctx context.Context, deckID int64, userID string, cards []dto.CardContent) ([]models.Card, error)
	GetByID(ctx context.Context, id int64, userID string) (*models.Card, error)
	Update(ctx context.Context, id int64, userID string, front, back *string) (*models.Card, error)
	Delete(ctx context.Context, id int64, userID string) (int64, error)
	DeleteAllInDeck(ctx context.Context, deckID int64, userID string) error
}

type cardRepository struct {
	db    *sql.DB
	decks DeckRepository
	log   *logger.Logger
}

func NewCardRepository(db *sql.DB, decks DeckRepository, log *logger.Logger) CardRepository {
	return &cardRepository{db: db, decks: decks, log: log.With("repo", "CardRepository")}
}

func validateCards(cards []dto.CardContent) error {
	for i, card := range cards {
		if strings.TrimSpace(card.Front) == "" {
			return validationErr(fmt.Sprintf("cards[%d].front", i), "is required")
		}
		if strings.TrimSpace(card.Back) == "" {
			return validationErr(fmt.Sprintf("cards[%d].back", i), "is required")
		}
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// insertCards writes the batch in a single multi-row INSERT. It runs
// against either the pool or an open transaction; ownership of deckID
// must already be verified by the caller.
func insertCards(ctx context.Context, q querier, deckID int64, cards []dto.CardContent) ([]models.Card, error) {
	var query strings.Builder
	query.WriteString(`INSERT INTO cards (deck_id, front, back, created_at, updated_at) VALUES `)
	args := make([]any, 0, len(cards)*3)
	for i, card := range cards {
		if i > 0 {
			query.WriteString(", ")
		}
		fmt.Fprintf(&query, "($%d, $%d, $%d, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)", i*3+1, i*3+2, i*3+3)
		args = append(args, deckID, card.Front, card.Back)
	}
	query.WriteString(` RETURNING id, deck_id, front, back, created_at, updated_at`)

	rows, err := q.QueryContext(ctx, query.String(), args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			// The deck was deleted between the ownership check and the
			// insert. Surfaced exactly like a deck that never existed.
			return nil, ErrNotFoundOrDenied
		}
		return nil, storageErr("inserting cards", err)
	}
	defer rows.Close()

	inserted := make([]models.Card, 0, len(cards))
	for rows.Next() {
		var card models.Card
		if err := rows.Scan(&card.ID, &card.DeckID, &card.Front, &card.Back, &card.CreatedAt, &card.UpdatedAt); err != nil {
			return nil, storageErr("scanning inserted card", err)
		}
		inserted = append(inserted, card)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating inserted cards", err)
	}
	return inserted, nil
}

func (r *cardRepository) Create(ctx context.Context, deckID int64, userID string, content dto.CardContent) (*models.Card, error) {
	if _, err := r.decks.GetByID(ctx, deckID, userID); err != nil {
		return nil, err
	}
	if err := validateCards([]dto.CardContent{content}); err != nil {
		return nil, err
	}

	card := models.Card{DeckID: deckID, Front: content.Front, Back: content.Back}
	query := `
		INSERT INTO cards (deck_id, front, back, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, deckID, content.Front, content.Back).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFoundOrDenied
		}
		return nil, storageErr("creating card", err)
	}
	return &card, nil
}

// CreateBatch inserts all cards in one statement after a single deck
// ownership check. An empty batch returns an empty result without
// touching storage.
func (r *cardRepository) CreateBatch(ctx context.Context, deckID int64, userID string, cards []dto.CardContent) ([]models.Card, error) {
	if _, err := r.decks.GetByID(ctx, deckID, userID); err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return []models.Card{}, nil
	}
	if err := validateCards(cards); err != nil {
		return nil, err
	}
	return insertCards(ctx, r.db, deckID, cards)
}

// GetByID is the card ownership guard: ownership is established by
// joining through the owning deck in the same query.
func (r *cardRepository) GetByID(ctx context.Context, id int64, userID string) (*models.Card, error) {
	card := models.Card{}
	query := `
		SELECT c.id, c.deck_id, c.front, c.back, c.created_at, c.updated_at
		FROM cards c
		INNER JOIN decks d ON d.id = c.deck_id
		WHERE c.id = $1 AND d.user_id = $2`
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&card.ID, &card.DeckID, &card.Front, &card.Back, &card.CreatedAt, &card.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFoundOrDenied
	}
	if err != nil {
		return nil, storageErr("getting card", err)
	}
	return &card, nil
}

// Update applies a partial update and refreshes updated_at regardless of
// whether front or back actually changed. Ownership is checked by the
// same statement through the owning deck, so a miss and a foreign card
// are indistinguishable.
func (r *cardRepository) Update(ctx context.Context, id int64, userID string, front, back *string) (*models.Card, error) {
	if (front != nil && strings.TrimSpace(*front) == "") || (back != nil && strings.TrimSpace(*back) == "") {
		// Ownership still wins over a malformed payload.
		if _, err := r.GetByID(ctx, id, userID); err != nil {
			return nil, err
		}
		if front != nil && strings.TrimSpace(*front) == "" {
			return nil, validationErr("front", "is required")
		}
		return nil, validationErr("back", "is required")
	}

	card := models.Card{}
	query := `
		UPDATE cards c
		SET front = COALESCE($1, c.front), back = COALESCE($2, c.back), updated_at = CURRENT_TIMESTAMP
		FROM decks d
		WHERE c.id = $3 AND d.id = c.deck_id AND d.user_id = $4
		RETURNING c.id, c.deck_id, c.front, c.back, c.created_at, c.updated_at`
	err := r.db.QueryRowContext(ctx, query, front, back, id, userID).Scan(&card.ID, &card.DeckID, &card.Front, &card.Back, &card.CreatedAt, &card.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFoundOrDenied
	}
	if err != nil {
		return nil, storageErr("updating card", err)
	}
	return &card, nil
}

// Delete removes the card in one ownership-scoped statement and reports
// which deck it belonged to.
func (r *cardRepository) Delete(ctx context.Context, id int64, userID string) (int64, error) {
	var deckID int64
	query := `
		DELETE FROM cards c
		USING decks d
		WHERE c.id = $1 AND d.id = c.deck_id AND d.user_id = $2
		RETURNING c.deck_id`
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&deckID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFoundOrDenied
	}
	if err != nil {
		return 0, storageErr("deleting card", err)
	}
	return deckID, nil
}

func (r *cardRepository) DeleteAllInDeck(ctx context.Context, deckID int64, userID string) error {
	if _, err := r.decks.GetByID(ctx, deckID, userID); err != nil {
		return err
	}

	query := `DELETE FROM cards WHERE deck_id = $1`
	if _, err := r.db.ExecContext(ctx, query, deckID); err != nil {
		return storageErr("deleting deck cards", err)
	}
	return nil
}
