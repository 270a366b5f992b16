package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"flashdeck/internal/database/dto"
	"flashdeck/internal/database/models"
	"flashdeck/internal/logger"
)

const maxTitleLen = 255

type DeckRepository interface {
	GetAllForUser(ctx context.Context, userID string) ([]models.DeckSummary, error)
	GetByID(ctx context.Context, id int64, userID string) (*models.Deck, error)
	GetWithCards(ctx context.Context, id int64, userID string) (*models.DeckWithCards, error)
	Create(ctx context.Context, userID, title, description string) (*models.Deck, error)
	CreateWithCards(ctx context.Context, userID, title, description string, cards []dto.CardContent) (*models.Deck, error)
	Update(ctx context.Context, id int64, userID string, title, description *string) error
	Delete(ctx context.Context, id int64, userID string) error
	CountForUser(ctx context.Context, userID string) (int64, error)
}

type deckRepository struct {
	db  *sql.DB
	log *logger.Logger
}

func NewDeckRepository(db *sql.DB, log *logger.Logger) DeckRepository {
	return &deckRepository{db: db, log: log.With("repo", "DeckRepository")}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return validationErr("title", "is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return validationErr("title", "must be at most 255 characters")
	}
	return nil
}

// GetAllForUser lists the user's decks newest first, with card counts
// aggregated in the same query. A storage failure degrades to an empty
// list so the dashboard can still render; the error is only logged.
func (r *deckRepository) GetAllForUser(ctx context.Context, userID string) ([]models.DeckSummary, error) {
	query := `
		SELECT d.id, d.user_id, d.title, COALESCE(d.description, ''), d.created_at, d.updated_at, COUNT(c.id)
		FROM decks d
		LEFT JOIN cards c ON c.deck_id = d.id
		WHERE d.user_id = $1
		GROUP BY d.id
		ORDER BY d.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.log.Error("listing decks failed", "user_id", userID, "error", err)
		return []models.DeckSummary{}, nil
	}
	defer rows.Close()

	decks := []models.DeckSummary{}
	for rows.Next() {
		var d models.DeckSummary
		if err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.Description, &d.CreatedAt, &d.UpdatedAt, &d.CardCount); err != nil {
			r.log.Error("scanning deck row failed", "user_id", userID, "error", err)
			return []models.DeckSummary{}, nil
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("iterating decks failed", "user_id", userID, "error", err)
		return []models.DeckSummary{}, nil
	}
	return decks, nil
}

// GetByID is the deck ownership guard: the lookup is always filtered by
// owner in one query, and a missing deck is indistinguishable from a
// deck owned by someone else.
func (r *deckRepository) GetByID(ctx context.Context, id int64, userID string) (*models.Deck, error) {
	deck := models.Deck{}
	query := `
		SELECT id, user_id, title, COALESCE(description, ''), created_at, updated_at
		FROM decks
		WHERE id = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&deck.ID, &deck.UserID, &deck.Title, &deck.Description, &deck.CreatedAt, &deck.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFoundOrDenied
	}
	if err != nil {
		return nil, storageErr("getting deck", err)
	}
	return &deck, nil
}

func (r *deckRepository) GetWithCards(ctx context.Context, id int64, userID string) (*models.DeckWithCards, error) {
	deck, err := r.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, deck_id, front, back, created_at, updated_at
		FROM cards
		WHERE deck_id = $1
		ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, storageErr("querying deck cards", err)
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		var card models.Card
		if err := rows.Scan(&card.ID, &card.DeckID, &card.Front, &card.Back, &card.CreatedAt, &card.UpdatedAt); err != nil {
			return nil, storageErr("scanning card", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating cards", err)
	}
	return &models.DeckWithCards{Deck: *deck, Cards: cards}, nil
}

func (r *deckRepository) Create(ctx context.Context, userID, title, description string) (*models.Deck, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	deck := models.Deck{UserID: userID, Title: title, Description: description}
	query := `
		INSERT INTO decks (user_id, title, description, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, userID, title, description).Scan(&deck.ID, &deck.CreatedAt, &deck.UpdatedAt)
	if err != nil {
		return nil, storageErr("creating deck", err)
	}
	return &deck, nil
}

// CreateWithCards inserts the deck and its initial cards in one
// transaction. Either the deck and every card persist, or nothing does.
func (r *deckRepository) CreateWithCards(ctx context.Context, userID, title, description string, cards []dto.CardContent) (*models.Deck, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateCards(cards); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("beginning transaction", err)
	}
	defer tx.Rollback()

	deck := models.Deck{UserID: userID, Title: title, Description: description}
	query := `
		INSERT INTO decks (user_id, title, description, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query, userID, title, description).Scan(&deck.ID, &deck.CreatedAt, &deck.UpdatedAt)
	if err != nil {
		return nil, storageErr("creating deck", err)
	}

	if len(cards) > 0 {
		if _, err := insertCards(ctx, tx, deck.ID, cards); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("committing deck with cards", err)
	}
	return &deck, nil
}

// Update applies a partial update. Ownership is checked before any field
// is validated, and updated_at is refreshed even when nothing changed.
func (r *deckRepository) Update(ctx context.Context, id int64, userID string, title, description *string) error {
	deck, err := r.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	newTitle := deck.Title
	if title != nil {
		if err := validateTitle(*title); err != nil {
			return err
		}
		newTitle = *title
	}
	newDescription := deck.Description
	if description != nil {
		newDescription = *description
	}

	query := `
		UPDATE decks
		SET title = $1, description = NULLIF($2, ''), updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND user_id = $4`
	result, err := r.db.ExecContext(ctx, query, newTitle, newDescription, id, userID)
	if err != nil {
		return storageErr("updating deck", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrNotFoundOrDenied
	}
	return nil
}

// Delete removes the deck; its cards go with it through the cascading
// foreign key, not an application-side sweep.
func (r *deckRepository) Delete(ctx context.Context, id int64, userID string) error {
	query := `DELETE FROM decks WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return storageErr("deleting deck", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrNotFoundOrDenied
	}
	return nil
}

func (r *deckRepository) CountForUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM decks WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, storageErr("counting decks", err)
	}
	return count, nil
}
