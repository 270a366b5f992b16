package models

import (
	"time"
)

type Deck struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeckSummary is the dashboard row: a deck plus its aggregated card count.
type DeckSummary struct {
	Deck
	CardCount int64 `json:"card_count"`
}

type DeckWithCards struct {
	Deck
	Cards []Card `json:"cards"`
}
