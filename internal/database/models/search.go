package models

type SearchResult struct {
	Decks []Deck `json:"decks"`
	Cards []Card `json:"cards"`
}
