package dto

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type LoginCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CardContent is the writable part of a card, shared by the manual create
// paths and the AI ingestion batch.
type CardContent struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

// CreateDeckRequest creates a deck, optionally together with its first
// cards. When Cards is non-empty the whole request is written atomically.
type CreateDeckRequest struct {
	Title       string        `json:"title" validate:"required,max=255"`
	Description string        `json:"description"`
	Cards       []CardContent `json:"cards" validate:"omitempty,dive"`
}

type UpdateDeckRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}

type CreateCardRequest struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

type CreateCardsRequest struct {
	Cards []CardContent `json:"cards" validate:"required,min=1,dive"`
}

type UpdateCardRequest struct {
	Front *string `json:"front" validate:"omitempty,min=1"`
	Back  *string `json:"back" validate:"omitempty,min=1"`
}

type ResetPasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type GenerateCardsRequest struct {
	DeckTitle       string `json:"deck_title" validate:"required"`
	DeckDescription string `json:"deck_description" validate:"required"`
}
