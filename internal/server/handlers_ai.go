package server

import (
	"flashdeck/internal/database/dto"

	"github.com/gofiber/fiber/v2"
)

func (s *FiberServer) generateCards(c *fiber.Ctx) error {
	deckID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrBadRequest
	}
	req := dto.GenerateCardsRequest{}
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	userID := currentUserID(c)
	result, err := s.generator.GenerateCards(c.Context(), userID, int64(deckID), req.DeckTitle, req.DeckDescription)
	if err != nil {
		return err
	}
	s.notifier.InvalidateDeck(c.Context(), userID, int64(deckID))
	return c.JSON(result)
}
