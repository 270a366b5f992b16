package server

import (
	"flashdeck/internal/database/dto"

	"github.com/gofiber/fiber/v2"
)

func (s *FiberServer) createCard(c *fiber.Ctx) error {
	deckID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrBadRequest
	}
	req := dto.CreateCardRequest{}
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	userID := currentUserID(c)
	card, err := s.cards.Create(c.Context(), int64(deckID), userID, dto.CardContent{Front: req.Front, Back: req.Back})
	if err != nil {
		return err
	}
	s.notifier.InvalidateDeck(c.Context(), userID, int64(deckID))
	return c.Status(fiber.StatusCreated).JSON(card)
}

func (s *FiberServer) createCards(c *fiber.Ctx) error {
	deckID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrBadRequest
	}
	req := dto.CreateCardsRequest{}
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	userID := currentUserID(c)
	cards, err := s.cards.CreateBatch(c.Context(), int64(deckID), userID, req.Cards)
	if err != nil {
		return err
	}
	s.notifier.InvalidateDeck(c.Context(), userID, int64(deckID))
	return c.Status(fiber.StatusCreated).JSON(cards)
}

func (s *FiberServer) getCard(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrBadRequest
	}
	card, err := s.cards.GetByID(c.Context(), int64(cardID), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(card)
}

func (s *FiberServer) updateCard(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrBadRequest
	}
	req := dto.UpdateCardRequest{}
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	userID := currentUserID(c)
	card, err := s.cards.Update(c.Context(), int64(cardID), userID, req.Front, req.Back)
	if err != nil {
		return err
	}
	s.notifier.InvalidateDeck(c.Context(), userID, card.DeckID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) deleteCard(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrBadRequest
	}
	userID := currentUserID(c)
	deckID, err := s.cards.Delete(c.Context(), int64(cardID), userID)
	if err != nil {
		return err
	}
	s.notifier.InvalidateDeck(c.Context(), userID, deckID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) deleteAllCards(c *fiber.Ctx) error {
	deckID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrBadRequest
	}
	userID := currentUserID(c)
	if err := s.cards.DeleteAllInDeck(c.Context(), int64(deckID), userID); err != nil {
		return err
	}
	s.notifier.InvalidateDeck(c.Context(), userID, int64(deckID))
	return c.SendStatus(fiber.StatusNoContent)
}
