package server

import (
	"flashdeck/internal/database/dto"
	"flashdeck/internal/entitlements"

	"github.com/gofiber/fiber/v2"
)

func (s *FiberServer) listDecks(c *fiber.Ctx) error {
	decks, err := s.decks.GetAllForUser(c.Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(decks)
}

func (s *FiberServer) getDeck(c *fiber.Ctx) error {
	deckID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrBadRequest
	}
	deck, err := s.decks.GetWithCards(c.Context(), int64(deckID), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(deck)
}

// checkDeckQuota enforces the free-plan cap. Pro users hold the
// unlimited_decks feature and skip the count entirely.
func (s *FiberServer) checkDeckQuota(c *fiber.Ctx, userID string) error {
	unlimited, err := s.gate.Has(c.Context(), userID, entitlements.FeatureUnlimitedDecks)
	if err != nil {
		return err
	}
	if unlimited {
		return nil
	}
	count, err := s.decks.CountForUser(c.Context(), userID)
	if err != nil {
		return err
	}
	if count >= entitlements.FreeDeckLimit {
		return &entitlements.DeniedError{Feature: entitlements.FeatureUnlimitedDecks}
	}
	return nil
}

func (s *FiberServer) createDeck(c *fiber.Ctx) error {
	req := dto.CreateDeckRequest{}
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	userID := currentUserID(c)
	if err := s.checkDeckQuota(c, userID); err != nil {
		return err
	}

	if len(req.Cards) > 0 {
		deck, err := s.decks.CreateWithCards(c.Context(), userID, req.Title, req.Description, req.Cards)
		if err != nil {
			return err
		}
		s.notifier.InvalidateDashboard(c.Context(), userID)
		return c.Status(fiber.StatusCreated).JSON(deck)
	}

	deck, err := s.decks.Create(c.Context(), userID, req.Title, req.Description)
	if err != nil {
		return err
	}
	s.notifier.InvalidateDashboard(c.Context(), userID)
	return c.Status(fiber.StatusCreated).JSON(deck)
}

func (s *FiberServer) updateDeck(c *fiber.Ctx) error {
	deckID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrBadRequest
	}
	req := dto.UpdateDeckRequest{}
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	userID := currentUserID(c)
	if err := s.decks.Update(c.Context(), int64(deckID), userID, req.Title, req.Description); err != nil {
		return err
	}
	s.notifier.InvalidateDeck(c.Context(), userID, int64(deckID))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) deleteDeck(c *fiber.Ctx) error {
	deckID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrBadRequest
	}
	userID := currentUserID(c)
	if err := s.decks.Delete(c.Context(), int64(deckID), userID); err != nil {
		return err
	}
	s.notifier.InvalidateDeck(c.Context(), userID, int64(deckID))
	return c.SendStatus(fiber.StatusNoContent)
}
