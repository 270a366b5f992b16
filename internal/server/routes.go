package server

import (
	"time"

	"flashdeck/internal/database/dto"
	"flashdeck/internal/database/models"
	"flashdeck/internal/utils"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func (s *FiberServer) RegisterFiberRoutes() {
	s.App.Post("/register", s.registerUser)
	s.App.Post("/login", s.login)
	s.App.Get("/health", s.healthHandler)

	s.App.Use(jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: s.jwtSecret},
	}))

	s.App.Get("/decks", s.listDecks)
	s.App.Post("/decks", s.createDeck)
	s.App.Get("/decks/:id<int>", s.getDeck)
	s.App.Put("/decks/:id<int>", s.updateDeck)
	s.App.Delete("/decks/:id<int>", s.deleteDeck)

	s.App.Post("/decks/:id<int>/cards", s.createCard)
	s.App.Post("/decks/:id<int>/cards/batch", s.createCards)
	s.App.Delete("/decks/:id<int>/cards", s.deleteAllCards)
	s.App.Post("/decks/:id<int>/generate", s.generateCards)

	s.App.Get("/cards/:id<int>", s.getCard)
	s.App.Put("/cards/:id<int>", s.updateCard)
	s.App.Delete("/cards/:id<int>", s.deleteCard)

	s.App.Put("/users/password", s.resetPassword)

	s.App.Get("/search", s.searchHandler)
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	return c.JSON(s.db.Health())
}

// currentUserID reads the authenticated identity from the verified JWT.
// It is an opaque owner string everywhere below this point.
func currentUserID(c *fiber.Ctx) string {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	sub, _ := claims["sub"].(string)
	return sub
}

func (s *FiberServer) registerUser(c *fiber.Ctx) error {
	req := dto.RegisterRequest{}
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}
	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashed,
	}
	if err := s.users.Create(c.Context(), &user); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "created user successfully"})
}

func (s *FiberServer) login(c *fiber.Ctx) error {
	credentials := dto.LoginCredentials{}
	if err := c.BodyParser(&credentials); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.validate.Struct(credentials); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(c.Context(), credentials.Email)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	if !utils.CheckPasswordHash(credentials.Password, user.Password) {
		return fiber.ErrUnauthorized
	}

	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"exp":   time.Now().Add(time.Hour * 72).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": t})
}

func (s *FiberServer) resetPassword(c *fiber.Ctx) error {
	req := dto.ResetPasswordRequest{}
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	userID, err := uuid.Parse(currentUserID(c))
	if err != nil {
		return fiber.ErrUnauthorized
	}
	if err := s.users.ResetPassword(c.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

func (s *FiberServer) searchHandler(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter q is required")
	}
	result, err := s.search.SearchQuery(c.Context(), query, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}
