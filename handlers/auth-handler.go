package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/krishkalaria12/car-vault/auth"
	"github.com/krishkalaria12/car-vault/middleware"
	"github.com/krishkalaria12/car-vault/models"
)

// AuthHandler serves the signup/login/logout endpoints.
type AuthHandler struct {
	auth *auth.Service
	log  *zap.Logger
}

func NewAuthHandler(authSvc *auth.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, log: log}
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var input struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if msg := validateSignup(input.Name, input.Email, input.Password, input.ConfirmPassword); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	user, err := h.auth.CreateAccount(c.UserContext(), input.Name, input.Email, input.Password)
	if err != nil {
		if auth.IsAuthError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": auth.Message(err)})
		}
		h.log.Error("create account", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": auth.Message(err)})
	}

	return h.respondWithToken(c, user, fiber.StatusCreated)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := h.auth.Authenticate(c.UserContext(), input.Email, input.Password)
	if err != nil {
		if auth.IsAuthError(err) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": auth.Message(err)})
		}
		h.log.Error("login", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": auth.Message(err)})
	}

	return h.respondWithToken(c, user, fiber.StatusOK)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if userID, err := middleware.UserID(c); err == nil {
		h.auth.SignOut(userID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	user, err := h.auth.CurrentUser(c.UserContext(), userID)
	if err != nil {
		if auth.IsAuthError(err) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		h.log.Error("current user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load user"})
	}

	return c.JSON(userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

func (h *AuthHandler) respondWithToken(c *fiber.Ctx, user *models.User, status int) error {
	tokenStr, err := h.auth.IssueToken(user)
	if err != nil {
		h.log.Error("issue token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to generate token"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    tokenStr,
		Expires:  time.Now().Add(time.Hour * 24 * 7),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Status(status).JSON(userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Token: tokenStr,
	})
}

func validateSignup(name, email, password, confirm string) string {
	switch {
	case name == "":
		return "Name is required"
	case email == "":
		return "Email is required"
	case password == "":
		return "Password is required"
	case password != confirm:
		return "Passwords do not match"
	}
	return ""
}
