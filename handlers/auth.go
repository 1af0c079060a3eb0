package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hackmate/apperr"
	"hackmate/database"
	"hackmate/middleware"
	"hackmate/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// Register creates a new account and returns a signed token.
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Username == "" || req.Email == "" {
		return apperr.Validation("Username and email are required")
	}
	if len(req.Password) < 8 {
		return apperr.Validation("Password must be at least 8 characters")
	}
	if !strings.Contains(req.Email, "@") {
		return apperr.Validation("Invalid email address")
	}

	db := database.GetDB()

	var existing models.User
	err := db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error
	if err == nil {
		return apperr.Conflict("An account with that email or username already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Internal("Failed to check existing accounts")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("Failed to hash password")
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
		FullName: req.FullName,
		Skills:   models.SkillsJSON(nil),
	}
	if err := db.Create(&user).Error; err != nil {
		// Concurrent register with the same email or username lands on the
		// unique indexes after the lookup above passed.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("An account with that email or username already exists")
		}
		return apperr.Internal("Failed to create account")
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		return apperr.Internal("Failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Success: true,
		Token:   token,
		User:    &user,
	})
}

// Login verifies credentials and returns a signed token.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return apperr.Validation("Email and password are required")
	}

	db := database.GetDB()

	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Unauthenticated("Invalid email or password")
		}
		return apperr.Internal("Failed to look up account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return apperr.Unauthenticated("Invalid email or password")
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		return apperr.Internal("Failed to generate token")
	}

	return c.JSON(AuthResponse{
		Success: true,
		Token:   token,
		User:    &user,
	})
}

// Me returns the authenticated user's own profile.
func Me(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		return apperr.NotFound("User not found")
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}
