package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"hackmate/apperr"
	"hackmate/database"
	"hackmate/middleware"
	"hackmate/models"
)

type UpdateProfileRequest struct {
	FullName     *string   `json:"full_name"`
	Bio          *string   `json:"bio"`
	Location     *string   `json:"location"`
	Skills       *[]string `json:"skills"`
	Experience   *string   `json:"experience"`
	Availability *string   `json:"availability"`
	GithubURL    *string   `json:"github_url"`
	LinkedinURL  *string   `json:"linkedin_url"`
	PortfolioURL *string   `json:"portfolio_url"`
}

type ProfileView struct {
	models.User
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
}

func profileView(u models.User) ProfileView {
	return ProfileView{User: u, Role: u.Role(), Skills: u.SkillList()}
}

// ListUsers returns profiles, optionally filtered by skill, availability
// or a free-text search over username, full name and bio.
func ListUsers(c *fiber.Ctx) error {
	db := database.GetDB()

	query := db.Model(&models.User{})

	if skill := strings.TrimSpace(c.Query("skill")); skill != "" {
		query = query.Where("skills LIKE ?", "%"+skill+"%")
	}
	if availability := c.Query("availability"); availability != "" {
		if !models.Availability(availability).Valid() {
			return apperr.Validation("Invalid availability filter")
		}
		query = query.Where("availability = ?", availability)
	}
	if q := strings.TrimSpace(c.Query("search")); q != "" {
		like := "%" + q + "%"
		query = query.Where("username LIKE ? OR full_name LIKE ? OR bio LIKE ?", like, like, like)
	}

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var users []models.User
	if err := query.Order("created_at DESC").Limit(limit).Offset(c.QueryInt("offset", 0)).Find(&users).Error; err != nil {
		return apperr.Internal("Failed to load users")
	}

	views := make([]ProfileView, 0, len(users))
	for _, u := range users {
		views = append(views, profileView(u))
	}

	return c.JSON(fiber.Map{"success": true, "users": views, "count": len(views)})
}

// SearchUsers matches profiles against a free-text query, optionally
// narrowed by skill and availability.
func SearchUsers(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" && c.Query("skills") == "" && c.Query("availability") == "" {
		return apperr.Validation("Search query is required")
	}

	query := database.GetDB().Model(&models.User{})
	if q != "" {
		like := "%" + q + "%"
		query = query.Where("username LIKE ? OR full_name LIKE ? OR bio LIKE ? OR skills LIKE ?",
			like, like, like, like)
	}
	// Every requested skill must match.
	for _, skill := range strings.Split(c.Query("skills"), ",") {
		if skill = strings.TrimSpace(skill); skill != "" {
			query = query.Where("skills LIKE ?", "%"+skill+"%")
		}
	}
	if availability := c.Query("availability"); availability != "" {
		if !models.Availability(availability).Valid() {
			return apperr.Validation("Invalid availability filter")
		}
		query = query.Where("availability = ?", availability)
	}

	var users []models.User
	if err := query.Order("username ASC").Limit(50).Find(&users).Error; err != nil {
		return apperr.Internal("Failed to search users")
	}

	views := make([]ProfileView, 0, len(users))
	for _, u := range users {
		views = append(views, profileView(u))
	}

	return c.JSON(fiber.Map{"success": true, "users": views, "count": len(views)})
}

// GetUser returns a single public profile.
func GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperr.Validation("Invalid user id")
	}

	var user models.User
	if err := database.GetDB().First(&user, id).Error; err != nil {
		return apperr.NotFound("User not found")
	}

	return c.JSON(fiber.Map{"success": true, "user": profileView(user)})
}

// UpdateProfile applies a partial update to the caller's own profile.
func UpdateProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return apperr.NotFound("User not found")
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Skills != nil {
		updates["skills"] = models.SkillsJSON(*req.Skills)
	}
	if req.Experience != nil {
		updates["experience"] = *req.Experience
	}
	if req.Availability != nil {
		if !models.Availability(*req.Availability).Valid() {
			return apperr.Validation("Invalid availability value")
		}
		updates["availability"] = *req.Availability
	}
	if req.GithubURL != nil {
		updates["github_url"] = *req.GithubURL
	}
	if req.LinkedinURL != nil {
		updates["linkedin_url"] = *req.LinkedinURL
	}
	if req.PortfolioURL != nil {
		updates["portfolio_url"] = *req.PortfolioURL
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return apperr.Internal("Failed to update profile")
		}
	}

	if err := db.First(&user, userID).Error; err != nil {
		return apperr.Internal("Failed to reload profile")
	}

	return c.JSON(fiber.Map{"success": true, "user": profileView(user)})
}
