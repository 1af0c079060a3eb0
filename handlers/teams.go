package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"hackmate/apperr"
	"hackmate/database"
	"hackmate/metrics"
	"hackmate/middleware"
	"hackmate/models"
	"hackmate/services"
)

type CreateTeamRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	HackathonName string   `json:"hackathon_name"`
	LookingFor    []string `json:"looking_for"`
	MaxMembers    int      `json:"max_members"`
}

type UpdateTeamRequest struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	RequiredSkills *[]string `json:"required_skills"`
	OpenPositions  *int      `json:"open_positions"`
}

// CreateTeam creates a team with the caller as its lead.
func CreateTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	svc := services.NewTeamService(database.GetDB())
	view, err := svc.CreateTeam(userID, services.CreateTeamInput{
		Name:          req.Name,
		Description:   req.Description,
		Category:      models.Category(req.Category),
		HackathonName: req.HackathonName,
		LookingFor:    req.LookingFor,
		MaxMembers:    req.MaxMembers,
	})
	if err != nil {
		return err
	}

	metrics.TeamsCreated.Inc()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "team": view})
}

func ListTeams(c *fiber.Ctx) error {
	svc := services.NewTeamService(database.GetDB())

	views, err := svc.ListTeams(
		c.Query("category"),
		uint(c.QueryInt("hackathon_id", 0)),
		c.QueryInt("limit", 20),
		c.QueryInt("offset", 0),
	)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "teams": views, "count": len(views)})
}

// SearchTeams matches team name and description against q, and required
// skills against a comma-separated skills parameter.
func SearchTeams(c *fiber.Ctx) error {
	q := c.Query("q")
	var skills []string
	if raw := c.Query("skills"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
	}
	if q == "" && len(skills) == 0 {
		return apperr.Validation("Search query or skills filter is required")
	}

	svc := services.NewTeamService(database.GetDB())
	views, err := svc.SearchTeams(q, skills)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "teams": views, "count": len(views)})
}

// MyTeams returns every team the caller is an accepted member of.
func MyTeams(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	svc := services.NewTeamService(database.GetDB())
	views, err := svc.GetUserTeams(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "teams": views, "count": len(views)})
}

func GetTeam(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperr.Validation("Invalid team id")
	}

	svc := services.NewTeamService(database.GetDB())
	view, err := svc.GetTeam(uint(id))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "team": view})
}

func UpdateTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperr.Validation("Invalid team id")
	}

	var req UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	svc := services.NewTeamService(database.GetDB())
	view, err := svc.UpdateTeam(uint(id), userID, services.UpdateTeamInput{
		Name:           req.Name,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		OpenPositions:  req.OpenPositions,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "team": view})
}

// DeleteTeam removes the team and everything hanging off it. Lead only.
func DeleteTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperr.Validation("Invalid team id")
	}

	svc := services.NewTeamService(database.GetDB())
	if err := svc.DeleteTeam(uint(id), userID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Team deleted"})
}
