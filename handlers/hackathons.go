package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hackmate/apperr"
	"hackmate/database"
	"hackmate/metrics"
	"hackmate/middleware"
	"hackmate/models"
	"hackmate/services"
)

type CreateHackathonRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Mode            string `json:"mode"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Location        string `json:"location"`
	Prize           string `json:"prize"`
	MaxParticipants int    `json:"max_participants"`
}

// ListHackathons returns hackathons filtered by category, mode and status.
func ListHackathons(c *fiber.Ctx) error {
	svc := services.NewHackathonService(database.GetDB())

	views, err := svc.List(services.HackathonFilter{
		Category: c.Query("category"),
		Mode:     c.Query("mode"),
		Status:   c.Query("status"),
		Limit:    c.QueryInt("limit", 20),
		Offset:   c.QueryInt("offset", 0),
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "hackathons": views, "count": len(views)})
}

// SearchHackathons does a free-text search over name, description and location.
func SearchHackathons(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return apperr.Validation("Search query is required")
	}

	svc := services.NewHackathonService(database.GetDB())
	views, err := svc.Search(q)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "hackathons": views, "count": len(views)})
}

func GetHackathon(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperr.Validation("Invalid hackathon id")
	}

	svc := services.NewHackathonService(database.GetDB())
	view, err := svc.Get(uint(id))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "hackathon": view})
}

func CreateHackathon(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return err
	}

	var req CreateHackathonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	svc := services.NewHackathonService(database.GetDB())
	view, err := svc.Create(services.CreateHackathonInput{
		Name:            req.Name,
		Description:     req.Description,
		Category:        models.Category(req.Category),
		Mode:            models.HackathonMode(req.Mode),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Location:        req.Location,
		Prize:           req.Prize,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "hackathon": view})
}

// RegisterForHackathon registers the caller, enforcing the participant cap.
func RegisterForHackathon(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperr.Validation("Invalid hackathon id")
	}

	svc := services.NewHackathonService(database.GetDB())
	if err := svc.Register(userID, uint(id)); err != nil {
		return err
	}

	metrics.HackathonRegistrations.Inc()
	return c.JSON(fiber.Map{"success": true, "message": "Registered for hackathon"})
}

func UnregisterFromHackathon(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperr.Validation("Invalid hackathon id")
	}

	svc := services.NewHackathonService(database.GetDB())
	if err := svc.Unregister(userID, uint(id)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Registration cancelled"})
}

func MyHackathons(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	svc := services.NewHackathonService(database.GetDB())
	views, err := svc.MyRegistrations(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "hackathons": views, "count": len(views)})
}
