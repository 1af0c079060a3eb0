package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hackmate/apperr"
	"hackmate/database"
	"hackmate/middleware"
	"hackmate/models"
	"hackmate/services"
)

type CreateTaskRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	AssignedToID *uint   `json:"assigned_to_id"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	Color        string  `json:"color"`
	DueDate      *string `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	AssignedToID *uint   `json:"assigned_to_id"`
	Status       *string `json:"status"`
	Priority     *string `json:"priority"`
	Color        *string `json:"color"`
	DueDate      *string `json:"due_date"`
}

func taskParams(c *fiber.Ctx) (teamID, taskID uint, err error) {
	t, err := c.ParamsInt("id")
	if err != nil || t <= 0 {
		return 0, 0, apperr.Validation("Invalid team id")
	}
	k, err := c.ParamsInt("taskID")
	if err != nil || k <= 0 {
		return 0, 0, apperr.Validation("Invalid task id")
	}
	return uint(t), uint(k), nil
}

// ListTasks returns the team's task board. Members only.
func ListTasks(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := c.ParamsInt("id")
	if err != nil || teamID <= 0 {
		return apperr.Validation("Invalid team id")
	}

	svc := services.NewTaskService(database.GetDB())
	tasks, err := svc.ListTasks(userID, uint(teamID))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "tasks": tasks, "count": len(tasks)})
}

func CreateTask(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := c.ParamsInt("id")
	if err != nil || teamID <= 0 {
		return apperr.Validation("Invalid team id")
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	svc := services.NewTaskService(database.GetDB())
	task, err := svc.CreateTask(userID, uint(teamID), services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		AssignedToID: req.AssignedToID,
		Status:       models.TaskStatus(req.Status),
		Priority:     models.TaskPriority(req.Priority),
		Color:        req.Color,
		DueDate:      req.DueDate,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "task": task})
}

func UpdateTask(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, taskID, err := taskParams(c)
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	input := services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		AssignedToID: req.AssignedToID,
		Color:        req.Color,
		DueDate:      req.DueDate,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	svc := services.NewTaskService(database.GetDB())
	task, err := svc.UpdateTask(userID, teamID, taskID, input)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "task": task})
}

// DeleteTask removes a task. Team lead or the task's creator only.
func DeleteTask(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, taskID, err := taskParams(c)
	if err != nil {
		return err
	}

	svc := services.NewTaskService(database.GetDB())
	if err := svc.DeleteTask(userID, teamID, taskID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Task deleted"})
}
