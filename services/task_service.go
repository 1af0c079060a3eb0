// services/task_service.go - Team task board
package services

import (
	"errors"
	"time"

	"hackmate/apperr"
	"hackmate/models"

	"gorm.io/gorm"
)

type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

type CreateTaskInput struct {
	Title        string
	Description  string
	AssignedToID *uint
	Status       models.TaskStatus
	Priority     models.TaskPriority
	Color        string
	DueDate      *string
}

type UpdateTaskInput struct {
	Title        *string
	Description  *string
	AssignedToID *uint // pointer-to-zero clears the assignee
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	Color        *string
	DueDate      *string // empty string clears the due date
}

// ListTasks returns all tasks for a team. Accepted members only.
func (s *TaskService) ListTasks(actorID, teamID uint) ([]TaskView, error) {
	if err := s.requireMember(teamID, actorID); err != nil {
		return nil, err
	}

	var tasks []models.TeamTask
	err := s.db.Where("team_id = ?", teamID).
		Preload("AssignedTo").Preload("CreatedBy").
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	result := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		result = append(result, taskView(&tasks[i]))
	}
	return result, nil
}

// CreateTask creates a task on the team board. The assignee, when given,
// must be an accepted member.
func (s *TaskService) CreateTask(actorID, teamID uint, input CreateTaskInput) (*TaskView, error) {
	if input.Title == "" {
		return nil, apperr.Validation("Task title is required")
	}
	if err := s.requireMember(teamID, actorID); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.TaskTodo
	}
	if !status.Valid() {
		return nil, apperr.Validation("Invalid task status")
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperr.Validation("Invalid task priority")
	}
	color := input.Color
	if color == "" {
		color = models.DefaultTaskColor
	}

	if input.AssignedToID != nil {
		if err := s.requireAssignable(teamID, *input.AssignedToID); err != nil {
			return nil, err
		}
	}

	task := models.TeamTask{
		TeamID:       teamID,
		Title:        input.Title,
		Description:  input.Description,
		AssignedToID: input.AssignedToID,
		CreatedByID:  actorID,
		Status:       status,
		Priority:     priority,
		Color:        color,
		DueDate:      parseDueDate(input.DueDate),
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}
	return s.getTaskView(task.ID)
}

// UpdateTask applies a partial update. Accepted members only.
func (s *TaskService) UpdateTask(actorID, teamID, taskID uint, input UpdateTaskInput) (*TaskView, error) {
	if err := s.requireMember(teamID, actorID); err != nil {
		return nil, err
	}

	task, err := s.getTask(teamID, taskID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperr.Validation("Invalid task status")
		}
		updates["status"] = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperr.Validation("Invalid task priority")
		}
		updates["priority"] = *input.Priority
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if input.AssignedToID != nil {
		if *input.AssignedToID == 0 {
			updates["assigned_to_id"] = nil
		} else {
			if err := s.requireAssignable(teamID, *input.AssignedToID); err != nil {
				return nil, err
			}
			updates["assigned_to_id"] = *input.AssignedToID
		}
	}
	if input.DueDate != nil {
		if *input.DueDate == "" {
			updates["due_date"] = nil
		} else {
			updates["due_date"] = parseDueDate(input.DueDate)
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.getTaskView(taskID)
}

// DeleteTask removes a task. Only the team lead or the task's creator may
// delete.
func (s *TaskService) DeleteTask(actorID, teamID, taskID uint) error {
	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Team not found")
		}
		return err
	}

	task, err := s.getTask(teamID, taskID)
	if err != nil {
		return err
	}

	if team.LeadID != actorID && task.CreatedByID != actorID {
		return apperr.Forbidden("Only team lead or task creator can delete tasks")
	}
	return s.db.Delete(task).Error
}

func (s *TaskService) requireMember(teamID, userID uint) error {
	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Team not found")
		}
		return err
	}
	if !isAcceptedMember(s.db, teamID, userID) {
		return apperr.Forbidden("You are not a member of this team")
	}
	return nil
}

func (s *TaskService) requireAssignable(teamID, userID uint) error {
	if !isAcceptedMember(s.db, teamID, userID) {
		return apperr.Validation("Assigned user is not a team member")
	}
	return nil
}

func (s *TaskService) getTask(teamID, taskID uint) (*models.TeamTask, error) {
	var task models.TeamTask
	err := s.db.Where("id = ? AND team_id = ?", taskID, teamID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) getTaskView(taskID uint) (*TaskView, error) {
	var task models.TeamTask
	err := s.db.Preload("AssignedTo").Preload("CreatedBy").First(&task, taskID).Error
	if err != nil {
		return nil, err
	}
	view := taskView(&task)
	return &view, nil
}

func taskView(task *models.TeamTask) TaskView {
	view := TaskView{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       string(task.Status),
		Priority:     string(task.Priority),
		Color:        task.Color,
		AssignedToID: task.AssignedToID,
		CreatedByID:  task.CreatedByID,
		DueDate:      task.DueDate,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
	if task.AssignedTo != nil {
		name := task.AssignedTo.DisplayName()
		view.AssignedToName = &name
	}
	if task.CreatedBy != nil {
		view.CreatedByName = task.CreatedBy.DisplayName()
	}
	return view
}

// parseDueDate accepts RFC3339, tolerating a trailing Z as the original
// clients send. Unparseable input reads as no due date.
func parseDueDate(raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil
	}
	return &t
}
