// models/task.go
package models

import "time"

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const DefaultTaskColor = "#3B82F6"

type TeamTask struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	TeamID      uint   `json:"team_id" gorm:"not null;index"`
	Team        *Team  `json:"-" gorm:"foreignKey:TeamID"`
	Title       string `json:"title" gorm:"not null;size:255"`
	Description string `json:"description" gorm:"type:text"`

	AssignedToID *uint `json:"assigned_to_id" gorm:"index"`
	AssignedTo   *User `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL"`
	CreatedByID  uint  `json:"created_by_id" gorm:"not null"`
	CreatedBy    *User `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`

	Status   TaskStatus   `json:"status" gorm:"size:20;default:'todo'"`
	Priority TaskPriority `json:"priority" gorm:"size:20;default:'medium'"`
	Color    string       `json:"color" gorm:"size:7;default:'#3B82F6'"`
	DueDate  *time.Time   `json:"due_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TeamTask) TableName() string {
	return "team_tasks"
}
