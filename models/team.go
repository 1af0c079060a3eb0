// models/team.go
package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type MembershipRole string

const (
	RoleLeader MembershipRole = "leader"
	RoleMember MembershipRole = "member"
)

type MembershipStatus string

const (
	StatusPending  MembershipStatus = "pending"
	StatusInvited  MembershipStatus = "invited"
	StatusAccepted MembershipStatus = "accepted"
	StatusRejected MembershipStatus = "rejected"
)

type Team struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	Name        string   `json:"name" gorm:"not null;size:255"`
	Description string   `json:"description" gorm:"type:text"`
	Category    Category `json:"category" gorm:"size:20;index"`

	HackathonID uint       `json:"hackathon_id" gorm:"not null;index"`
	Hackathon   *Hackathon `json:"hackathon,omitempty" gorm:"foreignKey:HackathonID"`
	LeadID      uint       `json:"lead_id" gorm:"not null;index"`
	Lead        *User      `json:"lead,omitempty" gorm:"foreignKey:LeadID"`

	RequiredSkills datatypes.JSON `json:"required_skills"`
	// Advisory seat target set at creation (capacity - 1, the lead's seat is
	// implicit). Acceptance enforces accepted members <= OpenPositions + 1.
	OpenPositions int `json:"open_positions" gorm:"default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Memberships []TeamMembership `json:"memberships,omitempty" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	Tasks       []TeamTask       `json:"-" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
}

func (Team) TableName() string {
	return "teams"
}

// RequiredSkillList decodes the required skills JSON column.
func (t *Team) RequiredSkillList() []string {
	if len(t.RequiredSkills) == 0 {
		return []string{}
	}
	var skills []string
	if err := json.Unmarshal(t.RequiredSkills, &skills); err != nil {
		return []string{}
	}
	return skills
}

// TeamMembership is the single row tracking a user's relationship to a team.
// Status transitions overwrite this row; the unique (team, user) index
// guarantees at most one row per pair.
type TeamMembership struct {
	ID       uint             `json:"id" gorm:"primaryKey"`
	TeamID   uint             `json:"team_id" gorm:"not null;uniqueIndex:idx_team_user"`
	Team     *Team            `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	UserID   uint             `json:"user_id" gorm:"not null;uniqueIndex:idx_team_user"`
	User     *User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role     MembershipRole   `json:"role" gorm:"size:20;not null;default:'member'"`
	Status   MembershipStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	JoinedAt time.Time        `json:"joined_at" gorm:"autoCreateTime"`
	// Viewed tracks whether the user has seen the invite notification,
	// independently of the status transition itself.
	Viewed bool `json:"viewed" gorm:"default:false"`
}

func (TeamMembership) TableName() string {
	return "team_memberships"
}
