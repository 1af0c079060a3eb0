// models/user.go
package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityLooking   Availability = "looking"
	AvailabilityBusy      Availability = "busy"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityLooking, AvailabilityBusy:
		return true
	}
	return false
}

type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Email    string `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Username string `json:"username" gorm:"uniqueIndex;not null;size:150"`
	Password string `json:"-" gorm:"not null"`
	FullName string `json:"full_name" gorm:"size:255"`
	Bio      string `json:"bio" gorm:"type:text"`
	Location string `json:"location" gorm:"size:255"`

	ProfilePicture string         `json:"profile_picture" gorm:"size:500"`
	Skills         datatypes.JSON `json:"skills"`
	Experience     string         `json:"experience" gorm:"size:255"`
	Availability   Availability   `json:"availability" gorm:"size:20;default:'available'"`

	GithubURL    string `json:"github_url" gorm:"size:500"`
	LinkedinURL  string `json:"linkedin_url" gorm:"size:500"`
	PortfolioURL string `json:"portfolio_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// SkillList decodes the skills JSON column. A missing or malformed column
// reads as an empty list.
func (u *User) SkillList() []string {
	if len(u.Skills) == 0 {
		return []string{}
	}
	var skills []string
	if err := json.Unmarshal(u.Skills, &skills); err != nil {
		return []string{}
	}
	return skills
}

var roleKeywords = []struct {
	skill string
	role  string
}{
	{"UI/UX Design", "UI/UX Designer"},
	{"Machine Learning", "ML Engineer"},
	{"Blockchain", "Blockchain Developer"},
	{"Mobile Dev", "Mobile Developer"},
	{"DevOps", "DevOps Engineer"},
	{"React", "Frontend Developer"},
	{"Node.js", "Backend Developer"},
	{"Python", "Backend Developer"},
}

// Role derives a primary role label from the user's skills.
func (u *User) Role() string {
	skills := u.SkillList()
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		set[s] = true
	}
	for _, kw := range roleKeywords {
		if set[kw.skill] {
			return kw.role
		}
	}
	return "Developer"
}

// SkillsJSON encodes a skill list for storage. nil encodes as [].
func SkillsJSON(skills []string) datatypes.JSON {
	if skills == nil {
		skills = []string{}
	}
	data, _ := json.Marshal(skills)
	return datatypes.JSON(data)
}
