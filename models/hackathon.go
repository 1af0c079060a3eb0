// models/hackathon.go
package models

import "time"

type HackathonMode string

const (
	ModeInPerson HackathonMode = "in-person"
	ModeRemote   HackathonMode = "remote"
	ModeHybrid   HackathonMode = "hybrid"
)

func (m HackathonMode) Valid() bool {
	switch m {
	case ModeInPerson, ModeRemote, ModeHybrid:
		return true
	}
	return false
}

type HackathonStatus string

const (
	HackathonUpcoming         HackathonStatus = "upcoming"
	HackathonRegistrationOpen HackathonStatus = "registration_open"
	HackathonInProgress       HackathonStatus = "in_progress"
	HackathonCompleted        HackathonStatus = "completed"
)

type Category string

const (
	CategoryAIML       Category = "ai_ml"
	CategoryWeb3       Category = "web3"
	CategoryHealthTech Category = "healthtech"
	CategoryCloud      Category = "cloud"
	CategorySpaceTech  Category = "spacetech"
	CategoryFinTech    Category = "fintech"
	CategoryEdTech     Category = "edtech"
	CategoryOther      Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAIML, CategoryWeb3, CategoryHealthTech, CategoryCloud,
		CategorySpaceTech, CategoryFinTech, CategoryEdTech, CategoryOther:
		return true
	}
	return false
}

type Hackathon struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"not null;size:255"`
	Description string          `json:"description" gorm:"type:text"`
	Category    Category        `json:"category" gorm:"size:20;index"`
	Mode        HackathonMode   `json:"mode" gorm:"size:20"`
	Status      HackathonStatus `json:"status" gorm:"size:20;default:'upcoming';index"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Location  string    `json:"location" gorm:"size:255"`

	Prize           string `json:"prize" gorm:"size:255"`
	MaxParticipants int    `json:"max_participants" gorm:"default:500"`

	WebsiteURL      string `json:"website_url" gorm:"size:500"`
	RegistrationURL string `json:"registration_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Registrations []HackathonRegistration `json:"-" gorm:"foreignKey:HackathonID;constraint:OnDelete:CASCADE"`
	Teams         []Team                  `json:"-" gorm:"foreignKey:HackathonID;constraint:OnDelete:CASCADE"`
}

func (Hackathon) TableName() string {
	return "hackathons"
}

// One registration per user per hackathon.
type HackathonRegistration struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	HackathonID  uint       `json:"hackathon_id" gorm:"not null;uniqueIndex:idx_hackathon_user"`
	Hackathon    *Hackathon `json:"hackathon,omitempty" gorm:"foreignKey:HackathonID"`
	UserID       uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_hackathon_user"`
	User         *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	RegisteredAt time.Time  `json:"registered_at" gorm:"autoCreateTime"`
}

func (HackathonRegistration) TableName() string {
	return "hackathon_registrations"
}
