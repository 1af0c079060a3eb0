// services/views.go - Result structs returned by the service layer
package services

import "time"

type TeamMemberView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

type TeamSummaryView struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	HackathonName  string    `json:"hackathon_name"`
	LeadID         uint      `json:"lead_id"`
	LeadName       string    `json:"lead_name"`
	RequiredSkills []string  `json:"required_skills"`
	OpenPositions  int       `json:"open_positions"`
	MemberCount    int64     `json:"member_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type TeamDetailView struct {
	TeamSummaryView
	Members []TeamMemberView `json:"members"`
}

// MyTeamView adds the caller's own role in the team to the summary.
type MyTeamView struct {
	TeamSummaryView
	Role string `json:"role"`
}

type InviteView struct {
	ID          uint      `json:"id"`
	TeamID      uint      `json:"team_id"`
	TeamName    string    `json:"team_name"`
	InviterID   uint      `json:"inviter_id"`
	InviterName string    `json:"inviter_name"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	Viewed      bool      `json:"viewed"`
	Message     string    `json:"message"`
	TimeAgo     string    `json:"time_ago"`
	CreatedAt   time.Time `json:"created_at"`
}

type JoinRequestView struct {
	ID        uint      `json:"id"`
	TeamID    uint      `json:"team_id"`
	TeamName  string    `json:"team_name"`
	UserID    uint      `json:"user_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	TimeAgo   string    `json:"time_ago"`
	CreatedAt time.Time `json:"created_at"`
}

type TaskView struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	Color          string     `json:"color"`
	AssignedToID   *uint      `json:"assigned_to_id"`
	AssignedToName *string    `json:"assigned_to_name"`
	CreatedByID    uint       `json:"created_by_id"`
	CreatedByName  string     `json:"created_by_name"`
	DueDate        *time.Time `json:"due_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type MessageView struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

type ConversationSummaryView struct {
	ID               uint      `json:"id"`
	Participants     []uint    `json:"participants"`
	ParticipantNames []string  `json:"participant_names"`
	LastMessage      *string   `json:"last_message"`
	UnreadCount      int64     `json:"unread_count"`
	UpdatedAt        time.Time `json:"updated_at"`
	IsGroupChat      bool      `json:"is_group_chat"`
	TeamID           *uint     `json:"team_id"`
	TeamName         *string   `json:"team_name"`
}

type ConversationDetailView struct {
	ConversationSummaryView
	Messages []MessageView `json:"messages"`
}

type HackathonView struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Mode             string    `json:"mode"`
	Status           string    `json:"status"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Location         string    `json:"location"`
	Prize            string    `json:"prize"`
	MaxParticipants  int       `json:"max_participants"`
	ParticipantCount int64     `json:"participant_count"`
	WebsiteURL       string    `json:"website_url"`
	RegistrationURL  string    `json:"registration_url"`
}
