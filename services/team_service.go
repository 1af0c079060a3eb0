// services/team_service.go - Team roster business logic
package services

import (
	"errors"
	"time"

	"hackmate/apperr"
	"hackmate/models"

	"gorm.io/gorm"
)

type TeamService struct {
	db *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

type CreateTeamInput struct {
	Name          string
	Description   string
	Category      models.Category
	HackathonName string
	LookingFor    []string
	MaxMembers    int
}

type UpdateTeamInput struct {
	Name           *string
	Description    *string
	RequiredSkills *[]string
	OpenPositions  *int
}

// CreateTeam creates a team together with the lead's accepted leader
// membership. The two writes share a transaction; a team must never exist
// without its lead on the roster.
func (s *TeamService) CreateTeam(leadID uint, input CreateTeamInput) (*TeamSummaryView, error) {
	if input.Name == "" {
		return nil, apperr.Validation("Team name is required")
	}
	if input.MaxMembers < 1 {
		input.MaxMembers = 4
	}
	category := input.Category
	if category == "" {
		category = models.CategoryOther
	}
	if !category.Valid() {
		return nil, apperr.Validation("Invalid team category")
	}

	var team models.Team
	err := s.db.Transaction(func(tx *gorm.DB) error {
		hackathon, err := resolveHackathon(tx, input.HackathonName)
		if err != nil {
			return err
		}

		team = models.Team{
			Name:           input.Name,
			Description:    input.Description,
			Category:       category,
			HackathonID:    hackathon.ID,
			LeadID:         leadID,
			RequiredSkills: models.SkillsJSON(input.LookingFor),
			// The lead occupies one seat implicitly.
			OpenPositions: input.MaxMembers - 1,
		}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}

		membership := models.TeamMembership{
			TeamID: team.ID,
			UserID: leadID,
			Role:   models.RoleLeader,
			Status: models.StatusAccepted,
			Viewed: true,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	return s.teamSummary(team.ID)
}

// resolveHackathon finds a hackathon by (partial) name, falling back to a
// shared "General Teams" event for teams without one.
func resolveHackathon(tx *gorm.DB, name string) (*models.Hackathon, error) {
	var hackathon models.Hackathon
	if name != "" {
		err := tx.Where("name LIKE ?", "%"+name+"%").First(&hackathon).Error
		if err == nil {
			return &hackathon, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	err := tx.Where("name = ?", "General Teams").First(&hackathon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hackathon = models.Hackathon{
			Name:            "General Teams",
			Description:     "Teams not associated with a specific hackathon",
			Category:        models.CategoryOther,
			Mode:            models.ModeRemote,
			Status:          models.HackathonRegistrationOpen,
			StartDate:       time.Now(),
			EndDate:         time.Now().AddDate(1, 0, 0),
			Location:        "Online",
			MaxParticipants: 10000,
		}
		err = tx.Create(&hackathon).Error
	}
	if err != nil {
		return nil, err
	}
	return &hackathon, nil
}

// MemberCount counts accepted memberships. Always computed, never cached.
func (s *TeamService) MemberCount(teamID uint) int64 {
	return acceptedMemberCount(s.db, teamID)
}

func acceptedMemberCount(tx *gorm.DB, teamID uint) int64 {
	var count int64
	tx.Model(&models.TeamMembership{}).
		Where("team_id = ? AND status = ?", teamID, models.StatusAccepted).
		Count(&count)
	return count
}

func isAcceptedMember(tx *gorm.DB, teamID, userID uint) bool {
	var count int64
	tx.Model(&models.TeamMembership{}).
		Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, models.StatusAccepted).
		Count(&count)
	return count > 0
}

// GetTeam returns team details with its accepted members.
func (s *TeamService) GetTeam(teamID uint) (*TeamDetailView, error) {
	var team models.Team
	err := s.db.Preload("Hackathon").Preload("Lead").
		Preload("Memberships", "status = ?", models.StatusAccepted).
		Preload("Memberships.User").
		First(&team, teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Team not found")
	}
	if err != nil {
		return nil, err
	}

	members := make([]TeamMemberView, 0, len(team.Memberships))
	for _, m := range team.Memberships {
		if m.User == nil {
			continue
		}
		members = append(members, TeamMemberView{
			ID:       m.User.ID,
			Username: m.User.Username,
			FullName: m.User.DisplayName(),
			Role:     string(m.Role),
			Status:   string(m.Status),
		})
	}

	return &TeamDetailView{
		TeamSummaryView: summaryFromTeam(&team, int64(len(members))),
		Members:         members,
	}, nil
}

// ListTeams returns teams filtered by category and hackathon.
func (s *TeamService) ListTeams(category string, hackathonID uint, limit, offset int) ([]TeamSummaryView, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.db.Model(&models.Team{}).Preload("Hackathon").Preload("Lead")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if hackathonID != 0 {
		query = query.Where("hackathon_id = ?", hackathonID)
	}

	var teams []models.Team
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&teams).Error; err != nil {
		return nil, err
	}
	return s.summarize(teams), nil
}

// SearchTeams searches by name or description, optionally narrowing to teams
// whose required skills contain every given skill.
func (s *TeamService) SearchTeams(q string, skills []string) ([]TeamSummaryView, error) {
	query := s.db.Model(&models.Team{}).Preload("Hackathon").Preload("Lead")
	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	for _, skill := range skills {
		query = query.Where("required_skills LIKE ?", "%"+skill+"%")
	}

	var teams []models.Team
	if err := query.Order("created_at DESC").Limit(50).Find(&teams).Error; err != nil {
		return nil, err
	}
	return s.summarize(teams), nil
}

// GetUserTeams returns the teams the user holds an accepted membership in,
// including their role in each.
func (s *TeamService) GetUserTeams(userID uint) ([]MyTeamView, error) {
	var memberships []models.TeamMembership
	err := s.db.Where("user_id = ? AND status = ?", userID, models.StatusAccepted).
		Preload("Team").Preload("Team.Hackathon").Preload("Team.Lead").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	result := make([]MyTeamView, 0, len(memberships))
	for _, m := range memberships {
		if m.Team == nil {
			continue
		}
		result = append(result, MyTeamView{
			TeamSummaryView: summaryFromTeam(m.Team, acceptedMemberCount(s.db, m.TeamID)),
			Role:            string(m.Role),
		})
	}
	return result, nil
}

// UpdateTeam applies a partial update. Lead only.
func (s *TeamService) UpdateTeam(teamID, actorID uint, input UpdateTeamInput) (*TeamSummaryView, error) {
	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Team not found")
		}
		return nil, err
	}
	if team.LeadID != actorID {
		return nil, apperr.Forbidden("Only team lead can update team")
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.RequiredSkills != nil {
		updates["required_skills"] = models.SkillsJSON(*input.RequiredSkills)
	}
	if input.OpenPositions != nil {
		if *input.OpenPositions < 0 {
			return nil, apperr.Validation("Open positions cannot be negative")
		}
		updates["open_positions"] = *input.OpenPositions
	}
	if len(updates) > 0 {
		if err := s.db.Model(&team).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.teamSummary(teamID)
}

// DeleteTeam removes the team and everything it owns: memberships, tasks,
// the group conversation and its messages. Lead only.
func (s *TeamService) DeleteTeam(teamID, actorID uint) error {
	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Team not found")
		}
		return err
	}
	if team.LeadID != actorID {
		return apperr.Forbidden("Only team lead can delete team")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var conversations []models.Conversation
		if err := tx.Where("team_id = ?", teamID).Find(&conversations).Error; err != nil {
			return err
		}
		for _, conv := range conversations {
			if err := deleteConversation(tx, conv.ID); err != nil {
				return err
			}
		}

		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, teamID).Error
	})
}

func deleteConversation(tx *gorm.DB, conversationID uint) error {
	if err := tx.Where("message_id IN (?)",
		tx.Model(&models.Message{}).Select("id").Where("conversation_id = ?", conversationID),
	).Delete(&models.MessageRead{}).Error; err != nil {
		return err
	}
	if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.Message{}).Error; err != nil {
		return err
	}
	if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.ConversationParticipant{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Conversation{}, conversationID).Error
}

func (s *TeamService) teamSummary(teamID uint) (*TeamSummaryView, error) {
	var team models.Team
	err := s.db.Preload("Hackathon").Preload("Lead").First(&team, teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Team not found")
	}
	if err != nil {
		return nil, err
	}
	view := summaryFromTeam(&team, acceptedMemberCount(s.db, teamID))
	return &view, nil
}

func (s *TeamService) summarize(teams []models.Team) []TeamSummaryView {
	result := make([]TeamSummaryView, 0, len(teams))
	for i := range teams {
		result = append(result, summaryFromTeam(&teams[i], acceptedMemberCount(s.db, teams[i].ID)))
	}
	return result
}

func summaryFromTeam(team *models.Team, memberCount int64) TeamSummaryView {
	view := TeamSummaryView{
		ID:             team.ID,
		Name:           team.Name,
		Description:    team.Description,
		Category:       string(team.Category),
		LeadID:         team.LeadID,
		RequiredSkills: team.RequiredSkillList(),
		OpenPositions:  team.OpenPositions,
		MemberCount:    memberCount,
		CreatedAt:      team.CreatedAt,
	}
	if team.Hackathon != nil {
		view.HackathonName = team.Hackathon.Name
	}
	if team.Lead != nil {
		view.LeadName = team.Lead.DisplayName()
	}
	return view
}
