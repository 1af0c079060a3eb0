// services/membership_service.go - Membership lifecycle state machine
//
// Each (team, user) pair has at most one membership row, backed by a unique
// index. States: none (no row), pending, invited, accepted, rejected.
// Transitions overwrite the row and run inside a transaction so the status
// read and the write are one atomic unit.
package services

import (
	"errors"
	"fmt"

	"hackmate/apperr"
	"hackmate/models"
	"hackmate/utils"

	"gorm.io/gorm"
)

type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// Apply files a join request: none -> pending. Any existing row for the pair
// is a conflict regardless of its status.
func (s *MembershipService) Apply(userID, teamID uint) (*models.TeamMembership, error) {
	var membership models.TeamMembership
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Team not found")
			}
			return err
		}

		var existing models.TeamMembership
		err := tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&existing).Error
		if err == nil {
			return apperr.Conflict("You have already applied to this team")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		membership = models.TeamMembership{
			TeamID: teamID,
			UserID: userID,
			Role:   models.RoleMember,
			Status: models.StatusPending,
		}
		if err := tx.Create(&membership).Error; err != nil {
			// A concurrent duplicate slipped past the lookup and hit the
			// (team_id, user_id) index.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("You have already applied to this team")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// Invite invites a user to a team: none -> invited. A pending join request
// from the same user is converted in place, and a previously rejected user
// may be invited again. The inviter must hold an accepted membership; the
// lead always holds one because team creation writes it.
func (s *MembershipService) Invite(inviterID, teamID, userID uint) (inviteID uint, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Team not found")
			}
			return err
		}
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("User not found")
			}
			return err
		}

		if !isAcceptedMember(tx, teamID, inviterID) {
			return apperr.Forbidden("You must be a team member to invite users")
		}

		var existing models.TeamMembership
		err := tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&existing).Error
		switch {
		case err == nil:
			switch existing.Status {
			case models.StatusPending, models.StatusRejected:
				// Merge the join request, or re-invite after a rejection.
				updates := map[string]interface{}{"status": models.StatusInvited, "viewed": false}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return err
				}
				inviteID = existing.ID
				return nil
			case models.StatusInvited:
				return apperr.Conflict("User has already been invited to this team")
			case models.StatusAccepted:
				return apperr.Conflict("User is already a member of this team")
			default:
				return apperr.Internal(fmt.Sprintf("unexpected membership status %q", existing.Status))
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			invite := models.TeamMembership{
				TeamID: teamID,
				UserID: userID,
				Role:   models.RoleMember,
				Status: models.StatusInvited,
			}
			if err := tx.Create(&invite).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict("User has already been invited to this team")
				}
				return err
			}
			inviteID = invite.ID
			return nil
		default:
			return err
		}
	})
	return inviteID, err
}

// AcceptInvite transitions invited -> accepted. Only the invited user may
// accept; any other caller sees NotFound so the row's existence stays hidden.
func (s *MembershipService) AcceptInvite(userID, inviteID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		membership, err := invitedRow(tx, inviteID, userID)
		if err != nil {
			return err
		}
		if err := checkCapacity(tx, membership.TeamID); err != nil {
			return err
		}
		if err := tx.Model(membership).Update("status", models.StatusAccepted).Error; err != nil {
			return err
		}
		return addTeamConversationParticipant(tx, membership.TeamID, userID)
	})
}

// RejectInvite transitions invited -> rejected. Same visibility rule as
// AcceptInvite.
func (s *MembershipService) RejectInvite(userID, inviteID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		membership, err := invitedRow(tx, inviteID, userID)
		if err != nil {
			return err
		}
		return tx.Model(membership).Update("status", models.StatusRejected).Error
	})
}

func invitedRow(tx *gorm.DB, inviteID, userID uint) (*models.TeamMembership, error) {
	var membership models.TeamMembership
	err := tx.Where("id = ? AND user_id = ? AND status = ?", inviteID, userID, models.StatusInvited).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Invite not found")
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// AcceptRequest transitions a pending join request to accepted. Lead only.
func (s *MembershipService) AcceptRequest(leadID, teamID, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		membership, err := pendingRow(tx, leadID, teamID, userID)
		if err != nil {
			return err
		}
		if err := checkCapacity(tx, teamID); err != nil {
			return err
		}
		if err := tx.Model(membership).Update("status", models.StatusAccepted).Error; err != nil {
			return err
		}
		return addTeamConversationParticipant(tx, teamID, userID)
	})
}

// RejectRequest transitions a pending join request to rejected. Lead only.
func (s *MembershipService) RejectRequest(leadID, teamID, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		membership, err := pendingRow(tx, leadID, teamID, userID)
		if err != nil {
			return err
		}
		return tx.Model(membership).Update("status", models.StatusRejected).Error
	})
}

func pendingRow(tx *gorm.DB, leadID, teamID, userID uint) (*models.TeamMembership, error) {
	var team models.Team
	if err := tx.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Team not found")
		}
		return nil, err
	}
	if team.LeadID != leadID {
		return nil, apperr.Forbidden("Only team lead can manage join requests")
	}

	var membership models.TeamMembership
	err := tx.Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, models.StatusPending).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Join request not found")
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// checkCapacity enforces the seat limit at the -> accepted transition:
// accepted members never exceed open_positions + 1 (the lead's seat). The
// self-assignment write takes a row lock on the team, so concurrent accepts
// for the last seat serialize and the later one counts the earlier.
func checkCapacity(tx *gorm.DB, teamID uint) error {
	if err := tx.Model(&models.Team{}).Where("id = ?", teamID).
		UpdateColumn("open_positions", gorm.Expr("open_positions")).Error; err != nil {
		return err
	}
	var team models.Team
	if err := tx.First(&team, teamID).Error; err != nil {
		return err
	}
	if acceptedMemberCount(tx, teamID) >= int64(team.OpenPositions)+1 {
		return apperr.Conflict("Team is full")
	}
	return nil
}

// MyInvites lists the caller's open invites.
func (s *MembershipService) MyInvites(userID uint) ([]InviteView, error) {
	var memberships []models.TeamMembership
	err := s.db.Where("user_id = ? AND status = ?", userID, models.StatusInvited).
		Preload("Team").Preload("Team.Lead").Preload("Team.Hackathon").
		Order("joined_at DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	result := make([]InviteView, 0, len(memberships))
	for _, m := range memberships {
		if m.Team == nil {
			continue
		}
		view := InviteView{
			ID:        m.ID,
			TeamID:    m.TeamID,
			TeamName:  m.Team.Name,
			InviterID: m.Team.LeadID,
			Role:      string(m.Role),
			Status:    string(m.Status),
			Viewed:    m.Viewed,
			TimeAgo:   utils.TimeAgo(m.JoinedAt),
			CreatedAt: m.JoinedAt,
		}
		if m.Team.Lead != nil {
			view.InviterName = m.Team.Lead.DisplayName()
		}
		eventName := "a hackathon"
		if m.Team.Hackathon != nil {
			eventName = m.Team.Hackathon.Name
		}
		view.Message = fmt.Sprintf("Join our team for %s!", eventName)
		result = append(result, view)
	}
	return result, nil
}

// MarkInvitesViewed flags all of the caller's unviewed invites and reports
// how many rows changed.
func (s *MembershipService) MarkInvitesViewed(userID uint) (int64, error) {
	res := s.db.Model(&models.TeamMembership{}).
		Where("user_id = ? AND status = ? AND viewed = ?", userID, models.StatusInvited, false).
		Update("viewed", true)
	return res.RowsAffected, res.Error
}

// MyJoinRequests lists the caller's join requests and their outcomes,
// excluding teams they lead.
func (s *MembershipService) MyJoinRequests(userID uint) ([]JoinRequestView, error) {
	var memberships []models.TeamMembership
	err := s.db.Where("user_id = ? AND status IN ? AND role <> ?",
		userID,
		[]models.MembershipStatus{models.StatusPending, models.StatusAccepted, models.StatusRejected},
		models.RoleLeader).
		Preload("Team").
		Order("joined_at DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	result := make([]JoinRequestView, 0, len(memberships))
	for _, m := range memberships {
		if m.Team == nil {
			continue
		}
		result = append(result, JoinRequestView{
			ID:        m.ID,
			TeamID:    m.TeamID,
			TeamName:  m.Team.Name,
			UserID:    userID,
			Status:    string(m.Status),
			Message:   "I'd like to join your team!",
			TimeAgo:   utils.TimeAgo(m.JoinedAt),
			CreatedAt: m.JoinedAt,
		})
	}
	return result, nil
}

// PendingRequests lists pending join requests for a team. Lead only.
func (s *MembershipService) PendingRequests(leadID, teamID uint) ([]TeamMemberView, error) {
	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Team not found")
		}
		return nil, err
	}
	if team.LeadID != leadID {
		return nil, apperr.Forbidden("Only team lead can view join requests")
	}

	var memberships []models.TeamMembership
	err := s.db.Where("team_id = ? AND status = ?", teamID, models.StatusPending).
		Preload("User").
		Order("joined_at DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	result := make([]TeamMemberView, 0, len(memberships))
	for _, m := range memberships {
		if m.User == nil {
			continue
		}
		result = append(result, TeamMemberView{
			ID:       m.User.ID,
			Username: m.User.Username,
			FullName: m.User.DisplayName(),
			Role:     string(m.Role),
			Status:   string(m.Status),
		})
	}
	return result, nil
}
