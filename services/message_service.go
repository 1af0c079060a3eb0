// services/message_service.go - Conversations, messages and read tracking
package services

import (
	"errors"

	"hackmate/apperr"
	"hackmate/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// SendDirect sends a message to a user, creating the direct conversation on
// first contact. Two participants always resolve to the same conversation
// regardless of who messages whom first.
func (s *MessageService) SendDirect(senderID, recipientID uint, content string) (*MessageView, error) {
	if content == "" {
		return nil, apperr.Validation("Message content is required")
	}
	if senderID == recipientID {
		return nil, apperr.Validation("Cannot message yourself")
	}

	var view *MessageView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var recipient models.User
		if err := tx.First(&recipient, recipientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("User not found")
			}
			return err
		}

		conversation, err := getOrCreateDirect(tx, senderID, recipientID)
		if err != nil {
			return err
		}

		view, err = appendMessage(tx, conversation.ID, senderID, content)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SendToConversation appends a message to an existing conversation. The
// sender must be a participant.
func (s *MessageService) SendToConversation(senderID, conversationID uint, content string) (*MessageView, error) {
	if content == "" {
		return nil, apperr.Validation("Message content is required")
	}

	var view *MessageView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := requireParticipant(tx, conversationID, senderID); err != nil {
			return err
		}
		var err error
		view, err = appendMessage(tx, conversationID, senderID, content)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// getOrCreateDirect finds the direct conversation shared by both users and
// creates it with both participants when absent. The unique DirectKey index
// keeps the pair on a single conversation: if a concurrent first contact wins
// the insert, the do-nothing upsert leaves the ID zero and we adopt the
// winner's row.
func getOrCreateDirect(tx *gorm.DB, userA, userB uint) (*models.Conversation, error) {
	key := models.DirectConversationKey(userA, userB)

	var conversation models.Conversation
	err := tx.Where("direct_key = ?", key).First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conversation = models.Conversation{DirectKey: &key}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "direct_key"}},
		DoNothing: true,
	}).Create(&conversation).Error; err != nil {
		return nil, err
	}
	if conversation.ID == 0 {
		if err := tx.Where("direct_key = ?", key).First(&conversation).Error; err != nil {
			return nil, err
		}
		return &conversation, nil
	}
	participants := []models.ConversationParticipant{
		{ConversationID: conversation.ID, UserID: userA},
		{ConversationID: conversation.ID, UserID: userB},
	}
	if err := tx.Create(&participants).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func appendMessage(tx *gorm.DB, conversationID, senderID uint, content string) (*MessageView, error) {
	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := tx.Create(&message).Error; err != nil {
		return nil, err
	}

	// Bump recency so conversation listings stay sorted by latest activity.
	if err := tx.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", message.CreatedAt).Error; err != nil {
		return nil, err
	}

	var sender models.User
	if err := tx.First(&sender, senderID).Error; err != nil {
		return nil, err
	}
	return &MessageView{
		ID:         message.ID,
		SenderID:   senderID,
		SenderName: sender.DisplayName(),
		Content:    message.Content,
		IsRead:     false,
		CreatedAt:  message.CreatedAt,
	}, nil
}

func requireParticipant(tx *gorm.DB, conversationID, userID uint) error {
	var conversation models.Conversation
	if err := tx.First(&conversation, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Conversation not found")
		}
		return err
	}
	var count int64
	tx.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count)
	if count == 0 {
		return apperr.Forbidden("You are not a participant in this conversation")
	}
	return nil
}

// GetConversation returns a conversation's messages oldest-first and, in the
// same transaction, records read receipts for every message the reader has
// not sent. A message committed after this transaction keeps its unread
// state.
func (s *MessageService) GetConversation(readerID, conversationID uint) (*ConversationDetailView, error) {
	var view *ConversationDetailView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := requireParticipant(tx, conversationID, readerID); err != nil {
			return err
		}
		var err error
		view, err = openAndMarkRead(tx, conversationID, readerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func openAndMarkRead(tx *gorm.DB, conversationID, readerID uint) (*ConversationDetailView, error) {
	var conversation models.Conversation
	err := tx.Preload("Participants").Preload("Participants.User").Preload("Team").
		First(&conversation, conversationID).Error
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	err = tx.Where("conversation_id = ?", conversationID).
		Preload("Sender").Preload("Reads").
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Insert receipts for everything the reader hasn't sent. ON CONFLICT DO
	// NOTHING keeps a re-open idempotent.
	receipts := make([]models.MessageRead, 0, len(messages))
	for _, m := range messages {
		if m.SenderID != readerID {
			receipts = append(receipts, models.MessageRead{MessageID: m.ID, UserID: readerID})
		}
	}
	if len(receipts) > 0 {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&receipts).Error; err != nil {
			return nil, err
		}
	}

	summary := summarizeConversation(&conversation, messages)
	summary.UnreadCount = 0 // everything just got marked read

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		mv := MessageView{
			ID:        m.ID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			IsRead:    len(m.Reads) > 0 || m.SenderID != readerID,
			CreatedAt: m.CreatedAt,
		}
		if m.Sender != nil {
			mv.SenderName = m.Sender.DisplayName()
		}
		views = append(views, mv)
	}

	return &ConversationDetailView{
		ConversationSummaryView: summary,
		Messages:                views,
	}, nil
}

// ListConversations returns the caller's conversations, most recently active
// first, each with its own unread count.
func (s *MessageService) ListConversations(userID uint) ([]ConversationSummaryView, error) {
	var conversations []models.Conversation
	err := s.db.
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id AND cp.user_id = ?", userID).
		Preload("Participants").Preload("Participants.User").Preload("Team").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	result := make([]ConversationSummaryView, 0, len(conversations))
	for i := range conversations {
		conv := &conversations[i]

		var last models.Message
		var lastMessages []models.Message
		if err := s.db.Where("conversation_id = ?", conv.ID).
			Order("created_at DESC, id DESC").Limit(1).Find(&lastMessages).Error; err != nil {
			return nil, err
		}

		summary := summarizeConversation(conv, nil)
		if len(lastMessages) > 0 {
			last = lastMessages[0]
			summary.LastMessage = &last.Content
		}
		summary.UnreadCount = conversationUnread(s.db, conv.ID, userID)
		result = append(result, summary)
	}
	return result, nil
}

// UnreadCount totals unread messages across every conversation the user
// participates in. Messages the user sent never count.
func (s *MessageService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Message{}).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = messages.conversation_id AND cp.user_id = ?", userID).
		Where("messages.sender_id <> ?", userID).
		Where("NOT EXISTS (SELECT 1 FROM message_reads mr WHERE mr.message_id = messages.id AND mr.user_id = ?)", userID).
		Count(&count).Error
	return count, err
}

func conversationUnread(tx *gorm.DB, conversationID, userID uint) int64 {
	var count int64
	tx.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ?", conversationID, userID).
		Where("NOT EXISTS (SELECT 1 FROM message_reads mr WHERE mr.message_id = messages.id AND mr.user_id = ?)", userID).
		Count(&count)
	return count
}

// TeamConversation returns the team's group chat, creating it on first
// access seeded with all currently-accepted members. The caller must hold an
// accepted membership. Opening marks messages read like GetConversation.
func (s *MessageService) TeamConversation(userID, teamID uint) (*ConversationDetailView, error) {
	var view *ConversationDetailView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Team not found")
			}
			return err
		}
		if !isAcceptedMember(tx, teamID, userID) {
			return apperr.Forbidden("You are not a member of this team")
		}

		var conversation models.Conversation
		err := tx.Where("team_id = ?", teamID).First(&conversation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			conversation = models.Conversation{TeamID: &teamID}
			if err := tx.Create(&conversation).Error; err != nil {
				return err
			}

			var memberships []models.TeamMembership
			if err := tx.Where("team_id = ? AND status = ?", teamID, models.StatusAccepted).
				Find(&memberships).Error; err != nil {
				return err
			}
			participants := make([]models.ConversationParticipant, 0, len(memberships))
			for _, m := range memberships {
				participants = append(participants, models.ConversationParticipant{
					ConversationID: conversation.ID,
					UserID:         m.UserID,
				})
			}
			if len(participants) > 0 {
				if err := tx.Create(&participants).Error; err != nil {
					return err
				}
			}
		} else if err != nil {
			return err
		}

		view, err = openAndMarkRead(tx, conversation.ID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// addTeamConversationParticipant keeps the group chat's participant set in
// sync when a membership becomes accepted. No-op until the conversation has
// been created.
func addTeamConversationParticipant(tx *gorm.DB, teamID, userID uint) error {
	var conversation models.Conversation
	err := tx.Where("team_id = ?", teamID).First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	participant := models.ConversationParticipant{
		ConversationID: conversation.ID,
		UserID:         userID,
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&participant).Error
}

func summarizeConversation(conv *models.Conversation, messages []models.Message) ConversationSummaryView {
	participantIDs := make([]uint, 0, len(conv.Participants))
	participantNames := make([]string, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		participantIDs = append(participantIDs, p.UserID)
		if p.User != nil {
			participantNames = append(participantNames, p.User.DisplayName())
		}
	}

	summary := ConversationSummaryView{
		ID:               conv.ID,
		Participants:     participantIDs,
		ParticipantNames: participantNames,
		UpdatedAt:        conv.UpdatedAt,
		IsGroupChat:      conv.IsGroupChat(),
		TeamID:           conv.TeamID,
	}
	if conv.Team != nil {
		summary.TeamName = &conv.Team.Name
	}
	if len(messages) > 0 {
		summary.LastMessage = &messages[len(messages)-1].Content
	}
	return summary
}
