// models/conversation.go
package models

import (
	"fmt"
	"time"
)

// Conversation is a direct chat between two users, or a team group chat when
// TeamID is set. UpdatedAt is bumped on every send so listings sort by
// recency.
type Conversation struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	TeamID *uint `json:"team_id" gorm:"index"`
	Team   *Team `json:"team,omitempty" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`

	// DirectKey is the normalized participant pair of a direct conversation.
	// The unique index holds the pair to at most one conversation even under
	// concurrent first contact. nil for team conversations.
	DirectKey *string `json:"-" gorm:"uniqueIndex;size:64"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Participants []ConversationParticipant `json:"participants,omitempty" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
	Messages     []Message                 `json:"-" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) IsGroupChat() bool {
	return c.TeamID != nil
}

// DirectConversationKey builds the DirectKey for a user pair. Argument order
// does not matter.
func DirectConversationKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

type ConversationParticipant struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	ConversationID uint          `json:"conversation_id" gorm:"not null;uniqueIndex:idx_conversation_user"`
	Conversation   *Conversation `json:"-" gorm:"foreignKey:ConversationID"`
	UserID         uint          `json:"user_id" gorm:"not null;uniqueIndex:idx_conversation_user"`
	User           *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}

type Message struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	ConversationID uint          `json:"conversation_id" gorm:"not null;index"`
	Conversation   *Conversation `json:"-" gorm:"foreignKey:ConversationID"`
	SenderID       uint          `json:"sender_id" gorm:"not null;index"`
	Sender         *User         `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Content        string        `json:"content" gorm:"not null;type:text"`
	CreatedAt      time.Time     `json:"created_at"`

	Reads []MessageRead `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageRead is a per-participant read receipt. A message counts as unread
// for a user until their receipt row exists; a single boolean cannot express
// this for group chats with three or more participants.
type MessageRead struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MessageID uint      `json:"message_id" gorm:"not null;uniqueIndex:idx_message_reader"`
	Message   *Message  `json:"-" gorm:"foreignKey:MessageID"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_message_reader"`
	ReadAt    time.Time `json:"read_at" gorm:"autoCreateTime"`
}

func (MessageRead) TableName() string {
	return "message_reads"
}
