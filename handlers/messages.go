package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hackmate/apperr"
	"hackmate/database"
	"hackmate/metrics"
	"hackmate/middleware"
	"hackmate/models"
	"hackmate/services"
	"hackmate/ws"
)

type SendMessageRequest struct {
	RecipientID uint   `json:"recipient_id"`
	Content     string `json:"content"`
}

type ConversationMessageRequest struct {
	Content string `json:"content"`
}

// SendDirectMessage sends a message to another user, creating the direct
// conversation between them if it does not exist yet.
func SendDirectMessage(c *fiber.Ctx) error {
	senderID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	svc := services.NewMessageService(database.GetDB())
	view, err := svc.SendDirect(senderID, req.RecipientID, req.Content)
	if err != nil {
		return err
	}

	metrics.MessagesSent.Inc()
	hub.Notify(req.RecipientID, ws.Event{Type: "message.new", Data: view})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": view})
}

// ListConversations returns the caller's inbox, most recent activity first.
func ListConversations(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	svc := services.NewMessageService(database.GetDB())
	conversations, err := svc.ListConversations(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// GetConversation returns a conversation's messages and marks them read
// for the caller.
func GetConversation(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperr.Validation("Invalid conversation id")
	}

	svc := services.NewMessageService(database.GetDB())
	view, err := svc.GetConversation(userID, uint(id))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "conversation": view})
}

// SendToConversation appends a message to a conversation the caller is in.
func SendToConversation(c *fiber.Ctx) error {
	senderID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperr.Validation("Invalid conversation id")
	}

	var req ConversationMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	svc := services.NewMessageService(database.GetDB())
	view, err := svc.SendToConversation(senderID, uint(id), req.Content)
	if err != nil {
		return err
	}

	metrics.MessagesSent.Inc()
	notifyParticipants(uint(id), senderID, ws.Event{Type: "message.new", Data: view})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": view})
}

// UnreadCount returns how many messages the caller has not read yet.
func UnreadCount(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	svc := services.NewMessageService(database.GetDB())
	count, err := svc.UnreadCount(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "unread_count": count})
}

// TeamConversation opens a team's group chat, creating it on first use.
func TeamConversation(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := c.ParamsInt("teamID")
	if err != nil || teamID <= 0 {
		return apperr.Validation("Invalid team id")
	}

	svc := services.NewMessageService(database.GetDB())
	view, err := svc.TeamConversation(userID, uint(teamID))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "conversation": view})
}

// notifyParticipants pushes an event to everyone in a conversation except
// the sender. Push failures are dropped; clients catch up over REST.
func notifyParticipants(conversationID, senderID uint, event ws.Event) {
	var userIDs []uint
	err := database.GetDB().
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id <> ?", conversationID, senderID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return
	}
	for _, id := range userIDs {
		hub.Notify(id, event)
	}
}
