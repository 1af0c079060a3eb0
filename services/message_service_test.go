package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"hackmate/apperr"
	"hackmate/models"
)

func TestSendDirectReusesConversation(t *testing.T) {
	db := testDB(t)
	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")

	svc := NewMessageService(db)
	if _, err := svc.SendDirect(alice.ID, bob.ID, "hey"); err != nil {
		t.Fatalf("alice sends: %v", err)
	}
	// The reply from the other side must land in the same conversation.
	if _, err := svc.SendDirect(bob.ID, alice.ID, "hi back"); err != nil {
		t.Fatalf("bob replies: %v", err)
	}

	var count int64
	db.Model(&models.Conversation{}).Count(&count)
	if count != 1 {
		t.Errorf("conversations = %d, want 1", count)
	}

	conversations, err := svc.ListConversations(alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("listed conversations = %d, want 1", len(conversations))
	}
	if conversations[0].LastMessage == nil || *conversations[0].LastMessage != "hi back" {
		t.Errorf("last message = %v, want hi back", conversations[0].LastMessage)
	}
	if conversations[0].IsGroupChat {
		t.Error("direct conversation flagged as group chat")
	}
}

func TestDirectConversationKeyIsOrderIndependent(t *testing.T) {
	if got := models.DirectConversationKey(7, 2); got != "2:7" {
		t.Errorf("DirectConversationKey(7, 2) = %q, want 2:7", got)
	}
	if models.DirectConversationKey(2, 7) != models.DirectConversationKey(7, 2) {
		t.Error("key differs with argument order")
	}
}

// The schema itself must hold a user pair to a single direct conversation, so
// two writers racing through first contact cannot both commit one.
func TestDirectConversationPairIsUnique(t *testing.T) {
	db := testDB(t)

	key := models.DirectConversationKey(1, 2)
	if err := db.Create(&models.Conversation{DirectKey: &key}).Error; err != nil {
		t.Fatalf("first conversation: %v", err)
	}
	err := db.Create(&models.Conversation{DirectKey: &key}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("second conversation for same pair: err = %v, want duplicated key", err)
	}

	// Team conversations carry no key and stay unconstrained.
	teamID := uint(1)
	for i := 0; i < 2; i++ {
		if err := db.Create(&models.Conversation{TeamID: &teamID}).Error; err != nil {
			t.Fatalf("team conversation %d: %v", i, err)
		}
	}
}

// A conversation committed by a concurrent writer between our lookup and
// insert must be adopted, not duplicated.
func TestSendDirectAdoptsExistingPairConversation(t *testing.T) {
	db := testDB(t)
	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")

	key := models.DirectConversationKey(alice.ID, bob.ID)
	winner := models.Conversation{DirectKey: &key}
	if err := db.Create(&winner).Error; err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	participants := []models.ConversationParticipant{
		{ConversationID: winner.ID, UserID: alice.ID},
		{ConversationID: winner.ID, UserID: bob.ID},
	}
	if err := db.Create(&participants).Error; err != nil {
		t.Fatalf("seed participants: %v", err)
	}

	conv, err := getOrCreateDirect(db, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("getOrCreateDirect: %v", err)
	}
	if conv.ID != winner.ID {
		t.Errorf("conversation id = %d, want %d", conv.ID, winner.ID)
	}

	if _, err := NewMessageService(db).SendDirect(alice.ID, bob.ID, "hey"); err != nil {
		t.Fatalf("send: %v", err)
	}
	var count int64
	db.Model(&models.Conversation{}).Count(&count)
	if count != 1 {
		t.Errorf("conversations = %d, want 1", count)
	}
}

func TestSendDirectValidation(t *testing.T) {
	db := testDB(t)
	alice := mkUser(t, db, "alice")

	svc := NewMessageService(db)
	if _, err := svc.SendDirect(alice.ID, alice.ID, "me again"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("self-message error = %v, want validation", err)
	}
	if _, err := svc.SendDirect(alice.ID, 999, ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("empty content error = %v, want validation", err)
	}
	if _, err := svc.SendDirect(alice.ID, 999, "hello?"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unknown recipient error = %v, want not found", err)
	}
}

func TestUnreadCountAndMarkReadOnOpen(t *testing.T) {
	db := testDB(t)
	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")

	svc := NewMessageService(db)
	if _, err := svc.SendDirect(alice.ID, bob.ID, "one"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.SendDirect(alice.ID, bob.ID, "two"); err != nil {
		t.Fatalf("send: %v", err)
	}

	bobUnread, err := svc.UnreadCount(bob.ID)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if bobUnread != 2 {
		t.Errorf("bob unread = %d, want 2", bobUnread)
	}
	// A sender never counts their own messages as unread.
	aliceUnread, err := svc.UnreadCount(alice.ID)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if aliceUnread != 0 {
		t.Errorf("alice unread = %d, want 0", aliceUnread)
	}

	conversations, err := svc.ListConversations(bob.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if conversations[0].UnreadCount != 2 {
		t.Errorf("conversation unread = %d, want 2", conversations[0].UnreadCount)
	}

	// Opening the conversation records receipts for everything.
	detail, err := svc.GetConversation(bob.ID, conversations[0].ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(detail.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(detail.Messages))
	}
	if detail.Messages[0].Content != "one" {
		t.Errorf("first message = %s, want oldest first", detail.Messages[0].Content)
	}

	bobUnread, _ = svc.UnreadCount(bob.ID)
	if bobUnread != 0 {
		t.Errorf("bob unread after open = %d, want 0", bobUnread)
	}

	// Re-opening is idempotent: one receipt per (message, reader).
	if _, err := svc.GetConversation(bob.ID, conversations[0].ID); err != nil {
		t.Fatalf("re-open: %v", err)
	}
	var receipts int64
	db.Model(&models.MessageRead{}).Where("user_id = ?", bob.ID).Count(&receipts)
	if receipts != 2 {
		t.Errorf("receipts = %d, want 2", receipts)
	}
}

func TestConversationAccessControl(t *testing.T) {
	db := testDB(t)
	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")
	eve := mkUser(t, db, "eve")

	svc := NewMessageService(db)
	if _, err := svc.SendDirect(alice.ID, bob.ID, "private"); err != nil {
		t.Fatalf("send: %v", err)
	}
	conversations, err := svc.ListConversations(alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	convID := conversations[0].ID

	if _, err := svc.GetConversation(eve.ID, convID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("outsider read error = %v, want forbidden", err)
	}
	if _, err := svc.SendToConversation(eve.ID, convID, "let me in"); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("outsider send error = %v, want forbidden", err)
	}
	if _, err := svc.GetConversation(alice.ID, 999); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("missing conversation error = %v, want not found", err)
	}
}

func TestTeamConversationSeededWithRoster(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	member := mkUser(t, db, "member")
	outsider := mkUser(t, db, "outsider")
	team := mkTeam(t, db, lead.ID, "builders", 4)
	acceptMember(t, db, lead.ID, team.ID, member.ID)

	svc := NewMessageService(db)
	conv, err := svc.TeamConversation(lead.ID, team.ID)
	if err != nil {
		t.Fatalf("open team chat: %v", err)
	}
	if !conv.IsGroupChat {
		t.Error("team conversation not flagged as group chat")
	}
	if len(conv.Participants) != 2 {
		t.Errorf("participants = %d, want the whole roster (2)", len(conv.Participants))
	}

	if _, err := svc.TeamConversation(outsider.ID, team.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("outsider error = %v, want forbidden", err)
	}

	// Opening again reuses the conversation.
	again, err := svc.TeamConversation(member.ID, team.ID)
	if err != nil {
		t.Fatalf("member opens: %v", err)
	}
	if again.ID != conv.ID {
		t.Errorf("second open got conversation %d, want %d", again.ID, conv.ID)
	}
}

// A member accepted after the group chat exists must be added to it.
func TestLateJoinerAddedToTeamConversation(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	late := mkUser(t, db, "late")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	msgSvc := NewMessageService(db)
	conv, err := msgSvc.TeamConversation(lead.ID, team.ID)
	if err != nil {
		t.Fatalf("open team chat: %v", err)
	}
	if len(conv.Participants) != 1 {
		t.Fatalf("participants = %d, want 1 before the join", len(conv.Participants))
	}

	acceptMember(t, db, lead.ID, team.ID, late.ID)

	var count int64
	db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conv.ID, late.ID).
		Count(&count)
	if count != 1 {
		t.Error("late joiner missing from team conversation")
	}

	// And the late joiner can post.
	if _, err := msgSvc.SendToConversation(late.ID, conv.ID, "made it"); err != nil {
		t.Fatalf("late joiner send: %v", err)
	}
}
