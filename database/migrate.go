// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"hackmate/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB) {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Hackathon{},
		&models.HackathonRegistration{},
		&models.Team{},
		&models.TeamMembership{},
		&models.TeamTask{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.MessageRead{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	createIndexes(db)

	log.Println("All migrations completed successfully")
}

func createIndexes(db *gorm.DB) {
	// Hot paths not covered by the struct tags: membership lookups by user,
	// message ordering within a conversation, and hackathon listings.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_memberships_user_status ON team_memberships(user_id, status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages(conversation_id, created_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_hackathons_start ON hackathons(start_date)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_teams_created ON teams(created_at DESC)")
}
