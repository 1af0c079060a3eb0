package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hackmate/database"
	"hackmate/models"
)

// testDB opens an isolated in-memory database per test with the full schema
// applied. The named shared-cache DSN keeps the database alive across the
// pool's connections for the duration of the test.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	database.RunMigrations(db)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func mkUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		FullName: username,
		Skills:   models.SkillsJSON([]string{"Python"}),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func mkHackathon(t *testing.T, db *gorm.DB, name string, maxParticipants int) *models.Hackathon {
	t.Helper()

	hackathon := models.Hackathon{
		Name:            name,
		Description:     "test event",
		Category:        models.CategoryAIML,
		Mode:            models.ModeRemote,
		Status:          models.HackathonRegistrationOpen,
		StartDate:       time.Now().AddDate(0, 1, 0),
		EndDate:         time.Now().AddDate(0, 1, 2),
		Location:        "Online",
		MaxParticipants: maxParticipants,
	}
	if err := db.Create(&hackathon).Error; err != nil {
		t.Fatalf("create hackathon %s: %v", name, err)
	}
	return &hackathon
}

// mkTeam creates a team through the service so the lead membership invariant
// holds the same way it does in production.
func mkTeam(t *testing.T, db *gorm.DB, leadID uint, name string, maxMembers int) *TeamSummaryView {
	t.Helper()

	team, err := NewTeamService(db).CreateTeam(leadID, CreateTeamInput{
		Name:       name,
		Category:   models.CategoryAIML,
		MaxMembers: maxMembers,
	})
	if err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	return team
}

// acceptMember moves a user straight onto the roster: invite plus accept.
func acceptMember(t *testing.T, db *gorm.DB, leadID, teamID, userID uint) {
	t.Helper()

	svc := NewMembershipService(db)
	inviteID, err := svc.Invite(leadID, teamID, userID)
	if err != nil {
		t.Fatalf("invite user %d: %v", userID, err)
	}
	if err := svc.AcceptInvite(userID, inviteID); err != nil {
		t.Fatalf("accept invite %d: %v", inviteID, err)
	}
}

func membershipRow(t *testing.T, db *gorm.DB, teamID, userID uint) *models.TeamMembership {
	t.Helper()

	var m models.TeamMembership
	if err := db.Where("team_id = ? AND user_id = ?", teamID, userID).First(&m).Error; err != nil {
		t.Fatalf("load membership team=%d user=%d: %v", teamID, userID, err)
	}
	return &m
}
