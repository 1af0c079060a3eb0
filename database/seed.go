// database/seed.go - Development sample data
package database

import (
	"log"
	"time"

	"hackmate/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed populates the database with sample users, hackathons and teams.
// It is a no-op when users already exist.
func Seed(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Data already exists, skipping seed.")
		return
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("Demo123!"), bcrypt.DefaultCost)

	err := db.Transaction(func(tx *gorm.DB) error {
		users := []models.User{
			{
				Email:        "sarah.chen@example.com",
				Username:     "sarah_chen",
				Password:     string(hash),
				FullName:     "Sarah Chen",
				Experience:   "Full Stack Developer",
				Bio:          "Passionate about building scalable web applications. Love hackathons!",
				Skills:       models.SkillsJSON([]string{"React", "Node.js", "Python", "MongoDB"}),
				GithubURL:    "https://github.com/sarachen",
				LinkedinURL:  "https://linkedin.com/in/sarachen",
				Location:     "San Francisco, CA",
				Availability: models.AvailabilityLooking,
			},
			{
				Email:        "alex.kumar@example.com",
				Username:     "alex_kumar",
				Password:     string(hash),
				FullName:     "Alex Kumar",
				Experience:   "UI/UX Designer",
				Bio:          "Designer focused on creating intuitive user experiences",
				Skills:       models.SkillsJSON([]string{"UI/UX Design", "Figma", "User Research"}),
				GithubURL:    "https://github.com/alexkumar",
				LinkedinURL:  "https://linkedin.com/in/alexkumar",
				Location:     "New York, NY",
				Availability: models.AvailabilityAvailable,
			},
			{
				Email:        "jordan.m@example.com",
				Username:     "jordan_martinez",
				Password:     string(hash),
				FullName:     "Jordan Martinez",
				Experience:   "Backend Developer",
				Bio:          "Backend specialist with cloud deployment experience",
				Skills:       models.SkillsJSON([]string{"Python", "PostgreSQL", "AWS", "Docker"}),
				GithubURL:    "https://github.com/jordanm",
				LinkedinURL:  "https://linkedin.com/in/jordanmartinez",
				Location:     "Austin, TX",
				Availability: models.AvailabilityLooking,
			},
			{
				Email:        "emily.watson@example.com",
				Username:     "emily_watson",
				Password:     string(hash),
				FullName:     "Emily Watson",
				Experience:   "Data Scientist",
				Bio:          "ML enthusiast looking to build AI-powered solutions",
				Skills:       models.SkillsJSON([]string{"Python", "Machine Learning", "TensorFlow"}),
				Location:     "Seattle, WA",
				Availability: models.AvailabilityBusy,
			},
		}
		if err := tx.Create(&users).Error; err != nil {
			return err
		}

		hackathons := []models.Hackathon{
			{
				Name:            "AI Innovation Challenge",
				Description:     "Build the next generation of AI-powered applications",
				Category:        models.CategoryAIML,
				Mode:            models.ModeHybrid,
				Status:          models.HackathonRegistrationOpen,
				StartDate:       time.Now().AddDate(0, 0, 14),
				EndDate:         time.Now().AddDate(0, 0, 16),
				Location:        "San Francisco, CA",
				Prize:           "$10,000",
				MaxParticipants: 500,
			},
			{
				Name:            "Web3 Builders Weekend",
				Description:     "48 hours of decentralized application building",
				Category:        models.CategoryWeb3,
				Mode:            models.ModeRemote,
				Status:          models.HackathonRegistrationOpen,
				StartDate:       time.Now().AddDate(0, 1, 0),
				EndDate:         time.Now().AddDate(0, 1, 2),
				Location:        "Online",
				Prize:           "$5,000",
				MaxParticipants: 300,
			},
		}
		if err := tx.Create(&hackathons).Error; err != nil {
			return err
		}

		team := models.Team{
			Name:           "Neural Ninjas",
			Description:    "Building an AI assistant for hackathon team matching",
			Category:       models.CategoryAIML,
			HackathonID:    hackathons[0].ID,
			LeadID:         users[0].ID,
			RequiredSkills: models.SkillsJSON([]string{"Machine Learning", "React"}),
			OpenPositions:  3,
		}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}

		memberships := []models.TeamMembership{
			{TeamID: team.ID, UserID: users[0].ID, Role: models.RoleLeader, Status: models.StatusAccepted},
			{TeamID: team.ID, UserID: users[1].ID, Role: models.RoleMember, Status: models.StatusAccepted},
			{TeamID: team.ID, UserID: users[2].ID, Role: models.RoleMember, Status: models.StatusInvited},
			{TeamID: team.ID, UserID: users[3].ID, Role: models.RoleMember, Status: models.StatusPending},
		}
		if err := tx.Create(&memberships).Error; err != nil {
			return err
		}

		registrations := []models.HackathonRegistration{
			{HackathonID: hackathons[0].ID, UserID: users[0].ID},
			{HackathonID: hackathons[0].ID, UserID: users[1].ID},
		}
		return tx.Create(&registrations).Error
	})

	if err != nil {
		log.Printf("Seed failed: %v", err)
		return
	}
	log.Println("Sample data created")
}
