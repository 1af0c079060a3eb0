// services/hackathon_service.go - Hackathon listings and registration
package services

import (
	"errors"
	"time"

	"hackmate/apperr"
	"hackmate/models"

	"gorm.io/gorm"
)

type HackathonService struct {
	db *gorm.DB
}

func NewHackathonService(db *gorm.DB) *HackathonService {
	return &HackathonService{db: db}
}

type HackathonFilter struct {
	Category string
	Mode     string
	Status   string
	Limit    int
	Offset   int
}

type CreateHackathonInput struct {
	Name            string
	Description     string
	Category        models.Category
	Mode            models.HackathonMode
	StartDate       string
	EndDate         string
	Location        string
	Prize           string
	MaxParticipants int
}

func (s *HackathonService) List(filter HackathonFilter) ([]HackathonView, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	query := s.db.Model(&models.Hackathon{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Mode != "" {
		query = query.Where("mode = ?", filter.Mode)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var hackathons []models.Hackathon
	err := query.Order("start_date ASC").Limit(filter.Limit).Offset(filter.Offset).Find(&hackathons).Error
	if err != nil {
		return nil, err
	}
	return s.views(hackathons), nil
}

func (s *HackathonService) Search(q string) ([]HackathonView, error) {
	query := s.db.Model(&models.Hackathon{})
	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("name LIKE ? OR description LIKE ? OR location LIKE ?", pattern, pattern, pattern)
	}

	var hackathons []models.Hackathon
	if err := query.Order("start_date ASC").Limit(50).Find(&hackathons).Error; err != nil {
		return nil, err
	}
	return s.views(hackathons), nil
}

func (s *HackathonService) Get(hackathonID uint) (*HackathonView, error) {
	var hackathon models.Hackathon
	if err := s.db.First(&hackathon, hackathonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Hackathon not found")
		}
		return nil, err
	}
	view := s.view(&hackathon)
	return &view, nil
}

func (s *HackathonService) Create(input CreateHackathonInput) (*HackathonView, error) {
	if input.Name == "" {
		return nil, apperr.Validation("Hackathon name is required")
	}
	if !input.Category.Valid() {
		return nil, apperr.Validation("Invalid hackathon category")
	}
	if !input.Mode.Valid() {
		return nil, apperr.Validation("Invalid hackathon mode")
	}

	start, err := time.Parse(time.RFC3339, input.StartDate)
	if err != nil {
		return nil, apperr.Validation("Invalid start date")
	}
	end, err := time.Parse(time.RFC3339, input.EndDate)
	if err != nil {
		return nil, apperr.Validation("Invalid end date")
	}
	if !end.After(start) {
		return nil, apperr.Validation("End date must be after start date")
	}

	maxParticipants := input.MaxParticipants
	if maxParticipants <= 0 {
		maxParticipants = 500
	}

	hackathon := models.Hackathon{
		Name:            input.Name,
		Description:     input.Description,
		Category:        input.Category,
		Mode:            input.Mode,
		Status:          models.HackathonUpcoming,
		StartDate:       start,
		EndDate:         end,
		Location:        input.Location,
		Prize:           input.Prize,
		MaxParticipants: maxParticipants,
	}
	if err := s.db.Create(&hackathon).Error; err != nil {
		return nil, err
	}

	view := s.view(&hackathon)
	return &view, nil
}

// Register registers a user for a hackathon. The duplicate check, the
// capacity check and the insert run in one transaction so two concurrent
// registrations cannot both take the last seat.
func (s *HackathonService) Register(userID, hackathonID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		// Row lock on the hackathon so concurrent registrations for the last
		// seat serialize before the counts below.
		res := tx.Model(&models.Hackathon{}).Where("id = ?", hackathonID).
			UpdateColumn("max_participants", gorm.Expr("max_participants"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Hackathon not found")
		}
		var hackathon models.Hackathon
		if err := tx.First(&hackathon, hackathonID).Error; err != nil {
			return err
		}

		var existing int64
		tx.Model(&models.HackathonRegistration{}).
			Where("hackathon_id = ? AND user_id = ?", hackathonID, userID).
			Count(&existing)
		if existing > 0 {
			return apperr.Conflict("Already registered for this hackathon")
		}

		var participants int64
		tx.Model(&models.HackathonRegistration{}).
			Where("hackathon_id = ?", hackathonID).
			Count(&participants)
		if participants >= int64(hackathon.MaxParticipants) {
			return apperr.Conflict("Hackathon is full")
		}

		registration := models.HackathonRegistration{
			HackathonID: hackathonID,
			UserID:      userID,
		}
		if err := tx.Create(&registration).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("Already registered for this hackathon")
			}
			return err
		}
		return nil
	})
}

func (s *HackathonService) Unregister(userID, hackathonID uint) error {
	var registration models.HackathonRegistration
	err := s.db.Where("hackathon_id = ? AND user_id = ?", hackathonID, userID).
		First(&registration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Registration not found")
	}
	if err != nil {
		return err
	}
	return s.db.Delete(&registration).Error
}

func (s *HackathonService) MyRegistrations(userID uint) ([]HackathonView, error) {
	var registrations []models.HackathonRegistration
	err := s.db.Where("user_id = ?", userID).
		Preload("Hackathon").
		Order("registered_at DESC").
		Find(&registrations).Error
	if err != nil {
		return nil, err
	}

	result := make([]HackathonView, 0, len(registrations))
	for _, r := range registrations {
		if r.Hackathon == nil {
			continue
		}
		result = append(result, s.view(r.Hackathon))
	}
	return result, nil
}

// ParticipantCount counts registrations. Derived, never stored.
func (s *HackathonService) ParticipantCount(hackathonID uint) int64 {
	var count int64
	s.db.Model(&models.HackathonRegistration{}).
		Where("hackathon_id = ?", hackathonID).
		Count(&count)
	return count
}

func (s *HackathonService) views(hackathons []models.Hackathon) []HackathonView {
	result := make([]HackathonView, 0, len(hackathons))
	for i := range hackathons {
		result = append(result, s.view(&hackathons[i]))
	}
	return result
}

func (s *HackathonService) view(h *models.Hackathon) HackathonView {
	return HackathonView{
		ID:               h.ID,
		Name:             h.Name,
		Description:      h.Description,
		Category:         string(h.Category),
		Mode:             string(h.Mode),
		Status:           string(h.Status),
		StartDate:        h.StartDate,
		EndDate:          h.EndDate,
		Location:         h.Location,
		Prize:            h.Prize,
		MaxParticipants:  h.MaxParticipants,
		ParticipantCount: s.ParticipantCount(h.ID),
		WebsiteURL:       h.WebsiteURL,
		RegistrationURL:  h.RegistrationURL,
	}
}
