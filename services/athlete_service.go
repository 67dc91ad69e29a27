package services

import (
	"errors"
	"fmt"
	"time"

	"gym-backend/models"

	"gorm.io/gorm"
)

type AthleteService struct {
	DB *gorm.DB
}

func NewAthleteService(db *gorm.DB) *AthleteService {
	return &AthleteService{DB: db}
}

type CreateAthleteInput struct {
	ParentID    uint
	FirstName   string
	LastName    string
	DateOfBirth string // 2006-01-02
	Gender      string
	Experience  string
	Allergies   string
}

func (s *AthleteService) CreateAthlete(in CreateAthleteInput) (*models.Athlete, error) {
	if in.ParentID == 0 {
		return nil, errors.New("parent_required")
	}
	var parent models.Parent
	if err := s.DB.First(&parent, in.ParentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("parent_not_found")
		}
		return nil, fmt.Errorf("failed to load parent: %w", err)
	}

	athlete := models.Athlete{
		ParentID:   &parent.ID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Gender:     in.Gender,
		Experience: in.Experience,
		Allergies:  in.Allergies,
	}
	if in.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", in.DateOfBirth)
		if err != nil {
			return nil, errors.New("invalid_date_of_birth")
		}
		athlete.DateOfBirth = &dob
	}

	if err := s.DB.Create(&athlete).Error; err != nil {
		return nil, fmt.Errorf("failed to create athlete: %w", err)
	}
	return &athlete, nil
}

func (s *AthleteService) GetAthlete(id uint) (*models.Athlete, error) {
	var athlete models.Athlete
	err := s.DB.
		Preload("Waivers", func(db *gorm.DB) *gorm.DB { return db.Order("signed_at DESC") }).
		Preload("Skills.Skill").
		First(&athlete, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("athlete_not_found")
		}
		return nil, fmt.Errorf("failed to load athlete: %w", err)
	}
	return &athlete, nil
}

func (s *AthleteService) ListAthletes(parentID uint, limit int) ([]models.Athlete, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.DB.Order("id DESC").Limit(limit)
	if parentID != 0 {
		q = q.Where("parent_id = ?", parentID)
	}

	var athletes []models.Athlete
	if err := q.Find(&athletes).Error; err != nil {
		return nil, fmt.Errorf("failed to list athletes: %w", err)
	}
	return athletes, nil
}

type UpdateAthleteInput struct {
	FirstName  *string
	LastName   *string
	Gender     *string
	Experience *string
	Allergies  *string
}

func (s *AthleteService) UpdateAthlete(id uint, in UpdateAthleteInput) (*models.Athlete, error) {
	var athlete models.Athlete
	if err := s.DB.First(&athlete, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("athlete_not_found")
		}
		return nil, fmt.Errorf("failed to load athlete: %w", err)
	}

	updates := map[string]interface{}{}
	if in.FirstName != nil {
		updates["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		updates["last_name"] = *in.LastName
	}
	if in.Gender != nil {
		updates["gender"] = *in.Gender
	}
	if in.Experience != nil {
		updates["experience"] = *in.Experience
	}
	if in.Allergies != nil {
		updates["allergies"] = *in.Allergies
	}
	if len(updates) == 0 {
		return &athlete, nil
	}

	if err := s.DB.Model(&athlete).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update athlete: %w", err)
	}
	return &athlete, nil
}
