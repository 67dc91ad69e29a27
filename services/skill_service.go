package services

import (
	"errors"
	"fmt"

	"gym-backend/models"

	"gorm.io/gorm"
)

var athleteSkillStatuses = map[string]bool{
	"learning":   true,
	"consistent": true,
	"mastered":   true,
}

type SkillService struct {
	DB *gorm.DB
}

func NewSkillService(db *gorm.DB) *SkillService {
	return &SkillService{DB: db}
}

func (s *SkillService) ListSkills() ([]models.Skill, error) {
	var skills []models.Skill
	if err := s.DB.Preload("Apparatus").Order("id").Find(&skills).Error; err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	return skills, nil
}

// UpsertAthleteSkill records or advances an athlete's progress on a skill.
func (s *SkillService) UpsertAthleteSkill(athleteID, skillID uint, status, notes string) (*models.AthleteSkill, error) {
	if !athleteSkillStatuses[status] {
		return nil, errors.New("invalid_skill_status")
	}

	var athlete models.Athlete
	if err := s.DB.First(&athlete, athleteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("athlete_not_found")
		}
		return nil, fmt.Errorf("failed to load athlete: %w", err)
	}
	var skill models.Skill
	if err := s.DB.First(&skill, skillID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("skill_not_found")
		}
		return nil, fmt.Errorf("failed to load skill: %w", err)
	}

	var record models.AthleteSkill
	err := s.DB.Where("athlete_id = ? AND skill_id = ?", athleteID, skillID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = models.AthleteSkill{
			AthleteID: athleteID,
			SkillID:   skillID,
			Status:    status,
			Notes:     notes,
		}
		if err := s.DB.Create(&record).Error; err != nil {
			return nil, fmt.Errorf("failed to create athlete skill: %w", err)
		}
		return &record, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load athlete skill: %w", err)
	}

	if err := s.DB.Model(&record).Updates(map[string]interface{}{
		"status": status,
		"notes":  notes,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update athlete skill: %w", err)
	}
	return &record, nil
}

func (s *SkillService) AthleteProgress(athleteID uint) ([]models.AthleteSkill, error) {
	var records []models.AthleteSkill
	err := s.DB.Preload("Skill.Apparatus").
		Where("athlete_id = ?", athleteID).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load athlete progress: %w", err)
	}
	return records, nil
}
