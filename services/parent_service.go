package services

import (
	"errors"
	"fmt"
	"strings"

	"gym-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ParentService struct {
	DB *gorm.DB
}

func NewParentService(db *gorm.DB) *ParentService {
	return &ParentService{DB: db}
}

type CreateParentInput struct {
	FirstName             string
	LastName              string
	Email                 string
	Phone                 string
	EmergencyContactName  string
	EmergencyContactPhone string
	Password              string
}

func (s *ParentService) CreateParent(in CreateParentInput) (*models.Parent, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, errors.New("email_required")
	}

	var existing models.Parent
	if err := s.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, errors.New("email_taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	parent := models.Parent{
		FirstName:             strings.TrimSpace(in.FirstName),
		LastName:              strings.TrimSpace(in.LastName),
		Email:                 email,
		Phone:                 strings.TrimSpace(in.Phone),
		EmergencyContactName:  in.EmergencyContactName,
		EmergencyContactPhone: in.EmergencyContactPhone,
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		parent.Password = string(hash)
	}

	if err := s.DB.Create(&parent).Error; err != nil {
		return nil, fmt.Errorf("failed to create parent: %w", err)
	}
	return &parent, nil
}

// IdentifyParent finds an existing parent by email, falling back to phone, the
// way the booking flow matches returning families.
func (s *ParentService) IdentifyParent(email, phone string) (*models.Parent, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var parent models.Parent
	if email != "" {
		if err := s.DB.Where("email = ?", email).First(&parent).Error; err == nil {
			return &parent, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up parent: %w", err)
		}
	}
	if phone != "" {
		if err := s.DB.Where("phone = ?", strings.TrimSpace(phone)).First(&parent).Error; err == nil {
			return &parent, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up parent: %w", err)
		}
	}
	return nil, errors.New("parent_not_found")
}

func (s *ParentService) GetParent(id uint) (*models.Parent, error) {
	var parent models.Parent
	err := s.DB.Preload("Athletes").First(&parent, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("parent_not_found")
		}
		return nil, fmt.Errorf("failed to load parent: %w", err)
	}
	return &parent, nil
}

func (s *ParentService) ListParents(limit int) ([]models.Parent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var parents []models.Parent
	if err := s.DB.Order("id DESC").Limit(limit).Find(&parents).Error; err != nil {
		return nil, fmt.Errorf("failed to list parents: %w", err)
	}
	return parents, nil
}

// VerifyPassword checks a parent portal login.
func (s *ParentService) VerifyPassword(email, password string) (*models.Parent, error) {
	var parent models.Parent
	err := s.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&parent).Error
	if err != nil {
		return nil, errors.New("invalid_credentials")
	}
	if parent.Password == "" ||
		bcrypt.CompareHashAndPassword([]byte(parent.Password), []byte(password)) != nil {
		return nil, errors.New("invalid_credentials")
	}
	return &parent, nil
}
