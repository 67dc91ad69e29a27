package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gym-backend/models"

	"gorm.io/gorm"
)

type WaiverService struct {
	DB     *gorm.DB
	Status *StatusService
}

func NewWaiverService(db *gorm.DB, status *StatusService) *WaiverService {
	return &WaiverService{DB: db, Status: status}
}

type SignWaiverInput struct {
	AthleteID             uint
	ParentID              uint
	RelationshipToAthlete string
	SignerName            string
	Signature             string

	UnderstandsRisks        bool
	AgreesToPolicies        bool
	AuthorizesEmergencyCare bool
	AllowsPhotoVideo        bool
	ConfirmsAuthority       bool
}

// SignWaiver records a new signed waiver. Waivers never update in place: a new
// row supersedes the previous one. Signing also pokes the status machine for
// any booking of this athlete that was held back by the missing waiver.
func (s *WaiverService) SignWaiver(in SignWaiverInput) (*models.Waiver, error) {
	if in.Signature == "" || in.SignerName == "" {
		return nil, errors.New("signature_required")
	}
	if !in.UnderstandsRisks || !in.AgreesToPolicies || !in.ConfirmsAuthority {
		return nil, errors.New("required_acknowledgements_missing")
	}

	var athlete models.Athlete
	if err := s.DB.First(&athlete, in.AthleteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("athlete_not_found")
		}
		return nil, fmt.Errorf("failed to load athlete: %w", err)
	}
	if athlete.ParentID == nil || *athlete.ParentID != in.ParentID {
		return nil, errors.New("athlete_not_owned_by_parent")
	}

	now := time.Now().UTC()
	waiver := models.Waiver{
		AthleteID:             in.AthleteID,
		ParentID:              in.ParentID,
		RelationshipToAthlete: in.RelationshipToAthlete,
		SignerName:            in.SignerName,
		Signature:             in.Signature,
		SignedAt:              &now,

		UnderstandsRisks:        in.UnderstandsRisks,
		AgreesToPolicies:        in.AgreesToPolicies,
		AuthorizesEmergencyCare: in.AuthorizesEmergencyCare,
		AllowsPhotoVideo:        in.AllowsPhotoVideo,
		ConfirmsAuthority:       in.ConfirmsAuthority,
	}
	if err := s.DB.Create(&waiver).Error; err != nil {
		return nil, fmt.Errorf("failed to create waiver: %w", err)
	}

	s.notifyBookings(&waiver, now)
	return &waiver, nil
}

// notifyBookings fires waiver_signed events for bookings this athlete is on
// that are still waiting. Best-effort: a drop here is not a signing failure.
func (s *WaiverService) notifyBookings(waiver *models.Waiver, signedAt time.Time) {
	var bookingIDs []uint
	err := s.DB.Model(&models.BookingAthlete{}).
		Joins("JOIN bookings ON bookings.id = booking_athletes.booking_id AND bookings.deleted_at IS NULL").
		Where("booking_athletes.athlete_id = ?", waiver.AthleteID).
		Where("bookings.status = ? OR bookings.attendance_status = ?",
			models.BookingStatusPending, models.AttendanceStatusPending).
		Pluck("booking_athletes.booking_id", &bookingIDs).Error
	if err != nil {
		log.Printf("waiver: failed to find bookings for athlete %d: %v", waiver.AthleteID, err)
		return
	}

	for _, id := range bookingIDs {
		if _, err := s.Status.Apply(StatusEvent{
			Kind:       models.EventWaiverSigned,
			BookingID:  id,
			WaiverID:   waiver.ID,
			OccurredAt: signedAt,
		}); err != nil {
			log.Printf("waiver: failed to apply waiver_signed to booking %d: %v", id, err)
		}
	}
}

// CurrentWaiver returns the athlete's latest signed waiver, the one whose
// status gates bookings.
func (s *WaiverService) CurrentWaiver(athleteID uint) (*models.Waiver, error) {
	var waiver models.Waiver
	err := s.DB.
		Where("athlete_id = ? AND signed_at IS NOT NULL AND signature <> ''", athleteID).
		Order("signed_at DESC, id DESC").
		First(&waiver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("waiver_not_found")
		}
		return nil, fmt.Errorf("failed to load waiver: %w", err)
	}
	return &waiver, nil
}

func (s *WaiverService) ListWaivers(athleteID uint, limit int) ([]models.Waiver, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.DB.Order("id DESC").Limit(limit)
	if athleteID != 0 {
		q = q.Where("athlete_id = ?", athleteID)
	}

	var waivers []models.Waiver
	if err := q.Find(&waivers).Error; err != nil {
		return nil, fmt.Errorf("failed to list waivers: %w", err)
	}
	return waivers, nil
}
