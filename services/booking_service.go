package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gym-backend/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingService struct {
	DB     *gorm.DB
	Status *StatusService
}

func NewBookingService(db *gorm.DB, status *StatusService) *BookingService {
	return &BookingService{DB: db, Status: status}
}

type CreateBookingInput struct {
	LessonTypeID  uint
	PreferredDate string // 2006-01-02
	PreferredTime string

	ParentID     uint
	AthleteIDs   []uint
	FocusAreaIDs []uint
	ApparatusIDs []uint
	SideQuestIDs []uint

	DropoffPersonName         string
	DropoffPersonRelationship string
	DropoffPersonPhone        string
	PickupPersonName          string
	PickupPersonRelationship  string
	PickupPersonPhone         string

	AdminNotes string

	// Admin-created bookings skip the waiver gate; the admin takes
	// responsibility for collecting the signature before the session.
	AdminCreated bool
}

// CreateBooking is checkout initiation: it persists a pending/unpaid booking
// with its junction rows and allocates the hosted checkout session reference
// the payment provider will echo back in webhook metadata.
func (s *BookingService) CreateBooking(in CreateBookingInput) (*models.Booking, error) {
	var lessonType models.LessonType
	if err := s.DB.First(&lessonType, in.LessonTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("lesson_type_not_found")
		}
		return nil, fmt.Errorf("failed to load lesson type: %w", err)
	}
	if !lessonType.Active {
		return nil, errors.New("lesson_type_inactive")
	}

	if len(in.AthleteIDs) == 0 {
		return nil, errors.New("athletes_required")
	}
	if lessonType.MaxAthletes > 0 && len(in.AthleteIDs) > lessonType.MaxAthletes {
		return nil, errors.New("too_many_athletes")
	}

	var parent models.Parent
	if err := s.DB.First(&parent, in.ParentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("parent_not_found")
		}
		return nil, fmt.Errorf("failed to load parent: %w", err)
	}

	var athletes []models.Athlete
	if err := s.DB.Where("id IN ?", in.AthleteIDs).Find(&athletes).Error; err != nil {
		return nil, fmt.Errorf("failed to load athletes: %w", err)
	}
	if len(athletes) != len(in.AthleteIDs) {
		return nil, errors.New("athlete_not_found")
	}
	for _, a := range athletes {
		if a.ParentID == nil || *a.ParentID != parent.ID {
			return nil, errors.New("athlete_not_owned_by_parent")
		}
	}

	// Waiver gate: a booking is not payable unless every athlete has a
	// current signed waiver on file.
	if !in.AdminCreated {
		for _, a := range athletes {
			var count int64
			err := s.DB.Model(&models.Waiver{}).
				Where("athlete_id = ? AND signed_at IS NOT NULL AND signature <> ''", a.ID).
				Count(&count).Error
			if err != nil {
				return nil, fmt.Errorf("failed to check waiver for athlete %d: %w", a.ID, err)
			}
			if count == 0 {
				return nil, errors.New("waiver_required")
			}
		}
	}

	var preferredDate *time.Time
	if in.PreferredDate != "" {
		d, err := time.Parse("2006-01-02", in.PreferredDate)
		if err != nil {
			return nil, errors.New("invalid_preferred_date")
		}
		preferredDate = &d
	}

	var focusSnapshot datatypes.JSON
	if len(in.FocusAreaIDs) > 0 {
		var names []string
		if err := s.DB.Model(&models.FocusArea{}).Where("id IN ?", in.FocusAreaIDs).Pluck("name", &names).Error; err == nil {
			if raw, mErr := json.Marshal(names); mErr == nil {
				focusSnapshot = datatypes.JSON(raw)
			}
		}
	}

	sessionRef := "cs_" + uuid.NewString()

	booking := models.Booking{
		LessonTypeID:  lessonType.ID,
		PreferredDate: preferredDate,
		PreferredTime: in.PreferredTime,

		ParentID:        &parent.ID,
		ParentFirstName: parent.FirstName,
		ParentLastName:  parent.LastName,
		ParentEmail:     parent.Email,
		ParentPhone:     parent.Phone,

		Status:           models.BookingStatusPending,
		PaymentStatus:    models.PaymentStatusUnpaid,
		AttendanceStatus: models.AttendanceStatusPending,
		StripeSessionID:  &sessionRef,

		DropoffPersonName:         in.DropoffPersonName,
		DropoffPersonRelationship: in.DropoffPersonRelationship,
		DropoffPersonPhone:        in.DropoffPersonPhone,
		PickupPersonName:          in.PickupPersonName,
		PickupPersonRelationship:  in.PickupPersonRelationship,
		PickupPersonPhone:         in.PickupPersonPhone,

		AdminNotes:        in.AdminNotes,
		FocusAreaSnapshot: focusSnapshot,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		for i, athleteID := range in.AthleteIDs {
			link := models.BookingAthlete{
				BookingID: booking.ID,
				AthleteID: athleteID,
				SlotOrder: i + 1,
			}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("failed to link athlete %d: %w", athleteID, err)
			}
		}
		for _, id := range in.FocusAreaIDs {
			if err := tx.Create(&models.BookingFocusArea{BookingID: booking.ID, FocusAreaID: id}).Error; err != nil {
				return fmt.Errorf("failed to link focus area %d: %w", id, err)
			}
		}
		for _, id := range in.ApparatusIDs {
			if err := tx.Create(&models.BookingApparatus{BookingID: booking.ID, ApparatusID: id}).Error; err != nil {
				return fmt.Errorf("failed to link apparatus %d: %w", id, err)
			}
		}
		for _, id := range in.SideQuestIDs {
			if err := tx.Create(&models.BookingSideQuest{BookingID: booking.ID, SideQuestID: id}).Error; err != nil {
				return fmt.Errorf("failed to link side quest %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func (s *BookingService) GetBooking(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.
		Preload("LessonType").
		Preload("Athletes", func(db *gorm.DB) *gorm.DB { return db.Order("slot_order") }).
		Preload("Athletes.Athlete").
		First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("booking_not_found")
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &booking, nil
}

// ListBookings returns bookings for the admin dashboard, newest first,
// optionally filtered by lifecycle status.
func (s *BookingService) ListBookings(status string, limit int) ([]models.Booking, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.DB.
		Preload("LessonType").
		Preload("Athletes.Athlete").
		Order("id DESC").
		Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) ListBookingsByParent(parentID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.DB.
		Preload("LessonType").
		Preload("Athletes.Athlete").
		Where("parent_id = ?", parentID).
		Order("id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list parent bookings: %w", err)
	}
	return bookings, nil
}

// CancelBooking soft-cancels through the status machine so the cancellation
// shows up in the event ledger like any other transition. Bookings are never
// hard-deleted.
func (s *BookingService) CancelBooking(id uint, reason string) (*models.Booking, error) {
	cancelled := models.BookingStatusCancelled
	if reason == "" {
		reason = "admin_cancelled"
	}
	res, err := s.Status.Apply(StatusEvent{
		Kind:       models.EventAdminOverride,
		BookingID:  id,
		NewStatus:  &cancelled,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if res.Outcome == OutcomeDropped {
		if res.Reason == "booking_not_found" {
			return nil, errors.New("booking_not_found")
		}
		return nil, fmt.Errorf("cancel rejected: %s", res.Reason)
	}
	return res.Booking, nil
}
