package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gym-backend/config"
	"gym-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One named in-memory database per test; cache=shared keeps it alive
	// across pooled connections.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := config.MigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

type fixture struct {
	db         *gorm.DB
	status     *StatusService
	lessonType models.LessonType
	parent     models.Parent
	athlete    models.Athlete
}

// newFixture seeds a lesson type ($40 full / $10 reservation, matching the
// seeded quick-journey), a parent and one athlete. withWaiver controls
// whether the athlete has a current signed waiver.
func newFixture(t *testing.T, withWaiver bool) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{
		db:     db,
		status: NewStatusService(db),
		lessonType: models.LessonType{
			Slug:                "quick-journey",
			Name:                "Quick Journey",
			DurationMinutes:     30,
			MaxAthletes:         2,
			FullPriceCents:      4000,
			ReservationFeeCents: 1000,
			Active:              true,
		},
		parent: models.Parent{
			FirstName: "Pat",
			LastName:  "Example",
			Email:     "pat@example.com",
			Phone:     "555-0100",
		},
	}
	if err := db.Create(&f.lessonType).Error; err != nil {
		t.Fatalf("failed to create lesson type: %v", err)
	}
	if err := db.Create(&f.parent).Error; err != nil {
		t.Fatalf("failed to create parent: %v", err)
	}

	f.athlete = models.Athlete{
		ParentID:  &f.parent.ID,
		FirstName: "Alex",
		LastName:  "Example",
	}
	if err := db.Create(&f.athlete).Error; err != nil {
		t.Fatalf("failed to create athlete: %v", err)
	}

	if withWaiver {
		f.signWaiver(t, f.athlete.ID)
	}
	return f
}

func (f *fixture) signWaiver(t *testing.T, athleteID uint) models.Waiver {
	t.Helper()
	now := time.Now().UTC()
	waiver := models.Waiver{
		AthleteID:             athleteID,
		ParentID:              f.parent.ID,
		RelationshipToAthlete: "parent",
		SignerName:            "Pat Example",
		Signature:             "data:image/png;base64,sig",
		SignedAt:              &now,
		UnderstandsRisks:      true,
		AgreesToPolicies:      true,
		ConfirmsAuthority:     true,
	}
	if err := f.db.Create(&waiver).Error; err != nil {
		t.Fatalf("failed to create waiver: %v", err)
	}
	return waiver
}

type bookingOpts struct {
	safetyFields  bool
	status        string
	paymentStatus string
	attendance    string
	sessionID     string
	preferredDate time.Time
	createdAgo    time.Duration
}

func (f *fixture) createBooking(t *testing.T, opts bookingOpts) models.Booking {
	t.Helper()

	if opts.status == "" {
		opts.status = models.BookingStatusPending
	}
	if opts.paymentStatus == "" {
		opts.paymentStatus = models.PaymentStatusUnpaid
	}
	if opts.attendance == "" {
		opts.attendance = models.AttendanceStatusPending
	}
	if opts.preferredDate.IsZero() {
		opts.preferredDate = time.Now().UTC().Add(7 * 24 * time.Hour)
	}

	booking := models.Booking{
		LessonTypeID:     f.lessonType.ID,
		PreferredDate:    &opts.preferredDate,
		PreferredTime:    "10:00",
		ParentID:         &f.parent.ID,
		ParentFirstName:  f.parent.FirstName,
		ParentLastName:   f.parent.LastName,
		ParentEmail:      f.parent.Email,
		ParentPhone:      f.parent.Phone,
		Status:           opts.status,
		PaymentStatus:    opts.paymentStatus,
		AttendanceStatus: opts.attendance,
	}
	if opts.sessionID != "" {
		booking.StripeSessionID = &opts.sessionID
	}
	if opts.safetyFields {
		booking.DropoffPersonName = "Pat Example"
		booking.DropoffPersonRelationship = "parent"
		booking.DropoffPersonPhone = "555-0100"
		booking.PickupPersonName = "Pat Example"
		booking.PickupPersonRelationship = "parent"
		booking.PickupPersonPhone = "555-0100"
	}

	if err := f.db.Create(&booking).Error; err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}
	link := models.BookingAthlete{BookingID: booking.ID, AthleteID: f.athlete.ID, SlotOrder: 1}
	if err := f.db.Create(&link).Error; err != nil {
		t.Fatalf("failed to link athlete: %v", err)
	}

	if opts.createdAgo > 0 {
		createdAt := time.Now().UTC().Add(-opts.createdAgo)
		if err := f.db.Model(&models.Booking{}).Where("id = ?", booking.ID).
			Update("created_at", createdAt).Error; err != nil {
			t.Fatalf("failed to backdate booking: %v", err)
		}
		booking.CreatedAt = createdAt
	}
	return booking
}

func (f *fixture) reload(t *testing.T, id uint) models.Booking {
	t.Helper()
	var booking models.Booking
	if err := f.db.First(&booking, id).Error; err != nil {
		t.Fatalf("failed to reload booking %d: %v", id, err)
	}
	return booking
}
