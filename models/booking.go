package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// nowFunc is swapped out by tests that need a fixed clock for the
// date-dependent rules.
var nowFunc = time.Now

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	LessonTypeID  uint       `gorm:"index;column:lesson_type_id" json:"lessonTypeId"`
	PreferredDate *time.Time `gorm:"column:preferred_date" json:"preferredDate,omitempty"`
	PreferredTime string     `gorm:"column:preferred_time;size:32" json:"preferredTime,omitempty"`

	// Parent contact as entered at booking time. Deliberately denormalized so
	// the booking stays a durable record of who was contacted even if the
	// parent profile is edited later.
	ParentID        *uint  `gorm:"index;column:parent_id" json:"parentId,omitempty"`
	ParentFirstName string `gorm:"column:parent_first_name;size:100" json:"parentFirstName"`
	ParentLastName  string `gorm:"column:parent_last_name;size:100" json:"parentLastName"`
	ParentEmail     string `gorm:"column:parent_email;size:150;index" json:"parentEmail"`
	ParentPhone     string `gorm:"column:parent_phone;size:50" json:"parentPhone"`

	Status           string `gorm:"column:status;size:32;default:pending;index" json:"status"`
	PaymentStatus    string `gorm:"column:payment_status;size:32;default:unpaid;index" json:"paymentStatus"`
	AttendanceStatus string `gorm:"column:attendance_status;size:32;default:pending" json:"attendanceStatus"`

	StripeSessionID    *string `gorm:"column:stripe_session_id;size:128;index" json:"stripeSessionId,omitempty"`
	PaidAmountCents    int64   `gorm:"column:paid_amount_cents;default:0" json:"paidAmountCents"`
	ReservationFeePaid bool    `gorm:"column:reservation_fee_paid;default:false" json:"reservationFeePaid"`

	// Drop-off / pick-up safety contacts. Attendance cannot be auto-confirmed
	// until these are filled in.
	DropoffPersonName         string `gorm:"column:dropoff_person_name;size:100" json:"dropoffPersonName"`
	DropoffPersonRelationship string `gorm:"column:dropoff_person_relationship;size:50" json:"dropoffPersonRelationship"`
	DropoffPersonPhone        string `gorm:"column:dropoff_person_phone;size:50" json:"dropoffPersonPhone"`
	PickupPersonName          string `gorm:"column:pickup_person_name;size:100" json:"pickupPersonName"`
	PickupPersonRelationship  string `gorm:"column:pickup_person_relationship;size:50" json:"pickupPersonRelationship"`
	PickupPersonPhone         string `gorm:"column:pickup_person_phone;size:50" json:"pickupPersonPhone"`

	AdminNotes     string `gorm:"column:admin_notes;type:text" json:"adminNotes,omitempty"`
	OverrideReason string `gorm:"column:override_reason;size:255" json:"overrideReason,omitempty"`

	// Logical timestamp of the last applied event. Webhook replays older than
	// an admin override are detected against this.
	LastEventAt *time.Time `gorm:"column:last_event_at" json:"lastEventAt,omitempty"`

	// Logical timestamp of the last admin override. Replayed webhooks at or
	// before this point lose, whether or not the admin typed a reason.
	LastOverrideAt *time.Time `gorm:"column:last_override_at" json:"lastOverrideAt,omitempty"`

	// Names of the focus areas chosen at checkout, frozen as entered.
	FocusAreaSnapshot datatypes.JSON `gorm:"column:focus_area_snapshot" json:"focusAreaSnapshot,omitempty"`

	LessonType LessonType       `gorm:"foreignKey:LessonTypeID;references:ID" json:"lessonType,omitempty"`
	Athletes   []BookingAthlete `gorm:"foreignKey:BookingID" json:"athletes,omitempty"`
}

// SafetyInfoComplete reports whether both the drop-off and pick-up contacts
// are filled in.
func (b *Booking) SafetyInfoComplete() bool {
	return b.DropoffPersonName != "" && b.DropoffPersonPhone != "" &&
		b.PickupPersonName != "" && b.PickupPersonPhone != ""
}

// Terminal reports whether the lifecycle can no longer advance.
func (b *Booking) Terminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusNoShow
}
