package services

import (
	"fmt"
	"time"

	"gym-backend/models"

	"gorm.io/gorm"
)

// defaultAuditRowLimit bounds every row scan so the audit is safe to run
// against production at any time.
const defaultAuditRowLimit = 500

// expectedSchema is the static expectation the live database is compared
// against: the core tables and the columns the status machine depends on.
var expectedSchema = map[string][]string{
	"bookings": {
		"id", "created_at", "updated_at", "deleted_at",
		"lesson_type_id", "preferred_date", "preferred_time",
		"parent_id", "parent_first_name", "parent_last_name", "parent_email", "parent_phone",
		"status", "payment_status", "attendance_status",
		"stripe_session_id", "paid_amount_cents", "reservation_fee_paid",
		"dropoff_person_name", "dropoff_person_relationship", "dropoff_person_phone",
		"pickup_person_name", "pickup_person_relationship", "pickup_person_phone",
		"admin_notes", "override_reason", "last_event_at", "last_override_at", "focus_area_snapshot",
	},
	"parents": {
		"id", "created_at", "updated_at", "deleted_at",
		"first_name", "last_name", "email", "phone",
		"emergency_contact_name", "emergency_contact_phone", "password",
	},
	"athletes": {
		"id", "created_at", "updated_at", "deleted_at",
		"parent_id", "first_name", "last_name", "date_of_birth",
		"gender", "experience", "allergies",
	},
	"waivers": {
		"id", "created_at", "deleted_at",
		"athlete_id", "parent_id", "relationship_to_athlete",
		"signer_name", "signature", "signed_at",
		"understands_risks", "agrees_to_policies", "authorizes_emergency_care",
		"allows_photo_video", "confirms_authority",
	},
	"lesson_types": {
		"id", "created_at", "deleted_at",
		"slug", "name", "description", "duration_minutes", "max_athletes",
		"full_price_cents", "reservation_fee_cents", "active",
	},
}

var junctionTables = []string{
	"booking_athletes",
	"booking_focus_areas",
	"booking_apparatus",
	"booking_side_quests",
}

type TableReport struct {
	Found          []string            `json:"found"`
	Missing        []string            `json:"missing"`
	ExtraColumns   map[string][]string `json:"extraColumns"`
	MissingColumns map[string][]string `json:"missingColumns"`
}

type JunctionReport struct {
	Accessible   []string `json:"accessible"`
	Inaccessible []string `json:"inaccessible"`
}

type Inconsistency struct {
	BookingID uint   `json:"bookingId"`
	Rule      string `json:"rule"`
	Detail    string `json:"detail"`
}

// RejectedEvent is a ledger row the status machine refused to apply: an
// invalid transition, an unknown booking, an anomalous amount.
type RejectedEvent struct {
	BookingID  uint      `json:"bookingId"`
	Kind       string    `json:"kind"`
	Error      string    `json:"error"`
	OccurredAt time.Time `json:"occurredAt"`
}

type AuditReport struct {
	CheckedAt       time.Time       `json:"checkedAt"`
	RowLimit        int             `json:"rowLimit"`
	Tables          TableReport     `json:"tables"`
	JunctionTables  JunctionReport  `json:"junctionTables"`
	Inconsistencies []Inconsistency `json:"inconsistencies"`
	RejectedEvents  []RejectedEvent `json:"rejectedEvents"`
}

// AuditOptions narrows a run. Zero value audits everything within the default
// row limit.
type AuditOptions struct {
	BookingID uint
	RowLimit  int
}

// AuditService is a read-only diagnostic: it compares live schema and booking
// data against the expectations above and reports, never repairs. Repair is
// always an explicit admin override through the status machine.
type AuditService struct {
	DB *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

func (s *AuditService) Run(opts AuditOptions) (*AuditReport, error) {
	limit := opts.RowLimit
	if limit <= 0 {
		limit = defaultAuditRowLimit
	}

	report := &AuditReport{
		CheckedAt: time.Now().UTC(),
		RowLimit:  limit,
		Tables: TableReport{
			Found:          []string{},
			Missing:        []string{},
			ExtraColumns:   map[string][]string{},
			MissingColumns: map[string][]string{},
		},
		JunctionTables:  JunctionReport{Accessible: []string{}, Inaccessible: []string{}},
		Inconsistencies: []Inconsistency{},
		RejectedEvents:  []RejectedEvent{},
	}

	if err := s.checkSchema(report); err != nil {
		return nil, err
	}
	s.checkJunctionAccess(report)
	if err := s.checkBookingRules(report, opts.BookingID, limit); err != nil {
		return nil, err
	}
	if err := s.checkAthleteParents(report, limit); err != nil {
		return nil, err
	}
	if err := s.checkJunctionOrphans(report, limit); err != nil {
		return nil, err
	}
	if err := s.checkRejectedEvents(report, opts.BookingID, limit); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *AuditService) checkSchema(report *AuditReport) error {
	migrator := s.DB.Migrator()
	for table, expected := range expectedSchema {
		if !migrator.HasTable(table) {
			report.Tables.Missing = append(report.Tables.Missing, table)
			continue
		}
		report.Tables.Found = append(report.Tables.Found, table)

		columnTypes, err := migrator.ColumnTypes(table)
		if err != nil {
			return fmt.Errorf("failed to read columns of %s: %w", table, err)
		}
		live := map[string]bool{}
		for _, col := range columnTypes {
			live[col.Name()] = true
		}

		expectedSet := map[string]bool{}
		for _, col := range expected {
			expectedSet[col] = true
			if !live[col] {
				report.Tables.MissingColumns[table] = append(report.Tables.MissingColumns[table], col)
			}
		}
		for name := range live {
			if !expectedSet[name] {
				report.Tables.ExtraColumns[table] = append(report.Tables.ExtraColumns[table], name)
			}
		}
	}
	return nil
}

func (s *AuditService) checkJunctionAccess(report *AuditReport) {
	for _, table := range junctionTables {
		var one int64
		err := s.DB.Table(table).Limit(1).Count(&one).Error
		if err != nil {
			report.JunctionTables.Inaccessible = append(report.JunctionTables.Inaccessible, table)
			continue
		}
		report.JunctionTables.Accessible = append(report.JunctionTables.Accessible, table)
	}
}

func (s *AuditService) checkBookingRules(report *AuditReport, bookingID uint, limit int) error {
	q := s.DB.Model(&models.Booking{}).Order("id").Limit(limit)
	if bookingID != 0 {
		q = q.Where("id = ?", bookingID)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return fmt.Errorf("failed to scan bookings: %w", err)
	}

	for i := range bookings {
		b := &bookings[i]
		for _, rule := range models.ForbiddenCombinations {
			if rule.Violates(b) {
				report.Inconsistencies = append(report.Inconsistencies, Inconsistency{
					BookingID: b.ID,
					Rule:      rule.Name,
					Detail:    rule.Detail,
				})
			}
		}
	}
	return nil
}

func (s *AuditService) checkAthleteParents(report *AuditReport, limit int) error {
	var athleteIDs []uint
	err := s.DB.Model(&models.Athlete{}).
		Where("parent_id IS NULL").
		Order("id").Limit(limit).
		Pluck("id", &athleteIDs).Error
	if err != nil {
		return fmt.Errorf("failed to scan athletes: %w", err)
	}
	for _, id := range athleteIDs {
		report.Inconsistencies = append(report.Inconsistencies, Inconsistency{
			Rule:   "athlete-without-parent",
			Detail: fmt.Sprintf("athlete %d has no parent reference", id),
		})
	}
	return nil
}

func (s *AuditService) checkJunctionOrphans(report *AuditReport, limit int) error {
	// Junction rows pointing at bookings that no longer exist.
	type orphanRow struct {
		ID        uint
		BookingID uint
	}
	var orphans []orphanRow
	err := s.DB.Raw(`
		SELECT ba.id, ba.booking_id
		FROM booking_athletes ba
		LEFT JOIN bookings b ON b.id = ba.booking_id AND b.deleted_at IS NULL
		WHERE ba.deleted_at IS NULL AND b.id IS NULL
		ORDER BY ba.id
		LIMIT ?`, limit).Scan(&orphans).Error
	if err != nil {
		return fmt.Errorf("failed to scan junction orphans: %w", err)
	}
	for _, row := range orphans {
		report.Inconsistencies = append(report.Inconsistencies, Inconsistency{
			BookingID: row.BookingID,
			Rule:      "junction-orphan-row",
			Detail:    fmt.Sprintf("booking_athletes row %d references missing booking %d", row.ID, row.BookingID),
		})
	}

	// Bookings with no athlete rows at all.
	var lonely []uint
	err = s.DB.Raw(`
		SELECT b.id
		FROM bookings b
		LEFT JOIN booking_athletes ba ON ba.booking_id = b.id AND ba.deleted_at IS NULL
		WHERE b.deleted_at IS NULL AND ba.id IS NULL
		ORDER BY b.id
		LIMIT ?`, limit).Scan(&lonely).Error
	if err != nil {
		return fmt.Errorf("failed to scan bookings without athletes: %w", err)
	}
	for _, id := range lonely {
		report.Inconsistencies = append(report.Inconsistencies, Inconsistency{
			BookingID: id,
			Rule:      "booking-without-athletes",
			Detail:    fmt.Sprintf("booking %d has no booking_athletes rows", id),
		})
	}
	return nil
}

// checkRejectedEvents surfaces ledger rows the machine refused to apply, most
// recent first.
func (s *AuditService) checkRejectedEvents(report *AuditReport, bookingID uint, limit int) error {
	q := s.DB.Model(&models.PaymentEvent{}).
		Where("error <> ''").
		Order("id DESC").
		Limit(limit)
	if bookingID != 0 {
		q = q.Where("booking_id = ?", bookingID)
	}

	var events []models.PaymentEvent
	if err := q.Find(&events).Error; err != nil {
		return fmt.Errorf("failed to scan rejected events: %w", err)
	}
	for _, ev := range events {
		report.RejectedEvents = append(report.RejectedEvents, RejectedEvent{
			BookingID:  ev.BookingID,
			Kind:       ev.Kind,
			Error:      ev.Error,
			OccurredAt: ev.OccurredAt,
		})
	}
	return nil
}
