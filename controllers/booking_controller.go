package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gym-backend/models"
	"gym-backend/services"
	"gym-backend/utils"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateBookingRequest struct {
	LessonTypeID  uint   `json:"lessonTypeId" binding:"required"`
	PreferredDate string `json:"preferredDate" binding:"required"`
	PreferredTime string `json:"preferredTime" binding:"required"`

	ParentID   uint   `json:"parentId" binding:"required"`
	AthleteIDs []uint `json:"athleteIds" binding:"required"`

	FocusAreaIDs []uint `json:"focusAreaIds"`
	ApparatusIDs []uint `json:"apparatusIds"`
	SideQuestIDs []uint `json:"sideQuestIds"`

	DropoffPersonName         string `json:"dropoffPersonName"`
	DropoffPersonRelationship string `json:"dropoffPersonRelationship"`
	DropoffPersonPhone        string `json:"dropoffPersonPhone"`
	PickupPersonName          string `json:"pickupPersonName"`
	PickupPersonRelationship  string `json:"pickupPersonRelationship"`
	PickupPersonPhone         string `json:"pickupPersonPhone"`

	AdminNotes   string `json:"adminNotes"`
	AdminCreated bool   `json:"adminCreated"`
}

type PatchPaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
	Reason        string `json:"reason"`
	Notes         string `json:"notes"`
}

type PatchAttendanceStatusRequest struct {
	AttendanceStatus string `json:"attendanceStatus" binding:"required"`
	Reason           string `json:"reason"`
	Notes            string `json:"notes"`
}

type PatchStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	BookingSvc *services.BookingService
	StatusSvc  *services.StatusService
}

func NewBookingController(bookingSvc *services.BookingService, statusSvc *services.StatusService) *BookingController {
	return &BookingController{BookingSvc: bookingSvc, StatusSvc: statusSvc}
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// serviceErrStatus maps the sentinel error strings services return to HTTP
// status codes; unknown errors are infrastructure failures.
func serviceErrStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.HasSuffix(msg, "_not_found"):
		return http.StatusNotFound
	case strings.Contains(msg, "failed to"):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	booking, err := bc.BookingSvc.CreateBooking(services.CreateBookingInput{
		LessonTypeID:  req.LessonTypeID,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		ParentID:      req.ParentID,
		AthleteIDs:    req.AthleteIDs,
		FocusAreaIDs:  req.FocusAreaIDs,
		ApparatusIDs:  req.ApparatusIDs,
		SideQuestIDs:  req.SideQuestIDs,

		DropoffPersonName:         req.DropoffPersonName,
		DropoffPersonRelationship: req.DropoffPersonRelationship,
		DropoffPersonPhone:        req.DropoffPersonPhone,
		PickupPersonName:          req.PickupPersonName,
		PickupPersonRelationship:  req.PickupPersonRelationship,
		PickupPersonPhone:         req.PickupPersonPhone,

		AdminNotes:   req.AdminNotes,
		AdminCreated: req.AdminCreated,
	})
	if err != nil {
		utils.JSONError(c, serviceErrStatus(err), err.Error())
		return
	}

	utils.JSONSuccess(c, http.StatusCreated, gin.H{
		"booking":           booking,
		"checkoutSessionId": booking.StripeSessionID,
	})
}

func (bc *BookingController) GetBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	bookings, err := bc.BookingSvc.ListBookings(c.Query("status"), limit)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

func (bc *BookingController) GetBookingDetails(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	booking, err := bc.BookingSvc.GetBooking(id)
	if err != nil {
		utils.JSONError(c, serviceErrStatus(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (bc *BookingController) GetParentBookings(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	bookings, err := bc.BookingSvc.ListBookingsByParent(id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

// CancelBooking soft-cancels; bookings are never hard-deleted.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	booking, err := bc.BookingSvc.CancelBooking(id, c.Query("reason"))
	if err != nil {
		utils.JSONError(c, serviceErrStatus(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// applyOverride pushes an admin patch through the status machine and maps the
// outcome onto the response.
func (bc *BookingController) applyOverride(c *gin.Context, ev services.StatusEvent) {
	ev.Kind = models.EventAdminOverride
	ev.OccurredAt = time.Now().UTC()

	res, err := bc.StatusSvc.Apply(ev)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to apply status change")
		return
	}
	switch res.Outcome {
	case services.OutcomeApplied:
		utils.JSONSuccess(c, http.StatusOK, res.Booking)
	case services.OutcomeDuplicate:
		utils.JSONSuccess(c, http.StatusOK, gin.H{"duplicate": true})
	default:
		if res.Reason == "booking_not_found" {
			utils.JSONError(c, http.StatusNotFound, res.Reason)
			return
		}
		utils.JSONError(c, http.StatusUnprocessableEntity, res.Reason)
	}
}

func (bc *BookingController) PatchPaymentStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req PatchPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	bc.applyOverride(c, services.StatusEvent{
		BookingID:        id,
		NewPaymentStatus: &req.PaymentStatus,
		Reason:           req.Reason,
		Notes:            req.Notes,
	})
}

func (bc *BookingController) PatchAttendanceStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req PatchAttendanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	bc.applyOverride(c, services.StatusEvent{
		BookingID:           id,
		NewAttendanceStatus: &req.AttendanceStatus,
		Reason:              req.Reason,
		Notes:               req.Notes,
	})
}

func (bc *BookingController) PatchStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req PatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	bc.applyOverride(c, services.StatusEvent{
		BookingID: id,
		NewStatus: &req.Status,
		Reason:    req.Reason,
		Notes:     req.Notes,
	})
}
