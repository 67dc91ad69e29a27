package controllers

import (
	"net/http"
	"strconv"

	"gym-backend/services"
	"gym-backend/utils"

	"github.com/gin-gonic/gin"
)

type AuditController struct {
	AuditSvc *services.AuditService
}

func NewAuditController(svc *services.AuditService) *AuditController {
	return &AuditController{AuditSvc: svc}
}

// RunAudit produces the read-only consistency report. It never repairs;
// repairs go through the status patch endpoints as explicit admin overrides.
func (ac *AuditController) RunAudit(c *gin.Context) {
	bookingID, _ := strconv.ParseUint(c.Query("bookingId"), 10, 32)
	rowLimit, _ := strconv.Atoi(c.Query("limit"))

	report, err := ac.AuditSvc.Run(services.AuditOptions{
		BookingID: uint(bookingID),
		RowLimit:  rowLimit,
	})
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "audit failed")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, report)
}
