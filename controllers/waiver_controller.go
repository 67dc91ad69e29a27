package controllers

import (
	"net/http"
	"strconv"

	"gym-backend/services"
	"gym-backend/utils"

	"github.com/gin-gonic/gin"
)

type SignWaiverRequest struct {
	AthleteID             uint   `json:"athleteId" binding:"required"`
	ParentID              uint   `json:"parentId" binding:"required"`
	RelationshipToAthlete string `json:"relationshipToAthlete" binding:"required"`
	SignerName            string `json:"signerName" binding:"required"`
	Signature             string `json:"signature" binding:"required"`

	UnderstandsRisks        bool `json:"understandsRisks"`
	AgreesToPolicies        bool `json:"agreesToPolicies"`
	AuthorizesEmergencyCare bool `json:"authorizesEmergencyCare"`
	AllowsPhotoVideo        bool `json:"allowsPhotoVideo"`
	ConfirmsAuthority       bool `json:"confirmsAuthority"`
}

type WaiverController struct {
	WaiverSvc *services.WaiverService
}

func NewWaiverController(svc *services.WaiverService) *WaiverController {
	return &WaiverController{WaiverSvc: svc}
}

func (wc *WaiverController) SignWaiver(c *gin.Context) {
	var req SignWaiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	waiver, err := wc.WaiverSvc.SignWaiver(services.SignWaiverInput{
		AthleteID:             req.AthleteID,
		ParentID:              req.ParentID,
		RelationshipToAthlete: req.RelationshipToAthlete,
		SignerName:            req.SignerName,
		Signature:             req.Signature,

		UnderstandsRisks:        req.UnderstandsRisks,
		AgreesToPolicies:        req.AgreesToPolicies,
		AuthorizesEmergencyCare: req.AuthorizesEmergencyCare,
		AllowsPhotoVideo:        req.AllowsPhotoVideo,
		ConfirmsAuthority:       req.ConfirmsAuthority,
	})
	if err != nil {
		utils.JSONError(c, serviceErrStatus(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, waiver)
}

func (wc *WaiverController) GetWaivers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	athleteID, _ := strconv.ParseUint(c.Query("athleteId"), 10, 32)

	waivers, err := wc.WaiverSvc.ListWaivers(uint(athleteID), limit)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list waivers")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, waivers)
}

// GetCurrentWaiver returns the waiver that gates an athlete's bookings.
func (wc *WaiverController) GetCurrentWaiver(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	waiver, err := wc.WaiverSvc.CurrentWaiver(id)
	if err != nil {
		utils.JSONError(c, serviceErrStatus(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, waiver)
}
