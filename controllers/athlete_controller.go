package controllers

import (
	"net/http"
	"strconv"

	"gym-backend/services"
	"gym-backend/utils"

	"github.com/gin-gonic/gin"
)

type CreateAthleteRequest struct {
	ParentID    uint   `json:"parentId" binding:"required"`
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Experience  string `json:"experience"`
	Allergies   string `json:"allergies"`
}

type UpdateAthleteRequest struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Gender     *string `json:"gender"`
	Experience *string `json:"experience"`
	Allergies  *string `json:"allergies"`
}

type UpsertSkillRequest struct {
	SkillID uint   `json:"skillId" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Notes   string `json:"notes"`
}

type AthleteController struct {
	AthleteSvc *services.AthleteService
	SkillSvc   *services.SkillService
}

func NewAthleteController(athleteSvc *services.AthleteService, skillSvc *services.SkillService) *AthleteController {
	return &AthleteController{AthleteSvc: athleteSvc, SkillSvc: skillSvc}
}

func (ac *AthleteController) CreateAthlete(c *gin.Context) {
	var req CreateAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	athlete, err := ac.AthleteSvc.CreateAthlete(services.CreateAthleteInput{
		ParentID:    req.ParentID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Experience:  req.Experience,
		Allergies:   req.Allergies,
	})
	if err != nil {
		utils.JSONError(c, serviceErrStatus(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, athlete)
}

func (ac *AthleteController) GetAthlete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	athlete, err := ac.AthleteSvc.GetAthlete(id)
	if err != nil {
		utils.JSONError(c, serviceErrStatus(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, athlete)
}

func (ac *AthleteController) GetAthletes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	parentID, _ := strconv.ParseUint(c.Query("parentId"), 10, 32)

	athletes, err := ac.AthleteSvc.ListAthletes(uint(parentID), limit)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list athletes")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, athletes)
}

func (ac *AthleteController) UpdateAthlete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req UpdateAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	athlete, err := ac.AthleteSvc.UpdateAthlete(id, services.UpdateAthleteInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Gender:     req.Gender,
		Experience: req.Experience,
		Allergies:  req.Allergies,
	})
	if err != nil {
		utils.JSONError(c, serviceErrStatus(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, athlete)
}

func (ac *AthleteController) UpsertSkill(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req UpsertSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	record, err := ac.SkillSvc.UpsertAthleteSkill(id, req.SkillID, req.Status, req.Notes)
	if err != nil {
		utils.JSONError(c, serviceErrStatus(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, record)
}

func (ac *AthleteController) GetSkillProgress(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	records, err := ac.SkillSvc.AthleteProgress(id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load progress")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, records)
}
