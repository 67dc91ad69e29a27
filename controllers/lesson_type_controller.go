package controllers

import (
	"net/http"

	"gym-backend/config"
	"gym-backend/models"
	"gym-backend/utils"

	"github.com/gin-gonic/gin"
)

type CreateLessonTypeRequest struct {
	Slug                string `json:"slug" binding:"required"`
	Name                string `json:"name" binding:"required"`
	Description         string `json:"description"`
	DurationMinutes     int    `json:"durationMinutes" binding:"required"`
	MaxAthletes         int    `json:"maxAthletes"`
	FullPriceCents      int64  `json:"fullPriceCents" binding:"required"`
	ReservationFeeCents int64  `json:"reservationFeeCents" binding:"required"`
}

func GetLessonTypes(c *gin.Context) {
	var lessonTypes []models.LessonType
	if err := config.DB.Where("active = ?", true).Order("id").Find(&lessonTypes).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list lesson types")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, lessonTypes)
}

func CreateLessonType(c *gin.Context) {
	var req CreateLessonTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	maxAthletes := req.MaxAthletes
	if maxAthletes <= 0 {
		maxAthletes = 1
	}

	lessonType := models.LessonType{
		Slug:                req.Slug,
		Name:                req.Name,
		Description:         req.Description,
		DurationMinutes:     req.DurationMinutes,
		MaxAthletes:         maxAthletes,
		FullPriceCents:      req.FullPriceCents,
		ReservationFeeCents: req.ReservationFeeCents,
		Active:              true,
	}
	if err := config.DB.Create(&lessonType).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create lesson type")
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, lessonType)
}

// DeactivateLessonType retires a lesson type without touching historical
// bookings that reference it.
func DeactivateLessonType(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res := config.DB.Model(&models.LessonType{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to deactivate lesson type")
		return
	}
	if res.RowsAffected == 0 {
		utils.JSONError(c, http.StatusNotFound, "lesson_type_not_found")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deactivated": true})
}

func GetApparatus(c *gin.Context) {
	var apparatus []models.Apparatus
	if err := config.DB.Order("sort_order").Find(&apparatus).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list apparatus")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, apparatus)
}

func GetFocusAreas(c *gin.Context) {
	var focusAreas []models.FocusArea
	if err := config.DB.Preload("Apparatus").Order("id").Find(&focusAreas).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list focus areas")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, focusAreas)
}

func GetSideQuests(c *gin.Context) {
	var quests []models.SideQuest
	if err := config.DB.Order("id").Find(&quests).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list side quests")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, quests)
}

func GetSkills(c *gin.Context) {
	var skills []models.Skill
	if err := config.DB.Preload("Apparatus").Order("id").Find(&skills).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list skills")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, skills)
}
