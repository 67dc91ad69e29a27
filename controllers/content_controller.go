package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"gym-backend/config"
	"gym-backend/models"
	"gym-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UpsertContentRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

func GetSiteContent(c *gin.Context) {
	var content []models.SiteContent
	if err := config.DB.Order("slug").Find(&content).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list content")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, content)
}

func GetSiteContentBySlug(c *gin.Context) {
	var content models.SiteContent
	err := config.DB.Where("slug = ?", c.Param("slug")).First(&content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusNotFound, "content_not_found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load content")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, content)
}

func UpsertSiteContent(c *gin.Context) {
	slug := c.Param("slug")
	var req UpsertContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	updatedBy := ""
	if v, ok := c.Get("authSubject"); ok {
		if id, ok2 := v.(uint); ok2 {
			updatedBy = "admin:" + strconv.FormatUint(uint64(id), 10)
		}
	}

	var content models.SiteContent
	err := config.DB.Where("slug = ?", slug).First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		content = models.SiteContent{Slug: slug, Title: req.Title, Body: req.Body, UpdatedBy: updatedBy}
		if cErr := config.DB.Create(&content).Error; cErr != nil {
			utils.JSONError(c, http.StatusInternalServerError, "failed to create content")
			return
		}
		utils.JSONSuccess(c, http.StatusCreated, content)
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load content")
		return
	}

	if err := config.DB.Model(&content).Updates(map[string]interface{}{
		"title":      req.Title,
		"body":       req.Body,
		"updated_by": updatedBy,
	}).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update content")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, content)
}
