package controllers

import (
	"net/http"
	"strings"
	"time"

	"gym-backend/config"
	"gym-backend/middleware"
	"gym-backend/models"
	"gym-backend/services"
	"gym-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type parentLoginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const tokenTTL = 12 * time.Hour

// Login authenticates an admin and returns a bearer token.
func Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	username := strings.TrimSpace(payload.Username)

	var admin models.Admin
	if err := config.DB.Where("username = ?", username).First(&admin).Error; err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(payload.Password)) != nil {
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := middleware.IssueToken(middleware.RoleAdmin, admin.ID, tokenTTL)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"token": token,
		"admin": gin.H{"id": admin.ID, "fullName": admin.FullName, "username": admin.Username},
	})
}

type AuthController struct {
	ParentSvc *services.ParentService
}

func NewAuthController(parentSvc *services.ParentService) *AuthController {
	return &AuthController{ParentSvc: parentSvc}
}

// ParentLogin authenticates a parent portal account.
func (ac *AuthController) ParentLogin(c *gin.Context) {
	var payload parentLoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	parent, err := ac.ParentSvc.VerifyPassword(payload.Email, payload.Password)
	if err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := middleware.IssueToken(middleware.RoleParent, parent.ID, tokenTTL)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"token":  token,
		"parent": gin.H{"id": parent.ID, "firstName": parent.FirstName, "lastName": parent.LastName},
	})
}
