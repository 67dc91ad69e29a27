package controllers

import (
	"net/http"
	"strconv"

	"gym-backend/services"
	"gym-backend/utils"

	"github.com/gin-gonic/gin"
)

type CreateParentRequest struct {
	FirstName             string `json:"firstName" binding:"required"`
	LastName              string `json:"lastName" binding:"required"`
	Email                 string `json:"email" binding:"required,email"`
	Phone                 string `json:"phone" binding:"required"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
	Password              string `json:"password"`
}

type ParentController struct {
	ParentSvc *services.ParentService
}

func NewParentController(svc *services.ParentService) *ParentController {
	return &ParentController{ParentSvc: svc}
}

func (pc *ParentController) CreateParent(c *gin.Context) {
	var req CreateParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	parent, err := pc.ParentSvc.CreateParent(services.CreateParentInput{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		Password:              req.Password,
	})
	if err != nil {
		utils.JSONError(c, serviceErrStatus(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, parent)
}

func (pc *ParentController) GetParent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	parent, err := pc.ParentSvc.GetParent(id)
	if err != nil {
		utils.JSONError(c, serviceErrStatus(err), err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, parent)
}

func (pc *ParentController) GetParents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	parents, err := pc.ParentSvc.ListParents(limit)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list parents")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, parents)
}
