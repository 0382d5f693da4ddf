package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"busao_api/internal/httperr"
	"busao_api/internal/models"
)

// StopController is plain single-entity CRUD. Reads attach the lines that
// serve the stop.
type StopController struct {
	DB *gorm.DB
}

func NewStopController(db *gorm.DB) *StopController {
	return &StopController{DB: db}
}

type stopInput struct {
	Name      string  `json:"name" binding:"required"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (sc *StopController) List(c *gin.Context) {
	var stops []models.Stop
	if err := sc.DB.Preload("Lines").Find(&stops).Error; err != nil {
		logrus.WithError(err).Error("ListStops: query failed")
		respondError(c, httperr.New(httperr.Internal, "could not list stops"))
		return
	}
	c.JSON(http.StatusOK, stops)
}

func (sc *StopController) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var stop models.Stop
	if err := sc.DB.Preload("Lines").First(&stop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, httperr.New(httperr.NotFound, "stop not found"))
		} else {
			logrus.WithError(err).Error("GetStop: query failed")
			respondError(c, httperr.New(httperr.Internal, "could not fetch stop"))
		}
		return
	}

	c.JSON(http.StatusOK, stop)
}

func (sc *StopController) Create(c *gin.Context) {
	var input stopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, httperr.New(httperr.Validation, "invalid input: "+err.Error()))
		return
	}

	stop := models.Stop{
		Name:      input.Name,
		Address:   input.Address,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}
	if err := sc.DB.Create(&stop).Error; err != nil {
		logrus.WithError(err).Error("CreateStop: insert failed")
		respondError(c, httperr.New(httperr.Internal, "could not create stop"))
		return
	}

	c.JSON(http.StatusCreated, stop)
}

func (sc *StopController) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var stop models.Stop
	if err := sc.DB.First(&stop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, httperr.New(httperr.NotFound, "stop not found"))
		} else {
			logrus.WithError(err).Error("UpdateStop: query failed")
			respondError(c, httperr.New(httperr.Internal, "could not fetch stop"))
		}
		return
	}

	var input stopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, httperr.New(httperr.Validation, "invalid input: "+err.Error()))
		return
	}

	stop.Name = input.Name
	stop.Address = input.Address
	stop.Latitude = input.Latitude
	stop.Longitude = input.Longitude

	if err := sc.DB.Save(&stop).Error; err != nil {
		logrus.WithError(err).Error("UpdateStop: save failed")
		respondError(c, httperr.New(httperr.Internal, "could not update stop"))
		return
	}

	c.JSON(http.StatusOK, stop)
}

// Delete removes the stop and its line associations. Lines keep existing;
// only the join rows go.
func (sc *StopController) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var stop models.Stop
	if err := sc.DB.First(&stop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, httperr.New(httperr.NotFound, "stop not found"))
		} else {
			logrus.WithError(err).Error("DeleteStop: query failed")
			respondError(c, httperr.New(httperr.Internal, "could not fetch stop"))
		}
		return
	}

	tx := sc.DB.Begin()
	if tx.Error != nil {
		respondError(c, httperr.New(httperr.Internal, "could not start transaction"))
		return
	}

	if err := tx.Model(&stop).Association("Lines").Clear(); err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("DeleteStop: line association clear failed")
		respondError(c, httperr.New(httperr.Internal, "could not delete stop"))
		return
	}

	if err := tx.Delete(&stop).Error; err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("DeleteStop: delete failed")
		respondError(c, httperr.New(httperr.Internal, "could not delete stop"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		logrus.WithError(err).Error("DeleteStop: commit failed")
		respondError(c, httperr.New(httperr.Internal, "could not delete stop"))
		return
	}

	c.Status(http.StatusNoContent)
}
