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

// UserController lists and manages registered users. The password hash
// never leaves this process (models.User marshals it as "-").
type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

type userUpdateInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (uc *UserController) List(c *gin.Context) {
	var users []models.User
	if err := uc.DB.Find(&users).Error; err != nil {
		logrus.WithError(err).Error("ListUsers: query failed")
		respondError(c, httperr.New(httperr.Internal, "could not list users"))
		return
	}
	c.JSON(http.StatusOK, users)
}

func (uc *UserController) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, httperr.New(httperr.NotFound, "user not found"))
		} else {
			logrus.WithError(err).Error("GetUser: query failed")
			respondError(c, httperr.New(httperr.Internal, "could not fetch user"))
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update changes profile fields. The password is re-hashed only when a new
// one is supplied; a new email must not collide with another user's.
func (uc *UserController) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, httperr.New(httperr.NotFound, "user not found"))
		} else {
			logrus.WithError(err).Error("UpdateUser: query failed")
			respondError(c, httperr.New(httperr.Internal, "could not fetch user"))
		}
		return
	}

	var input userUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, httperr.New(httperr.Validation, "invalid input: "+err.Error()))
		return
	}

	if input.Email != nil && *input.Email != user.Email {
		var other models.User
		err := uc.DB.Where("email = ? AND id <> ?", *input.Email, user.ID).First(&other).Error
		if err == nil {
			respondError(c, httperr.New(httperr.Conflict, "email already in use by another user"))
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("UpdateUser: email lookup failed")
			respondError(c, httperr.New(httperr.Internal, "could not update user"))
			return
		}
		user.Email = *input.Email
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Role != nil {
		role, err := validateAndNormalizeRole(*input.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		user.Role = role
	}
	if input.Password != nil && *input.Password != "" {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			logrus.WithError(err).Error("UpdateUser: hashing failed")
			respondError(c, httperr.New(httperr.Internal, "could not hash password"))
			return
		}
		user.Password = hashed
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		logrus.WithError(err).Error("UpdateUser: save failed")
		respondError(c, httperr.New(httperr.Internal, "could not update user"))
		return
	}

	c.JSON(http.StatusOK, user)
}

func (uc *UserController) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, httperr.New(httperr.NotFound, "user not found"))
		} else {
			logrus.WithError(err).Error("DeleteUser: query failed")
			respondError(c, httperr.New(httperr.Internal, "could not fetch user"))
		}
		return
	}

	if err := uc.DB.Delete(&user).Error; err != nil {
		logrus.WithError(err).Error("DeleteUser: delete failed")
		respondError(c, httperr.New(httperr.Internal, "could not delete user"))
		return
	}

	c.Status(http.StatusNoContent)
}
