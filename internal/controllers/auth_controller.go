package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"busao_api/internal/httperr"
	"busao_api/internal/middleware"
	"busao_api/internal/models"
)

type AuthController struct {
	DB   *gorm.DB
	Auth *middleware.Auth
}

func NewAuthController(db *gorm.DB, auth *middleware.Auth) *AuthController {
	return &AuthController{DB: db, Auth: auth}
}

type registerInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Register creates a user with a bcrypt hash of the password. Duplicate
// emails are rejected before the insert so the conflict branch behaves the
// same on every backing store.
func (ac *AuthController) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, httperr.New(httperr.Validation, err.Error()))
		return
	}

	role, err := validateAndNormalizeRole(input.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		respondError(c, httperr.New(httperr.Conflict, "email already in use"))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("Register: email lookup failed")
		respondError(c, httperr.New(httperr.Internal, "could not register user"))
		return
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		logrus.WithError(err).Error("Register: hashing failed")
		respondError(c, httperr.New(httperr.Internal, "could not hash password"))
		return
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashedPassword,
		Role:     role,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			respondError(c, httperr.New(httperr.Conflict, "email already in use"))
			return
		}
		logrus.WithError(err).Error("Register: insert failed")
		respondError(c, httperr.New(httperr.Internal, "could not register user"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a token. The failure message is the
// same whether the email is unknown or the password is wrong.
func (ac *AuthController) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, httperr.New(httperr.Validation, err.Error()))
		return
	}

	invalidCredentials := httperr.New(httperr.Unauthorized, "invalid credentials")

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, invalidCredentials)
		} else {
			logrus.WithError(err).Error("Login: user lookup failed")
			respondError(c, httperr.New(httperr.Internal, "could not log in"))
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		respondError(c, invalidCredentials)
		return
	}

	token, err := ac.Auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		logrus.WithError(err).Error("Login: token generation failed")
		respondError(c, httperr.New(httperr.Internal, "could not generate token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func validateAndNormalizeRole(roleInput string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(roleInput))
	if role == "" {
		role = "volunteer"
	}
	switch role {
	case "admin", "volunteer":
		return role, nil
	default:
		return "", httperr.New(httperr.Validation, "invalid role")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
