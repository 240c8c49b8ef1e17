package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/auth"
	"github.com/kamaudev/dukashop/internal/hash"
	"github.com/kamaudev/dukashop/internal/models"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	var fieldErrors []string
	if req.Name == "" {
		fieldErrors = append(fieldErrors, "name is required")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fieldErrors = append(fieldErrors, "a valid email is required")
	}
	if len(req.Password) < 6 {
		fieldErrors = append(fieldErrors, "password must be at least 6 characters")
	}
	if len(fieldErrors) > 0 {
		return respondFieldErrors(c, fieldErrors)
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return respondError(c, http.StatusBadRequest, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		Role:         models.RoleCustomer,
		Active:       true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}

	token, err := auth.IssueToken(h.JWTSecret, user.ID, user.Role)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	return respondData(c, http.StatusCreated, echo.Map{"user": user, "token": token})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return respondError(c, http.StatusUnauthorized, "invalid credentials")
	}
	if !user.Active {
		return respondError(c, http.StatusUnauthorized, "account disabled")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return respondError(c, http.StatusUnauthorized, "invalid credentials")
	}

	token, err := auth.IssueToken(h.JWTSecret, user.ID, user.Role)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
	return respondData(c, http.StatusOK, echo.Map{"user": user, "token": token})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return respondError(c, http.StatusNotFound, "user not found")
	}
	return respondData(c, http.StatusOK, user)
}
