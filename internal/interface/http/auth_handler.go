package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/api-profiles/internal/application"
	"github.com/oksasatya/api-profiles/pkg/response"
	"github.com/oksasatya/api-profiles/pkg/validation"
)

type AuthHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *userapp.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	OTP       string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	OTP      string `json:"otp"`
}

// Register POST /api/register
// Without an otp field the request dispatches a code and reports it; the
// client resubmits the same payload with the code to complete registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		OTP:       req.OTP,
	})
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"access_token": token,
		"user":         profileJSON(u),
	}, "User registered successfully", nil)
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	_, token, err := h.Svc.Login(c.Request.Context(), userapp.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		OTP:      req.OTP,
	})
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"access_token": token,
	}, "User authorized successfully", nil)
}

// writeFlowError maps service errors onto the response envelope.
// OTPSent is not a failure in the usual sense, but the original API reports
// the interim state at the validation-error status, so it lands here too.
func writeFlowError(c *gin.Context, logger *logrus.Logger, err error) {
	var fe *validation.FieldError
	switch {
	case errors.As(err, &fe):
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
	case errors.Is(err, userapp.ErrOTPSent),
		errors.Is(err, userapp.ErrInvalidOTP),
		errors.Is(err, userapp.ErrEmailExists),
		errors.Is(err, userapp.ErrUnknownEmail),
		errors.Is(err, userapp.ErrInvalidCredentials):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, userapp.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, userapp.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	default:
		if logger != nil {
			logger.WithError(err).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
