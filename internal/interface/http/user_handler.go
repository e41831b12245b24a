package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/api-profiles/internal/application"
	"github.com/oksasatya/api-profiles/internal/domain/entity"
	"github.com/oksasatya/api-profiles/pkg/response"
	"github.com/oksasatya/api-profiles/pkg/validation"
)

const profileTimeLayout = "2006-01-02 15:04:05"

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type patchProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func profileJSON(u *entity.User) gin.H {
	var lastLogin string
	if u.LastLogin != nil {
		lastLogin = u.LastLogin.Format(profileTimeLayout)
	}
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"date_joined": u.DateJoined.Format(profileTimeLayout),
		"last_login":  lastLogin,
	}
}

// GetProfile GET /api/profile/:email
// Any authenticated caller may read a profile; the hash is never serialized.
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, profileJSON(u), "profile", nil)
}

// UpdateProfile PUT /api/profile/:email
// Full update: both name fields are replaced with the submitted values.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userEmail"), c.Param("email"), userapp.UpdateProfileInput{
		FirstName: &req.FirstName,
		LastName:  &req.LastName,
	})
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, profileJSON(u), "profile updated", nil)
}

// PatchProfile PATCH /api/profile/:email
// Partial update: absent fields are left untouched.
func (h *UserHandler) PatchProfile(c *gin.Context) {
	var req patchProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userEmail"), c.Param("email"), userapp.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, profileJSON(u), "profile updated", nil)
}

// DeleteProfile DELETE /api/profile/:email
func (h *UserHandler) DeleteProfile(c *gin.Context) {
	if err := h.Svc.DeleteProfile(c.Request.Context(), c.GetString("userEmail"), c.Param("email")); err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "profile deleted", nil)
}
