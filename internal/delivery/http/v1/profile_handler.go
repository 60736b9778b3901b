package v1

import (
	"errors"
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/profileedit"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
	resumeUC  domain.ResumeUsecase
}

// saveProfileResponse pairs the reloaded profile with the save indicator.
type saveProfileResponse struct {
	Profile *domain.Profile    `json:"profile"`
	Status  profileedit.Status `json:"status"`
}

func NewProfileHandler(r *gin.RouterGroup, profileUC domain.ProfileUsecase, resumeUC domain.ResumeUsecase) {
	handler := &ProfileHandler{profileUC: profileUC, resumeUC: resumeUC}

	profiles := r.Group("/profiles")
	{
		profiles.GET("/me", handler.GetProfile)
		profiles.PUT("/me", handler.UpdateProfile)
		profiles.GET("/me/fields", handler.EditableFields)
		profiles.POST("/me/resume", handler.UploadResume)
		profiles.DELETE("/me/resume", handler.DeleteResume)
		profiles.POST("/me/resume/validate", handler.ValidateResume)
	}
}

// GetProfile godoc
// @Summary      Get my profile
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profiles/me [get]
// @Security     BearerAuth
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileUC.Get(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile", profile)
}

// EditableFields godoc
// @Summary      List editable profile fields in form order
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  response.Response{data=[]string}
// @Router       /profiles/me/fields [get]
// @Security     BearerAuth
func (h *ProfileHandler) EditableFields(c *gin.Context) {
	response.Success(c, http.StatusOK, "Editable fields", profileedit.Fields())
}

// UpdateProfile godoc
// @Summary      Save my profile
// @Description  Applies the given editable fields over the stored profile and saves all editable fields in one update. Resume fields cannot be changed here.
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "Editable fields"
// @Success      200      {object}  response.Response{data=saveProfileResponse}
// @Failure      400      {object}  response.Response
// @Router       /profiles/me [put]
// @Security     BearerAuth
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	editor := profileedit.New(c.GetString(string(domain.KeyUserID)), h.profileUC)
	if err := editor.Load(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	if err := editor.Apply(values); err != nil {
		var fieldErr *profileedit.FieldError
		if errors.As(err, &fieldErr) {
			response.Error(c, http.StatusBadRequest, fieldErr.Error(), gin.H{"field": fieldErr.Field})
			return
		}
		c.Error(err)
		return
	}

	saved, err := editor.Save(c.Request.Context())
	if err != nil {
		code := apperror.StatusOf(err)
		if code >= http.StatusInternalServerError {
			c.Error(err)
			return
		}
		status := editor.Status()
		response.Error(c, code, status.Message, gin.H{"status": status})
		return
	}
	response.Success(c, http.StatusOK, "Profile updated successfully", saveProfileResponse{
		Profile: saved,
		Status:  editor.Status(),
	})
}
