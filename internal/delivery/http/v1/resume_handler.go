package v1

import (
	"errors"
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/metrics"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// multipart bodies carry some overhead beyond the file itself
const maxResumeRequestBytes = security.MaxResumeSize + 1<<20

type validateResumeRequest struct {
	Name     string `json:"name" binding:"required"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mime_type" binding:"required"`
}

// UploadResume godoc
// @Summary      Upload my resume
// @Description  Replaces any previous resume. PDF, DOC or DOCX between 1KB and 5MB.
// @Tags         profiles
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Resume file"
// @Success      200   {object}  response.Response{data=domain.UploadReport}
// @Failure      400   {object}  response.Response
// @Failure      415   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /profiles/me/resume [post]
// @Security     BearerAuth
func (h *ProfileHandler) UploadResume(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxResumeRequestBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.ResumeUploads.WithLabelValues("rejected").Inc()
			c.Error(security.NewResumeError(security.ResumeErrSize, "File is too large. Maximum size is 5MB.", err))
			return
		}
		response.Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(security.NewResumeError(security.ResumeErrNetwork, "Failed to read the uploaded file. Please try again.", err))
		return
	}
	defer file.Close()

	report, err := h.resumeUC.Upload(c.Request.Context(), c.GetString(string(domain.KeyUserID)), c.ClientIP(), domain.ResumeUpload{
		Name:     fileHeader.Filename,
		Size:     fileHeader.Size,
		MIMEType: fileHeader.Header.Get("Content-Type"),
		Content:  file,
	})
	if err != nil {
		metrics.ResumeUploads.WithLabelValues(uploadOutcome(err)).Inc()
		c.Error(err)
		return
	}

	metrics.ResumeUploads.WithLabelValues("stored").Inc()
	response.Success(c, http.StatusOK, "Resume uploaded", report)
}

func uploadOutcome(err error) string {
	var resumeErr *security.ResumeError
	if errors.As(err, &resumeErr) {
		switch resumeErr.Kind {
		case security.ResumeErrSize, security.ResumeErrFormat, security.ResumeErrName:
			return "rejected"
		}
	}
	if apperror.StatusOf(err) == http.StatusTooManyRequests {
		return "rejected"
	}
	return "failed"
}

// DeleteResume godoc
// @Summary      Delete my resume
// @Description  Always 200. complete=false and the failed steps show what could not be cleaned up.
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.DeleteReport}
// @Router       /profiles/me/resume [delete]
// @Security     BearerAuth
func (h *ProfileHandler) DeleteResume(c *gin.Context) {
	report := h.resumeUC.Delete(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	message := "Resume deleted"
	if !report.Complete {
		message = "Resume deleted with errors"
	}
	response.Success(c, http.StatusOK, message, report)
}

// ValidateResume godoc
// @Summary      Pre-check resume metadata
// @Description  Runs the same size, type and name checks as upload without sending the file.
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        request  body      validateResumeRequest  true  "File metadata"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /profiles/me/resume/validate [post]
// @Security     BearerAuth
func (h *ProfileHandler) ValidateResume(c *gin.Context) {
	var req validateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "name and mime_type are required", nil)
		return
	}

	if rerr := security.ValidateResume(security.ResumeFile{Name: req.Name, Size: req.Size, MIMEType: req.MIMEType}); rerr != nil {
		c.Error(rerr)
		return
	}
	response.Success(c, http.StatusOK, "File is valid", nil)
}
