package v1

import (
	"net/http"
	"strconv"

	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationUC domain.NotificationUsecase
}

type deleteNotificationsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=100,dive,uuid"`
}

func NewNotificationHandler(r *gin.RouterGroup, notificationUC domain.NotificationUsecase, publishLimit gin.HandlerFunc) {
	handler := &NotificationHandler{notificationUC: notificationUC}

	notifications := r.Group("/notifications")
	{
		notifications.GET("", handler.List)
		notifications.GET("/unread-count", handler.UnreadCount)
		notifications.PATCH("/:id/read", handler.MarkRead)
		notifications.POST("/read-all", handler.MarkAllRead)
		notifications.DELETE("/:id", handler.Delete)
		notifications.POST("/delete", handler.DeleteMany)
		notifications.POST("",
			middleware.RequireRole(domain.RoleAdmin, domain.RoleSystem),
			publishLimit,
			handler.Create,
		)
	}
}

// List godoc
// @Summary      List notifications
// @Description  Newest first, at most 50. degraded=true means the list could not be loaded, not that it is empty.
// @Tags         notifications
// @Produce      json
// @Param        limit  query     int  false  "Row limit (max 50)"
// @Success      200    {object}  response.Response{data=domain.ListResult}
// @Failure      401    {object}  response.Response
// @Router       /notifications [get]
// @Security     BearerAuth
func (h *NotificationHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.Error(apperror.BadRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}

	result := h.notificationUC.List(c.Request.Context(), c.GetString(string(domain.KeyUserID)), limit)
	response.Success(c, http.StatusOK, "Notifications", result)
}

// UnreadCount godoc
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.CountResult}
// @Failure      401  {object}  response.Response
// @Router       /notifications/unread-count [get]
// @Security     BearerAuth
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	result := h.notificationUC.CountUnread(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	response.Success(c, http.StatusOK, "Unread count", result)
}

// MarkRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id}/read [patch]
// @Security     BearerAuth
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationUC.MarkRead(c.Request.Context(), c.GetString(string(domain.KeyUserID)), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllRead godoc
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications/read-all [post]
// @Security     BearerAuth
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.notificationUC.MarkAllRead(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "All notifications marked as read", gin.H{"updated": updated})
}

// Delete godoc
// @Summary      Delete a notification
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id} [delete]
// @Security     BearerAuth
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notificationUC.Delete(c.Request.Context(), c.GetString(string(domain.KeyUserID)), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notification deleted", nil)
}

// DeleteMany godoc
// @Summary      Delete selected notifications
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        request  body      deleteNotificationsRequest  true  "Notification IDs"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /notifications/delete [post]
// @Security     BearerAuth
func (h *NotificationHandler) DeleteMany(c *gin.Context) {
	var req deleteNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "ids must be a non-empty list of notification ids", nil)
		return
	}

	deleted, err := h.notificationUC.DeleteMany(c.Request.Context(), c.GetString(string(domain.KeyUserID)), req.IDs)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notifications deleted", gin.H{"deleted": deleted})
}

// Create godoc
// @Summary      Publish a notification to a user
// @Description  Admin and system accounts only.
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        request  body      domain.CreateNotificationInput  true  "Notification"
// @Success      201      {object}  response.Response{data=domain.Notification}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /notifications [post]
// @Security     BearerAuth
func (h *NotificationHandler) Create(c *gin.Context) {
	var input domain.CreateNotificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	n, err := h.notificationUC.Create(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Notification created", n)
}
