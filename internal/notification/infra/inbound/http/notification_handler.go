package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/notifly/internal/notification/application"
	"github.com/davicafu/notifly/internal/notification/domain"
	"github.com/davicafu/notifly/pkg/utils"
)

// NotificationHandler encapsula los endpoints HTTP de consulta.
type NotificationHandler struct {
	service *application.NotificationService
}

func NewNotificationHandler(service *application.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetNotificationsByUser endpoint GET /notifications/:userId
//
// Un usuario sin notificaciones responde 404 con código 404.09, no una
// lista vacía: la ausencia se señala de forma explícita.
func (h *NotificationHandler) GetNotificationsByUser(c *gin.Context) {
	userID := c.Param("userId")

	var filter domain.NotificationFilter
	if limitStr := c.Query("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 0 {
			utils.SendBadRequest(c, "invalid limit")
			return
		}
		filter.Limit = v
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		v, err := strconv.Atoi(offsetStr)
		if err != nil || v < 0 {
			utils.SendBadRequest(c, "invalid offset")
			return
		}
		filter.Offset = v
	}

	notifications, err := h.service.GetNotificationsByUser(c.Request.Context(), userID, filter)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidUserID):
			utils.SendBadRequest(c, err.Error())
		case errors.Is(err, domain.ErrNoNotifications):
			utils.SendNotFound(c, fmt.Sprintf("No notifications found for user ID: %s", userID))
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{"notifications": notifications})
}
