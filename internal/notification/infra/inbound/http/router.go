package http

import "github.com/gin-gonic/gin"

func RegisterNotificationRoutes(r *gin.Engine, handler *NotificationHandler) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("/:userId", handler.GetNotificationsByUser)
	}
}
