package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
)

type notificationHandler struct {
	log     *logrus.Entry
	service NotificationService
}

func NewHandler(service NotificationService, log *logrus.Entry) *notificationHandler {
	return &notificationHandler{
		log:     log,
		service: service,
	}
}

func (h *notificationHandler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	notifications := router.Group("/notifications", authMiddleware)
	notifications.GET("", h.list)
	notifications.POST("/:id/read", h.markRead)

	router.GET("/shops/:id/activities", authMiddleware, h.recentActivities)
}

func (h *notificationHandler) list(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	notifications, err := h.service.ListForUser(actor.ID)
	if err != nil {
		h.log.Errorf("failed to list notifications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *notificationHandler) markRead(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.MarkRead(actor.ID, uint(id)); err != nil {
		switch {
		case errors.Is(err, ErrNotificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotRecipient):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.log.Errorf("failed to mark notification read: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

func (h *notificationHandler) recentActivities(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	activities, err := h.service.RecentActivities(uint(id))
	if err != nil {
		h.log.Errorf("failed to list activities: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, activities)
}
