package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
// @Summary List the caller's notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "1-based page"
// @Param pageSize query int false "Items per page"
// @Success 200 {object} models.Envelope{result=[]models.Notification}
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	req, err := s.parsePageQuery(c)
	if err != nil {
		return s.respondError(c, err)
	}

	list, err := s.notifications.List(c.UserContext(), callerID(c), req.PageNumber, req.PageSize)
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Notifications fetched", list)
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notifications.MarkRead(c.UserContext(), callerID(c), id); err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Notification marked as read", nil)
}
