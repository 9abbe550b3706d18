package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, err := s.isAdminByUserID(c.UserContext(), callerID(c))
		if err != nil {
			return s.respondError(c, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}
		return c.Next()
	}
}

// GetDashboardDetails handles GET /api/admin/dashboard-details
// @Summary Platform engagement dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{result=service.Dashboard}
// @Failure 403 {object} models.Envelope
// @Router /admin/dashboard-details [get]
func (s *Server) GetDashboardDetails(c *fiber.Ctx) error {
	dash, err := s.feed.Dashboard(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Dashboard fetched", dash)
}

// GetAllUsers handles GET /api/admin/get-all-users
// @Summary List all accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "1-based page"
// @Param pageSize query int false "Items per page"
// @Success 200 {object} models.Envelope{result=[]models.User}
// @Failure 403 {object} models.Envelope
// @Router /admin/get-all-users [get]
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	req, err := s.parsePageQuery(c)
	if err != nil {
		return s.respondError(c, err)
	}
	users, total, err := s.accountService.ListUsers(c.UserContext(), req.PageNumber, req.PageSize)
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondPage(c, "Successfully Retrieved", total, users)
}

// GetFeatureFlags returns configured feature flags and their state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	evaluated := map[string]bool{}
	for _, name := range s.featureFlags.Names() {
		evaluated[name] = s.featureFlags.Enabled(name, callerID(c))
	}
	return models.RespondOK(c, fiber.StatusOK, "Feature flags fetched", evaluated)
}
