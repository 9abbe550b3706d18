package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// EnsureAccount returns middleware that creates the caller's user row on
// first use. Must be placed after AuthRequired.
func (s *Server) EnsureAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := s.accountService.EnsureAccount(c.UserContext(), callerID(c)); err != nil {
			return s.respondError(c, err)
		}
		return c.Next()
	}
}

// GetMyProfile handles GET /api/profile/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.accountService.Profile(c.UserContext(), callerID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Profile fetched", user)
}

// DeleteProfile handles DELETE /api/profile/delete-profile
// @Summary Delete the caller's account
// @Description Hard-deletes the account with its blogs, comments, reactions, revisions and notifications.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Router /profile/delete-profile [delete]
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	if err := s.accountService.DeleteAccount(c.UserContext(), callerID(c)); err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Profile deleted", nil)
}

// UpdateProfileDetails handles PATCH /api/profile/update-profile-details
// @Summary Update the caller's profile details
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateProfileRequest true "Profile details"
// @Success 200 {object} models.Envelope{result=models.User}
// @Failure 400 {object} models.Envelope
// @Router /profile/update-profile-details [patch]
func (s *Server) UpdateProfileDetails(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return s.respondError(c, err)
	}
	user, err := s.accountService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   callerID(c),
		FullName: req.FullName,
		MobileNo: req.MobileNumber,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Successfully Updated", user)
}
