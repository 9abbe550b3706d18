package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateBlog handles POST /api/blog/create-blog
// @Summary Create a blog
// @Tags blog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createBlogRequest true "Blog"
// @Success 201 {object} models.Envelope{result=models.Post}
// @Failure 400 {object} models.Envelope
// @Router /blog/create-blog [post]
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	var req createBlogRequest
	if err := parseBody(c, &req); err != nil {
		return s.respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:    callerID(c),
		Title:     req.Title,
		Body:      req.Body,
		Mood:      req.Mood,
		Location:  req.Location,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusCreated, "Blog created", post)
}

// UpdateBlog handles PUT /api/blog/update-blog
// @Summary Edit a blog
// @Description The previous version is kept in the blog's revision history.
// @Tags blog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateBlogRequest true "Blog"
// @Success 200 {object} models.Envelope{result=models.Post}
// @Failure 403 {object} models.Envelope
// @Router /blog/update-blog [put]
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	var req updateBlogRequest
	if err := parseBody(c, &req); err != nil {
		return s.respondError(c, err)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:   callerID(c),
		PostID:   req.ID,
		Title:    req.Title,
		Body:     req.Body,
		Mood:     req.Mood,
		Location: req.Location,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Blog updated", post)
}

// DeleteBlog handles DELETE /api/blog/delete-blog/:id
// @Summary Soft-delete a blog
// @Tags blog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Success 200 {object} models.Envelope
// @Router /blog/delete-blog/{id} [delete]
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: callerID(c),
		PostID: id,
	}); err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Blog deleted", nil)
}

// GetBlogRevisions handles GET /api/blog/:id/revisions
func (s *Server) GetBlogRevisions(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	revs, err := s.postService.PostRevisions(c.UserContext(), callerID(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Revisions fetched", revs)
}
