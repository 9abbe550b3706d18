package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetHomePageBlogs handles GET /api/home/home-page-blogs
// @Summary Home feed
// @Description Active blogs ranked by recency, popularity or random order
// @Tags home
// @Produce json
// @Param pageNumber query int false "1-based page"
// @Param pageSize query int false "Items per page"
// @Param sortBy query string false "recency | popularity"
// @Success 200 {object} models.Envelope{result=[]service.PostView}
// @Failure 400 {object} models.Envelope
// @Router /home/home-page-blogs [get]
func (s *Server) GetHomePageBlogs(c *fiber.Ctx) error {
	q, err := s.parseFeedQuery(c)
	if err != nil {
		return s.respondError(c, err)
	}

	views, total, err := s.feed.HomeFeed(c.UserContext(), callerID(c), q)
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondPage(c, "Blogs fetched", total, views)
}

// GetMyBlogs handles GET /api/home/my-blogs
// @Summary Caller's blogs
// @Tags home
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "1-based page"
// @Param pageSize query int false "Items per page"
// @Param sortBy query string false "recency | popularity"
// @Success 200 {object} models.Envelope{result=[]service.PostView}
// @Router /home/my-blogs [get]
func (s *Server) GetMyBlogs(c *fiber.Ctx) error {
	q, err := s.parseFeedQuery(c)
	if err != nil {
		return s.respondError(c, err)
	}

	views, total, err := s.feed.MyPosts(c.UserContext(), callerID(c), q)
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondPage(c, "Blogs fetched", total, views)
}

// GetBlogDetails handles GET /api/home/blogs-details/:id
// @Summary Blog detail with comment tree
// @Tags home
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} models.Envelope{result=service.PostDetail}
// @Failure 404 {object} models.Envelope
// @Router /home/blogs-details/{id} [get]
func (s *Server) GetBlogDetails(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.feed.PostDetail(c.UserContext(), callerID(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Blog fetched", detail)
}

// VoteOnBlog handles POST /api/home/upvote-downvote-blog?blogId&reactionId
// @Summary Up- or downvote a blog
// @Tags home
// @Produce json
// @Security BearerAuth
// @Param blogId query int true "Blog ID"
// @Param reactionId query int true "1 upvote, 2 downvote"
// @Success 200 {object} models.Envelope{result=models.Reaction}
// @Failure 400 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /home/upvote-downvote-blog [post]
func (s *Server) VoteOnBlog(c *fiber.Ctx) error {
	var req blogVoteRequest
	if err := parseQuery(c, &req); err != nil {
		return s.respondError(c, err)
	}

	reaction, err := s.ledger.CastVote(c.UserContext(), models.PostTarget(req.BlogID),
		callerID(c), models.ReactionKind(req.ReactionID))
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Reaction saved", reaction)
}

// VoteOnComment handles POST /api/home/upvote-downvote-comment?commentId&reactionId
// @Summary React to a comment
// @Tags home
// @Produce json
// @Security BearerAuth
// @Param commentId query int true "Comment ID"
// @Param reactionId query int true "3 sentiment"
// @Success 200 {object} models.Envelope{result=models.Reaction}
// @Router /home/upvote-downvote-comment [post]
func (s *Server) VoteOnComment(c *fiber.Ctx) error {
	var req commentVoteRequest
	if err := parseQuery(c, &req); err != nil {
		return s.respondError(c, err)
	}

	reaction, err := s.ledger.CastVote(c.UserContext(), models.CommentTarget(req.CommentID),
		callerID(c), models.ReactionKind(req.ReactionID))
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Reaction saved", reaction)
}

// CommentOnBlog handles POST /api/home/comment-for-blog?blogId&commentText
// @Summary Add a top-level comment
// @Tags home
// @Produce json
// @Security BearerAuth
// @Param blogId query int true "Blog ID"
// @Param commentText query string true "Comment text"
// @Success 201 {object} models.Envelope{result=models.Comment}
// @Router /home/comment-for-blog [post]
func (s *Server) CommentOnBlog(c *fiber.Ctx) error {
	var req blogCommentRequest
	if err := parseQuery(c, &req); err != nil {
		return s.respondError(c, err)
	}

	comment, err := s.commentService.CommentOnPost(c.UserContext(), callerID(c), req.BlogID, req.CommentText)
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusCreated, "Comment added", comment)
}

// ReplyToComment handles POST /api/home/comment-for-comment?commentId&commentText
// @Summary Reply to a comment
// @Tags home
// @Produce json
// @Security BearerAuth
// @Param commentId query int true "Parent comment ID"
// @Param commentText query string true "Reply text"
// @Success 201 {object} models.Envelope{result=models.Comment}
// @Router /home/comment-for-comment [post]
func (s *Server) ReplyToComment(c *fiber.Ctx) error {
	var req commentReplyRequest
	if err := parseQuery(c, &req); err != nil {
		return s.respondError(c, err)
	}

	reply, err := s.commentService.ReplyToComment(c.UserContext(), callerID(c), req.CommentID, req.CommentText)
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusCreated, "Reply added", reply)
}

// UpdateComment handles PUT /api/home/update-comment?commentId&commentText
// @Summary Edit a comment
// @Tags home
// @Produce json
// @Security BearerAuth
// @Param commentId query int true "Comment ID"
// @Param commentText query string true "New text"
// @Success 200 {object} models.Envelope{result=models.Comment}
// @Failure 403 {object} models.Envelope
// @Router /home/update-comment [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	var req commentReplyRequest
	if err := parseQuery(c, &req); err != nil {
		return s.respondError(c, err)
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), callerID(c), req.CommentID, req.CommentText)
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Comment updated", comment)
}

// DeleteComment handles DELETE /api/home/delete-comment/:id
// @Summary Soft-delete a comment
// @Tags home
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /home/delete-comment/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), callerID(c), id); err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Comment deleted", nil)
}

// RemoveBlogReactions handles DELETE /api/home/remove-blog-reaction/:id
// @Summary Retract every active vote on a blog
// @Tags home
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Success 200 {object} models.Envelope
// @Router /home/remove-blog-reaction/{id} [delete]
func (s *Server) RemoveBlogReactions(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.ledger.RetractAllVotesAs(c.UserContext(), models.PostTarget(id), callerID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Reactions removed", fiber.Map{"removed": n})
}

// RemoveCommentReactions handles DELETE /api/home/remove-comment-reaction/:id
// @Summary Retract every active reaction on a comment
// @Tags home
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} models.Envelope
// @Router /home/remove-comment-reaction/{id} [delete]
func (s *Server) RemoveCommentReactions(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.ledger.RetractAllVotesAs(c.UserContext(), models.CommentTarget(id), callerID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Reactions removed", fiber.Map{"removed": n})
}

// GetCommentRevisions handles GET /api/home/comments/:id/revisions
func (s *Server) GetCommentRevisions(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	revs, err := s.commentService.CommentRevisions(c.UserContext(), callerID(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Revisions fetched", revs)
}
