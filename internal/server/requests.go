package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// requestValidator returns the shared validator. Field errors are reported
// under the query or json name the client sent.
func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"query", "json"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
	return validate
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// validateRequest checks req against its validate tags and converts
// failures to a ValidationError.
func validateRequest(req any) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.NewValidationError(err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return models.NewValidationError(strings.Join(msgs, "; "))
}

func parseQuery(c *fiber.Ctx, req any) error {
	if err := c.QueryParser(req); err != nil {
		return models.NewValidationError("Invalid query parameters")
	}
	return validateRequest(req)
}

func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return validateRequest(req)
}

type feedRequest struct {
	PageNumber int    `query:"pageNumber" validate:"min=1"`
	PageSize   int    `query:"pageSize" validate:"min=1"`
	SortBy     string `query:"sortBy" validate:"max=32"`
}

// parseFeedQuery reads pageNumber, pageSize and sortBy. Missing values take
// the configured defaults and pageSize is capped at MAX_PAGE_SIZE.
func (s *Server) parseFeedQuery(c *fiber.Ctx) (service.FeedQuery, error) {
	req := feedRequest{PageNumber: 1, PageSize: s.config.DefaultPageSize}
	if err := parseQuery(c, &req); err != nil {
		return service.FeedQuery{}, err
	}
	if req.PageSize > s.config.MaxPageSize {
		req.PageSize = s.config.MaxPageSize
	}
	return service.FeedQuery{Page: req.PageNumber, PageSize: req.PageSize, SortBy: req.SortBy}, nil
}

type blogVoteRequest struct {
	BlogID     uint `query:"blogId" validate:"required"`
	ReactionID int  `query:"reactionId" validate:"required"`
}

type commentVoteRequest struct {
	CommentID  uint `query:"commentId" validate:"required"`
	ReactionID int  `query:"reactionId" validate:"required"`
}

type blogCommentRequest struct {
	BlogID      uint   `query:"blogId" validate:"required"`
	CommentText string `query:"commentText" validate:"required"`
}

type commentReplyRequest struct {
	CommentID   uint   `query:"commentId" validate:"required"`
	CommentText string `query:"commentText" validate:"required"`
}

type createBlogRequest struct {
	Title     string   `json:"title" validate:"required,max=255"`
	Body      string   `json:"body" validate:"required"`
	Mood      string   `json:"mood" validate:"max=100"`
	Location  string   `json:"location" validate:"max=255"`
	ImageURLs []string `json:"imageUrls" validate:"max=10,dive,url"`
}

type updateBlogRequest struct {
	ID       uint   `json:"id" validate:"required"`
	Title    string `json:"title" validate:"required,max=255"`
	Body     string `json:"body" validate:"required"`
	Mood     string `json:"mood" validate:"max=100"`
	Location string `json:"location" validate:"max=255"`
}

type updateProfileRequest struct {
	FullName     string `json:"fullName" validate:"required,max=255"`
	MobileNumber string `json:"mobileNumber" validate:"max=32"`
}

// pageRequest is the paging query of plain list endpoints.
type pageRequest struct {
	PageNumber int `query:"pageNumber" validate:"min=1"`
	PageSize   int `query:"pageSize" validate:"min=1"`
}

func (s *Server) parsePageQuery(c *fiber.Ctx) (pageRequest, error) {
	req := pageRequest{PageNumber: 1, PageSize: s.config.DefaultPageSize}
	if err := parseQuery(c, &req); err != nil {
		return req, err
	}
	if req.PageSize > s.config.MaxPageSize {
		req.PageSize = s.config.MaxPageSize
	}
	return req, nil
}
