package models

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Envelope status values.
const (
	StatusSuccess = "Success"
	StatusError   = "Error"
)

// Envelope wraps every API response body.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	TotalCount *int   `json:"totalCount"`
	Result     any    `json:"result"`
}

// ErrorDetail is the result payload of a failed request.
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// RespondOK writes a success envelope for a single result, which always
// reports a total count of one.
func RespondOK(c *fiber.Ctx, status int, message string, result any) error {
	one := 1
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Status:     StatusSuccess,
		Message:    message,
		TotalCount: &one,
		Result:     result,
	})
}

// RespondPage writes a success envelope carrying the pre-pagination total.
func RespondPage(c *fiber.Ctx, message string, total int, result any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		StatusCode: fiber.StatusOK,
		Status:     StatusSuccess,
		Message:    message,
		TotalCount: &total,
		Result:     result,
	})
}

// RespondWithError creates a standardized error envelope.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	env := Envelope{
		StatusCode: status,
		Status:     StatusError,
		Message:    err.Error(),
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		env.Message = appErr.Message
		detail := ErrorDetail{Code: appErr.Code}
		if appErr.Err != nil && appErr.Code != CodeInternal {
			detail.Details = appErr.Err.Error()
		}
		env.Result = detail
	}

	return c.Status(status).JSON(env)
}
