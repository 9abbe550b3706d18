package models

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeFor(t *testing.T, handler fiber.Handler) (int, Envelope) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestRespondOK_SingleResultCountsOne(t *testing.T) {
	status, env := envelopeFor(t, func(c *fiber.Ctx) error {
		return RespondOK(c, fiber.StatusCreated, "Created", map[string]int{"id": 7})
	})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, StatusSuccess, env.Status)
	require.NotNil(t, env.TotalCount)
	assert.Equal(t, 1, *env.TotalCount)
}

func TestRespondPage_CarriesTotal(t *testing.T) {
	_, env := envelopeFor(t, func(c *fiber.Ctx) error {
		return RespondPage(c, "Fetched", 12, []int{1, 2})
	})
	require.NotNil(t, env.TotalCount)
	assert.Equal(t, 12, *env.TotalCount)
}

func TestRespondWithError_HidesInternalDetails(t *testing.T) {
	status, env := envelopeFor(t, func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, NewInternalError(errors.New("db password leaked")))
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, StatusError, env.Status)
	assert.Nil(t, env.TotalCount)
	raw, err := json.Marshal(env.Result)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "leaked")
}
