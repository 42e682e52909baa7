package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := NotFound("refund %s not found", "abc")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, kind)

	// matching survives wrapping
	wrapped := fmt.Errorf("handling request: %w", err)
	assert.True(t, IsNotFound(wrapped))
}

func TestGatewayWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Gateway(cause, "refund settlement failed")

	assert.True(t, IsGateway(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, HTTPStatus(NotFound("x")))
	assert.Equal(t, fiber.StatusConflict, HTTPStatus(AlreadyExists("x")))
	assert.Equal(t, fiber.StatusConflict, HTTPStatus(InvalidTransition("x")))
	assert.Equal(t, fiber.StatusUnprocessableEntity, HTTPStatus(Validation("x")))
	assert.Equal(t, fiber.StatusBadGateway, HTTPStatus(Gateway(nil, "x")))
	assert.Equal(t, fiber.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
