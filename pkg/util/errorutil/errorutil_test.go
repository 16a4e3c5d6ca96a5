package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"domain error passes through", NewConflict("username already exists", nil), http.StatusConflict, "CONFLICT"},
		{"wrapped domain error", fmt.Errorf("register: %w", NewForbidden("nope")), http.StatusForbidden, "FORBIDDEN"},
		{"fiber error", fiber.NewError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"no rows", fmt.Errorf("get: %w", pgx.ErrNoRows), http.StatusNotFound, "NOT_FOUND"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			require.NotNil(t, de)
			assert.Equal(t, tc.status, de.HTTPStatus)
			assert.Equal(t, tc.code, de.Code)
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	de := ToDomainError(errors.New("connection refused"))
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorContains(t, de, "connection refused")
	assert.Nil(t, ToDomainError(nil))
}
