package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestJSONEmptyBody(t *testing.T) {
	var dest loginBody
	_, err := JSON(httptest.NewRequest("POST", "/", strings.NewReader("")), &dest)
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestJSONTrailingData(t *testing.T) {
	var dest loginBody
	_, err := JSON(httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co"} {}`)), &dest)
	assert.Error(t, err)
}

func TestJSONValidationErrors(t *testing.T) {
	var dest loginBody
	errs, err := JSON(httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope"}`)), &dest)
	require.NoError(t, err)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}
