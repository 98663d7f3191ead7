package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFound_Message(t *testing.T) {
	err := NotFound("product", 42)

	assert.Equal(t, "product 42 not found", err.Error())
	assert.Equal(t, "42", err.ID)
}

func TestValidationErrors_Fields(t *testing.T) {
	errs := ValidationErrors{
		Invalid("email", "Invalid email address"),
		Invalid("first_name", "Field must be between 2 and 50 characters long"),
		Invalid("email", "second message is ignored"),
	}

	fields := errs.Fields()

	assert.Len(t, fields, 2)
	assert.Equal(t, "Invalid email address", fields["email"])
	assert.Equal(t, []string{"email", "first_name"}, errs.FieldNames())
	assert.Contains(t, errs.Error(), "email: Invalid email address")
}

func TestPersistence_WrapsAndUnwraps(t *testing.T) {
	err := Persistence("insert cart item", sql.ErrConnDone)

	var pe *PersistenceError
	require.True(t, errors.As(fmt.Errorf("apply: %w", err), &pe))
	assert.Equal(t, "insert cart item", pe.Op)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestPersistence_Nil(t *testing.T) {
	assert.NoError(t, Persistence("noop", nil))
}

func TestUpstreamFetchError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &UpstreamFetchError{URL: "https://feed.example/products", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "https://feed.example/products")
}
