package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `validate:"required,min=2"`
	Email string `validate:"required,email"`
	Role  string `validate:"required,oneof=admin instructor learner"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("accepts a valid struct", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Name: "Ada", Email: "ada@acme.test", Role: "learner"})
		assert.NoError(t, err)
	})

	t.Run("reports one message per failing field", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Name: "A", Email: "not-an-email", Role: "owner"})
		require.Error(t, err)
		require.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Equal(t, "Name must be at least 2", fields["Name"])
		assert.Equal(t, "Email must be a valid email", fields["Email"])
		assert.Equal(t, "Role must be one of: admin instructor learner", fields["Role"])
	})

	t.Run("required tag message", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{})
		require.True(t, IsValidationError(err))
		assert.Equal(t, "Name is required", GetValidationFields(err)["Name"])
	})
}

func TestIsValidationError(t *testing.T) {
	assert.False(t, IsValidationError(assert.AnError))
	assert.Nil(t, GetValidationFields(assert.AnError))
}

func TestValidateSlug(t *testing.T) {
	for _, slug := range []string{"acme", "acme-corp", "a1-b2-c3", "42"} {
		assert.NoError(t, ValidateSlug(slug), slug)
	}
	for _, slug := range []string{"", "Acme", "acme_corp", "-acme", "acme-", "acme corp", "acme--corp"} {
		assert.Error(t, ValidateSlug(slug), slug)
	}
}
