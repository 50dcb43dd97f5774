package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name     string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Role     string `validate:"omitempty,oneof=user admin"`
	Password string `validate:"required,min=6"`
}

func TestValidateStructValid(t *testing.T) {
	fields := ValidateStruct(sampleInput{
		Name:     "Ana Souza",
		Email:    "ana@example.com",
		Role:     "admin",
		Password: "secret1",
	})
	assert.Nil(t, fields)
}

func TestValidateStructCollectsFieldErrors(t *testing.T) {
	fields := ValidateStruct(sampleInput{
		Name:     "Al",
		Email:    "not-an-email",
		Role:     "owner",
		Password: "123",
	})
	require.NotNil(t, fields)

	assert.Equal(t, "must be at least 3", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be one of: user, admin", fields["role"])
	assert.Equal(t, "must be at least 6", fields["password"])
}

func TestValidateStructRequired(t *testing.T) {
	fields := ValidateStruct(sampleInput{})
	require.NotNil(t, fields)
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "is required", fields["email"])
	assert.NotContains(t, fields, "role")
}
