package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ChatroomID string `validate:"required,max=8"`
}

func TestValidateDTO(t *testing.T) {
	assert.NoError(t, ValidateDTO(&sample{ChatroomID: "c1"}))

	err := ValidateDTO(&sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ChatroomID")
	assert.Contains(t, err.Error(), "required")

	err = ValidateDTO(&sample{ChatroomID: "too-long-id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max")
}
