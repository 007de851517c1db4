package validator

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/nulzo/neurix/pkg/api"
	"github.com/stretchr/testify/assert"
)

func TestParseValidationError(t *testing.T) {
	InitValidator()

	err := binding.Validator.ValidateStruct(&api.RelayRequest{})
	assert.True(t, IsValidation(err))

	errMap := ParseValidationError(err)
	assert.Equal(t, "modelName is a required field", errMap["modelName"])
	assert.Equal(t, "messages is a required field", errMap["messages"])
	assert.Equal(t, "messages is a required field; modelName is a required field", Describe(err))
}

func TestParseValidationError_DecodeError(t *testing.T) {
	var req api.RelayRequest
	err := json.Unmarshal([]byte(`{"modelName":`), &req)

	assert.False(t, IsValidation(err))
	assert.Contains(t, ParseValidationError(err), "body")
}
