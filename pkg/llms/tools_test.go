package llms_test

import (
	"testing"

	"github.com/effective-security/toolbelt/pkg/llms"
	"github.com/stretchr/testify/assert"
)

func TestToolCall_String(t *testing.T) {
	tc := llms.ToolCall{
		ID:   "call_1",
		Type: llms.ToolTypeFunction,
		FunctionCall: &llms.FunctionCall{
			Name:      "weather",
			Arguments: `{"city":"Berlin"}`,
		},
	}
	assert.Equal(t, `ToolCall: call_1 (weather), input: {"city":"Berlin"}`, tc.String())
	assert.Equal(t, "ToolCall: call_2", llms.ToolCall{ID: "call_2"}.String())

	resp := llms.ToolCallResponse{
		ToolCallID: "call_1",
		Name:       "weather",
		Content:    "Error: 404",
	}
	assert.Equal(t, "ToolCallResponse: call_1 (weather), response size: 10", resp.String())
}
