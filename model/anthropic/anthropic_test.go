package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentshop/core"
	"github.com/hupe1980/agentshop/internal/testutil"
	"github.com/hupe1980/agentshop/model"
)

func TestBuildMessages_ToolResultsInUserTurn(t *testing.T) {
	contents := testutil.NewConversation().
		System("be brief").
		User("add item 3 to order 1").
		Call("t1", "add_item_to_order", map[string]any{"order_id": 1, "item_id": 3}).
		Result("t1", "add_item_to_order", "success add item message").
		User("thanks").
		Build()

	msgs := buildMessages(contents)
	require.Len(t, msgs, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	require.NotNil(t, msgs[1].Content[0].OfToolUse)
	assert.Equal(t, "t1", msgs[1].Content[0].OfToolUse.ID)

	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	require.Len(t, msgs[2].Content, 2)
	require.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.Equal(t, "t1", msgs[2].Content[0].OfToolResult.ToolUseID)
	assert.NotNil(t, msgs[2].Content[1].OfText)
}

func TestSystemBlocks(t *testing.T) {
	blocks := systemBlocks(model.Request{
		Instructions: "You are an expert in online shop assistant.",
		Contents:     []core.Content{core.NewTextContent(core.RoleSystem, "extra")},
	})
	require.Len(t, blocks, 2)
	assert.Equal(t, "extra", blocks[1].Text)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]model.ToolDefinition{{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        "create_order",
			Description: "Create a new empty order",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"order_id": map[string]any{"type": "integer"}},
				"required":   []string{"order_id"},
			},
		},
	}})
	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "create_order", tools[0].OfTool.Name)
	assert.Equal(t, []string{"order_id"}, tools[0].OfTool.InputSchema.Required)
	assert.Equal(t, "Create a new empty order", tools[0].OfTool.Description.Value)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.Model = "claude-test"; o.APIKey = "k" })
	assert.Equal(t, model.Info{Name: "claude-test", Provider: "anthropic", SupportsTools: true}, m.Info())
}
