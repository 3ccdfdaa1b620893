package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentshop/core"
	"github.com/hupe1980/agentshop/model"
	"github.com/hupe1980/agentshop/order"
	"github.com/hupe1980/agentshop/shoptools"
	"github.com/hupe1980/agentshop/tool"
)

func newShop(t *testing.T) (*order.Store, *tool.Registry) {
	t.Helper()
	store := order.NewStore()
	reg, err := shoptools.NewRegistry(store)
	require.NoError(t, err)
	return store, reg
}

func toolResponses(contents []core.Content) []core.FunctionResponse {
	var out []core.FunctionResponse
	for _, c := range contents {
		if c.Role == core.RoleTool {
			out = append(out, c.FunctionResponses()...)
		}
	}
	return out
}

func TestToolAgent_PlainReply(t *testing.T) {
	_, reg := newShop(t)
	llm := model.NewMockModel("mock").EnqueueText("Hello! How can I help?")
	a := New("shop", llm, reg)

	reply, err := a.Chat(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", reply)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, DefaultInstruction, reqs[0].Instructions)
	assert.Len(t, reqs[0].Tools, 7)
	assert.Equal(t, 2, a.Sessions().Get("s1").Len())
}

func TestToolAgent_ExecutesToolCalls(t *testing.T) {
	store, reg := newShop(t)
	llm := model.NewMockModel("mock").
		EnqueueCalls(core.FunctionCall{Name: "create_order", Arguments: "{}"}).
		EnqueueCalls(core.FunctionCall{Name: "add_item_to_order", Arguments: `{"order_id":1,"item_id":3}`}).
		EnqueueText("Order 1 now contains item 3.")
	a := New("shop", llm, reg)

	reply, err := a.Chat(context.Background(), "s1", "create an order with item 3")
	require.NoError(t, err)
	assert.Equal(t, "Order 1 now contains item 3.", reply)

	items, err := store.Items(1)
	require.NoError(t, err)
	assert.Equal(t, []order.ItemID{3}, items)

	reqs := llm.Requests()
	require.Len(t, reqs, 3)
	responses := toolResponses(reqs[2].Contents)
	require.Len(t, responses, 2)
	assert.Equal(t, "1", responses[0].Payload())
	assert.Equal(t, `"success add item message"`, responses[1].Payload())

	calls := reqs[1].Contents[1].FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, calls[0].ID, responses[0].ID)
}

func TestToolAgent_CallsRunInOrder(t *testing.T) {
	_, reg := newShop(t)
	llm := model.NewMockModel("mock").
		EnqueueCalls(
			core.FunctionCall{Name: "create_order"},
			core.FunctionCall{Name: "create_order"},
			core.FunctionCall{Name: "get_orders"},
		).
		EnqueueText("You have two orders.")
	a := New("shop", llm, reg)

	_, err := a.Chat(context.Background(), "s1", "create two orders")
	require.NoError(t, err)

	responses := toolResponses(a.Sessions().Get("s1").Messages())
	require.Len(t, responses, 3)
	assert.Equal(t, "[1,2]", responses[2].Payload())
}

func TestToolAgent_ToolErrorsAreFedBack(t *testing.T) {
	_, reg := newShop(t)
	llm := model.NewMockModel("mock").
		EnqueueCalls(core.FunctionCall{Name: "delete_everything"}).
		EnqueueText("Sorry, I cannot do that.")
	a := New("shop", llm, reg)

	reply, err := a.Chat(context.Background(), "s1", "delete everything")
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I cannot do that.", reply)

	responses := toolResponses(a.Sessions().Get("s1").Messages())
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].Error, tool.CodeNotFound)
	assert.True(t, strings.HasPrefix(responses[0].Payload(), `{"error":`))
}

func TestToolAgent_MaxSteps(t *testing.T) {
	_, reg := newShop(t)
	llm := model.NewMockModel("mock")
	for i := 0; i < 3; i++ {
		llm.EnqueueCalls(core.FunctionCall{Name: "get_orders"})
	}
	a := New("shop", llm, reg, func(o *Options) { o.MaxSteps = 2 })

	_, err := a.Chat(context.Background(), "s1", "loop")
	assert.ErrorIs(t, err, ErrMaxSteps)
	assert.Len(t, llm.Requests(), 2)
}

func TestToolAgent_Streaming(t *testing.T) {
	llm := model.NewMockModel("mock").EnqueueText("hey")
	var deltas []string
	a := New("shop", llm, nil, func(o *Options) {
		o.Stream = true
		o.OnDelta = func(d string) { deltas = append(deltas, d) }
	})

	reply, err := a.Chat(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hey", reply)
	assert.Equal(t, []string{"h", "e", "y"}, deltas)
	assert.True(t, llm.Requests()[0].Stream)
}

func TestToolAgent_HistoryWindow(t *testing.T) {
	_, reg := newShop(t)
	llm := model.NewMockModel("mock")
	a := New("shop", llm, reg, func(o *Options) { o.HistoryLimit = 3 })

	for _, msg := range []string{"one", "two", "three"} {
		_, err := a.Chat(context.Background(), "s1", msg)
		require.NoError(t, err)
	}

	reqs := llm.Requests()
	last := reqs[len(reqs)-1].Contents
	require.NotEmpty(t, last)
	assert.Equal(t, core.RoleUser, last[0].Role)
	assert.Equal(t, "three", last[len(last)-1].Text())
	assert.LessOrEqual(t, len(last), 3)
}

func TestToolAgent_SessionsAreIsolated(t *testing.T) {
	llm := model.NewMockModel("mock")
	a := New("shop", llm, nil)

	_, err := a.Chat(context.Background(), "a", "first")
	require.NoError(t, err)
	reply, err := a.Chat(context.Background(), "b", "second")
	require.NoError(t, err)

	assert.Equal(t, "Mock response to: second", reply)
	assert.Len(t, llm.Requests()[1].Contents, 1)
}

func TestToolAgent_EndSession(t *testing.T) {
	llm := model.NewMockModel("mock")
	a := New("shop", llm, nil)

	for _, id := range []string{"a", "b"} {
		_, err := a.Chat(context.Background(), id, "hi")
		require.NoError(t, err)
	}
	require.Equal(t, 2, a.activeLocks())

	a.EndSession("a")
	assert.Equal(t, []string{"b"}, a.Sessions().IDs())
	assert.Equal(t, 1, a.activeLocks())

	a.EndSession("missing")
	assert.Equal(t, 1, a.activeLocks())

	_, err := a.Chat(context.Background(), "a", "again")
	require.NoError(t, err)
	assert.Len(t, llm.Requests()[2].Contents, 1)
}

type failingModel struct{ err error }

func (m failingModel) Generate(context.Context, model.Request) (<-chan model.Response, <-chan error) {
	respCh := make(chan model.Response)
	errCh := make(chan error, 1)
	errCh <- m.err
	close(respCh)
	close(errCh)
	return respCh, errCh
}

func (failingModel) Info() model.Info { return model.Info{Name: "failing", Provider: "test"} }

func TestToolAgent_ModelError(t *testing.T) {
	boom := errors.New("upstream unavailable")
	a := New("shop", failingModel{err: boom}, nil)

	_, err := a.Chat(context.Background(), "s1", "hi")
	assert.ErrorIs(t, err, boom)
}

func TestToolAgent_InstructionProvider(t *testing.T) {
	llm := model.NewMockModel("mock").EnqueueText("ok")
	a := New("shop", llm, nil, func(o *Options) {
		o.Instruction = NewInstructionFromFunc(func(context.Context) (string, error) {
			return "dynamic prompt", nil
		})
	})

	_, err := a.Chat(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "dynamic prompt", llm.Requests()[0].Instructions)
}
