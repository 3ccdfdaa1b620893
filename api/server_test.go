package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/hupe1980/agentshop/agent"
	"github.com/hupe1980/agentshop/core"
	"github.com/hupe1980/agentshop/model"
	"github.com/hupe1980/agentshop/order"
	"github.com/hupe1980/agentshop/shoptools"
)

type stubChatter struct {
	sessionID string
	text      string
	err       error
	ended     []string
}

func (s *stubChatter) Chat(_ context.Context, sessionID, text string) (string, error) {
	s.sessionID, s.text = sessionID, text
	if s.err != nil {
		return "", s.err
	}
	return "echo: " + text, nil
}

func (s *stubChatter) EndSession(sessionID string) { s.ended = append(s.ended, sessionID) }

func newServer(t *testing.T, optFns ...func(o *Options)) (*Server, *order.Store) {
	t.Helper()
	store := order.NewStore()
	reg, err := shoptools.NewRegistry(store)
	require.NoError(t, err)
	optFns = append([]func(o *Options){func(o *Options) { o.Store = store }}, optFns...)
	return NewServer(reg, optFns...), store
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	rec, out := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestListTools(t *testing.T) {
	s, _ := newServer(t)
	rec, _ := do(t, s, http.MethodGet, "/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var defs []model.ToolDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &defs))
	require.Len(t, defs, 7)
	assert.Equal(t, "add_item_to_order", defs[0].Function.Name)
}

func TestExecuteTool(t *testing.T) {
	s, store := newServer(t)

	rec, out := do(t, s, http.MethodPost, "/tools/create_order", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "create_order", out["tool"])
	assert.Equal(t, 1.0, out["result"])

	rec, out = do(t, s, http.MethodPost, "/tools/add_item_to_order", `{"order_id":1,"item_id":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, shoptools.SuccessAddItemMessage, out["result"])

	items, err := store.Items(1)
	require.NoError(t, err)
	assert.Equal(t, []order.ItemID{4}, items)
}

func TestExecuteTool_ErrorStatus(t *testing.T) {
	s, _ := newServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown tool", "/tools/missing", "", http.StatusNotFound, "NOT_FOUND"},
		{"malformed json", "/tools/get_order_items", "{", http.StatusBadRequest, "INVALID_ARGUMENTS"},
		{"missing argument", "/tools/get_order_items", "{}", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not quadratic", "/tools/solve_quadratic", `{"a":0,"b":1,"c":1}`, http.StatusUnprocessableEntity, "EXECUTION_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, out := do(t, s, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, out["code"])
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestOrders(t *testing.T) {
	s, store := newServer(t)
	id := store.Create()
	require.NoError(t, store.AddItem(id, 9))

	rec, _ := do(t, s, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"items":[9]}]`, rec.Body.String())

	rec, _ = do(t, s, http.MethodGet, "/orders/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"items":[9]}`, rec.Body.String())

	rec, out := do(t, s, http.MethodGet, "/orders/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order_not_found", out["code"])
}

func TestChat(t *testing.T) {
	chatter := &stubChatter{}
	s, _ := newServer(t, func(o *Options) { o.Agent = chatter })

	rec, out := do(t, s, http.MethodPost, "/chat", `{"session_id":"abc","message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", out["session_id"])
	assert.Equal(t, "echo: hi", out["reply"])

	rec, out = do(t, s, http.MethodPost, "/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, out["session_id"])
	assert.Equal(t, out["session_id"], chatter.sessionID)
}

func TestEndSession(t *testing.T) {
	s, _ := newServer(t)
	rec, _ := do(t, s, http.MethodDelete, "/chat/abc", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	chatter := &stubChatter{}
	s, _ = newServer(t, func(o *Options) { o.Agent = chatter })

	rec, _ = do(t, s, http.MethodDelete, "/chat/abc", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"abc"}, chatter.ended)
}

func TestChat_Errors(t *testing.T) {
	s, _ := newServer(t)
	rec, _ := do(t, s, http.MethodPost, "/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	chatter := &stubChatter{err: errors.New("model down")}
	s, _ = newServer(t, func(o *Options) { o.Agent = chatter })

	rec, _ = do(t, s, http.MethodPost, "/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, s, http.MethodPost, "/chat", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out := do(t, s, http.MethodPost, "/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, out["error"], "model down")
}

func TestChat_WithToolAgent(t *testing.T) {
	store := order.NewStore()
	reg, err := shoptools.NewRegistry(store)
	require.NoError(t, err)

	llm := model.NewMockModel("mock").
		EnqueueCalls(core.FunctionCall{Name: "create_order", Arguments: "{}"}).
		EnqueueText("Created order 1.")
	s := NewServer(reg, func(o *Options) { o.Agent = agent.New("shop", llm, reg) })

	rec, out := do(t, s, http.MethodPost, "/chat", `{"session_id":"s","message":"new order please"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Created order 1.", out["reply"])
	assert.Equal(t, 1, store.Len())
}

func TestTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	s, _ := newServer(t, func(o *Options) { o.TracerProvider = tp })
	do(t, s, http.MethodGet, "/tools", "")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /tools", spans[0].Name)
}
