package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentshop/model"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSolve(t *testing.T) {
	out, err := run(t, "", "solve", "1", "-3", "2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"two_real","x1":2,"x2":1}`, strings.TrimSpace(out))
}

func TestSolve_Describe(t *testing.T) {
	out, err := run(t, "", "solve", "--describe", "2", "4", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `"kind":"one_real"`)
	assert.Contains(t, out, "[calc_discriminant]")
	assert.Contains(t, out, "+-- D == 0 --> [calc_one_root]")
}

func TestSolve_Errors(t *testing.T) {
	_, err := run(t, "", "solve", "0", "1", "1")
	assert.Error(t, err)

	_, err = run(t, "", "solve", "x", "1", "1")
	assert.ErrorContains(t, err, "invalid coefficient")

	_, err = run(t, "", "solve", "1", "1")
	assert.Error(t, err)
}

func TestLinear(t *testing.T) {
	out, err := run(t, "", "linear", "20", "100")
	require.NoError(t, err)
	assert.Equal(t, "-5\n", out)

	_, err = run(t, "", "linear", "0", "1")
	assert.Error(t, err)
}

func TestTools(t *testing.T) {
	out, err := run(t, "", "tools")
	require.NoError(t, err)

	var defs []model.ToolDefinition
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	require.Len(t, defs, 7)
	assert.Equal(t, "solve_quadratic", defs[6].Function.Name)
}

func TestChat_MockProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "mock")
	t.Setenv("STREAM", "false")

	out, err := run(t, "hello\n\n/bye\nnever sent\n", "chat", "--env-file", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Bot: Mock response to: hello")
	assert.NotContains(t, out, "never sent")
}

func TestChat_SingleMessageStreaming(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "mock")
	t.Setenv("STREAM", "true")

	out, err := run(t, "", "chat", "--env-file", "", "-m", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Bot: Mock response to: hi\n", out)
}

func TestChat_InvalidSettings(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "unknown")

	_, err := run(t, "", "chat", "--env-file", "")
	assert.ErrorContains(t, err, "unknown provider")
}
