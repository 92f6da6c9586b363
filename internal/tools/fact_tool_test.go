package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactToolInfo(t *testing.T) {
	tool := NewFactTool()
	info, err := tool.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FactToolName, info.Name)
}

func TestFactToolKnownTopic(t *testing.T) {
	tool := NewFactTool()
	out, err := tool.InvokableRun(context.Background(), `{"topic":"red planet"}`)
	require.NoError(t, err)

	var resp FactToolResp
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "mars", resp.Topic)
	assert.Equal(t, "red planet", resp.OriginalTopic)
	assert.True(t, resp.Expanded)
	assert.Contains(t, resp.Fact, "Red Planet")
}

func TestFactToolUnknownTopic(t *testing.T) {
	tool := NewFactTool()
	// 查不到主题返回提示消息，不是错误
	out, err := tool.InvokableRun(context.Background(), `{"topic":"quantum physics"}`)
	require.NoError(t, err)

	var resp FactToolResp
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Expanded)
	assert.Contains(t, resp.Fact, "I don't have specific facts")
}

func TestFactToolBadInput(t *testing.T) {
	tool := NewFactTool()

	_, err := tool.InvokableRun(context.Background(), `{"topic":""}`)
	assert.EqualError(t, err, "topic required")

	_, err = tool.InvokableRun(context.Background(), `not json`)
	assert.Error(t, err)
}
