package ctxlogger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandlerAddsAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ContextHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	ctx := AppendCtx(context.Background(), slog.String("request_id", "r1"))
	child := AppendCtx(ctx, slog.String("conn_id", "c1"))

	logger.InfoContext(child, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "r1", record["request_id"])
	assert.Equal(t, "c1", record["conn_id"])

	buf.Reset()
	logger.InfoContext(ctx, "parent")
	var parent map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parent))
	assert.Equal(t, "r1", parent["request_id"])
	_, ok := parent["conn_id"]
	assert.False(t, ok, "parent context must not see child attrs")
}
