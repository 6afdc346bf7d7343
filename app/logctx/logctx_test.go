package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	Logger(context.Background(), base).Info("plain")
	assert.NotContains(t, buf.String(), "request_id")

	ctx := WithRequestID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", RequestID(ctx))

	Logger(ctx, base).Info("tagged")
	assert.Contains(t, buf.String(), "request_id=abc-123")
}

func TestLoggerFallsBackToDefault(t *testing.T) {
	assert.NotNil(t, Logger(context.Background(), nil))
}
