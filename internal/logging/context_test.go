package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	// Initially empty.
	assert.Equal(t, "", ComputationID(ctx))
	assert.Equal(t, "", VarName(ctx))
	assert.Equal(t, "", Channel(ctx))

	// Set values.
	ctx = WithComputationID(ctx, "c-123")
	ctx = WithVarName(ctx, "V7")
	ctx = WithChannel(ctx, "shared memory")

	// Round-trip.
	assert.Equal(t, "c-123", ComputationID(ctx))
	assert.Equal(t, "V7", VarName(ctx))
	assert.Equal(t, "shared memory", Channel(ctx))
}

func TestLogWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithComputationID(context.Background(), "c-9")
	ctx = WithChannel(ctx, "files")

	LogWith(ctx, logger).Info("run")
	out := buf.String()
	assert.Contains(t, out, "computation_id=c-9")
	assert.Contains(t, out, "channel=files")
	assert.NotContains(t, out, "var=")
}

func TestLogWith_EmptyContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogWith(context.Background(), logger).Info("run")
	out := buf.String()
	assert.NotContains(t, out, "computation_id")
	assert.NotContains(t, out, "channel")
}
