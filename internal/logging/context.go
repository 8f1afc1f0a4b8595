package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	computationIDKey ctxKey = iota
	varNameKey
	channelKey
)

// WithComputationID returns a context with the computation ID set.
func WithComputationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, computationIDKey, id)
}

// WithVarName returns a context with the terminal node's DSL variable name set.
func WithVarName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, varNameKey, name)
}

// WithChannel returns a context with the transfer channel set.
func WithChannel(ctx context.Context, channel string) context.Context {
	return context.WithValue(ctx, channelKey, channel)
}

// ComputationID extracts the computation ID from the context, or "" if absent.
func ComputationID(ctx context.Context) string {
	v, _ := ctx.Value(computationIDKey).(string)
	return v
}

// VarName extracts the DSL variable name from the context, or "" if absent.
func VarName(ctx context.Context) string {
	v, _ := ctx.Value(varNameKey).(string)
	return v
}

// Channel extracts the transfer channel from the context, or "" if absent.
func Channel(ctx context.Context) string {
	v, _ := ctx.Value(channelKey).(string)
	return v
}

// LogWith returns a logger enriched with correlation attributes from the
// context. Only non-empty values are added.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := ComputationID(ctx); id != "" {
		logger = logger.With("computation_id", id)
	}
	if name := VarName(ctx); name != "" {
		logger = logger.With("var", name)
	}
	if ch := Channel(ctx); ch != "" {
		logger = logger.With("channel", ch)
	}
	return logger
}
