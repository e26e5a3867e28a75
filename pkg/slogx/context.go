package slogx

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/aipface/pkg/idx"
)

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithRequestID attaches a fresh request id to the context logger unless one
// is already present.
func WithRequestID(ctx context.Context) (context.Context, idx.ID) {
	if id, ok := ctx.Value(reqIDKey{}).(idx.ID); ok && !id.IsZero() {
		return ctx, id
	}

	id := idx.New()
	ctx = context.WithValue(ctx, reqIDKey{}, id)
	return WithContext(ctx, FromContext(ctx).With("req_id", id.String())), id
}

type reqIDKey struct{}
