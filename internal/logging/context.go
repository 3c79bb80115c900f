package logging

import "context"

type ctxKey struct{}

// IntoContext returns a copy of ctx carrying logger.
func IntoContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger carried by ctx. Commands started without
// one log through the default logger.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(Logger); ok {
			return logger
		}
	}
	return DefaultLogger()
}
