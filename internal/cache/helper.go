package cache

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// startSpan traces one draft cache operation. It is a no-op unless the request
// carries a sentry hub.
func startSpan(ctx context.Context, operation, key string) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	span := sentry.StartSpan(ctx, "cache.draft."+operation)
	span.Description = operation + " " + key
	span.Op = "cache"
	span.SetData("key", key)
	return span
}

// finishSpan records whether the key was found and closes the span
func finishSpan(span *sentry.Span, hit bool) {
	if span == nil {
		return
	}
	span.SetData("hit", hit)
	if hit {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusNotFound
	}
	span.Finish()
}
