// Package metrics reports custom metrics, events and method traces to New
// Relic. Every helper is a no-op when the context carries no application.
package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type newRelicContextKey struct{}

// NewRelicContextKey is the context key holding the *newrelic.Application.
var NewRelicContextKey = newRelicContextKey{}

// WithApplication returns a copy of ctx that records against app. A nil app
// leaves ctx untouched.
func WithApplication(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey, app)
}

func application(ctx context.Context) *newrelic.Application {
	app, _ := ctx.Value(NewRelicContextKey).(*newrelic.Application)
	return app
}

func RecordCount(ctx context.Context, metricName string, count uint64) {
	if app := application(ctx); app != nil {
		app.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records duration in milliseconds.
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if app := application(ctx); app != nil {
		app.RecordCustomMetric(metricName, float64(duration/time.Millisecond))
	}
}

func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	if app := application(ctx); app != nil {
		app.RecordCustomEvent(eventName, kvPairs)
	}
}
