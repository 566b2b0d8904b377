package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestWithoutApplication(t *testing.T) {
	ctx := WithApplication(context.Background(), nil)
	assert.Nil(t, ctx.Value(NewRelicContextKey))

	// None of these should panic without an application or transaction.
	RecordCount(ctx, "count", 1)
	RecordDuration(ctx, "duration", time.Second)
	RecordEvent(ctx, "event", map[string]interface{}{"key": "value"})

	tracer := TraceMethodCall(ctx, "metrics", "TestWithoutApplication")
	assert.Nil(t, tracer)
	tracer.AddAttribute("key", "value")
	tracer.OnError(context.Canceled)
	tracer.End()
}

func TestFlattenEntry(t *testing.T) {
	entry := logrus.NewEntry(logrus.StandardLogger())
	entry.Message = "flow failed"
	assert.Equal(t, "flow failed", flattenEntry(entry))

	entry = entry.WithField("flow", "basic").WithError(errors.New("rpc unavailable"))
	entry.Message = "flow failed"
	assert.Equal(t, `message="flow failed", error="rpc unavailable", data={"flow":"basic"}`, flattenEntry(entry))
}
