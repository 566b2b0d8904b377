package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/echo-client/pkg/config"
)

func TestConfig(t *testing.T) {
	ctx := context.Background()
	c := NewConfig(nil)

	for _, step := range []struct {
		apply    func()
		expected interface{}
		err      error
	}{
		{func() {}, nil, config.ErrNoValue},
		{func() { c.SetValue("finalized") }, "finalized", nil},
		{c.InduceErrors, nil, errDeveloperInduced},
		{c.StopInducingErrors, "finalized", nil},
		{c.ClearValue, nil, config.ErrNoValue},
		{func() { c.SetValue(uint64(5000)) }, uint64(5000), nil},
		{c.Shutdown, nil, config.ErrShutdown},
	} {
		step.apply()

		val, err := c.Get(ctx)
		assert.Equal(t, step.err, err)
		assert.Equal(t, step.expected, val)
	}
}
