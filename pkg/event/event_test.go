package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmitAndCancel(t *testing.T) {
	var got []any
	first := Listen("order.status.changed", func(_ context.Context, p any) { got = append(got, "a:"+p.(string)) })
	second := Listen("order.status.changed", func(_ context.Context, p any) { got = append(got, "b:"+p.(string)) })
	defer second()

	Emit(context.Background(), "order.status.changed", "o1")
	Emit(context.Background(), "other", "ignored")
	assert.Equal(t, []any{"a:o1", "b:o1"}, got)

	first()
	Emit(context.Background(), "order.status.changed", "o2")
	assert.Equal(t, []any{"a:o1", "b:o1", "b:o2"}, got)
}

func TestEmitAsyncDetachesCancel(t *testing.T) {
	done := make(chan error, 1)
	defer Listen("e", func(ctx context.Context, _ any) { done <- ctx.Err() })()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	EmitAsync(ctx, "e", nil)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("listener not called")
	}
}

func TestEmitAsyncSurvivesPanic(t *testing.T) {
	done := make(chan struct{})
	defer Listen("p", func(context.Context, any) { panic("boom") })()
	defer Listen("p", func(context.Context, any) { close(done) })()

	EmitAsync(context.Background(), "p", nil)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second listener not called")
	}
}
