package extension_test

import (
	"testing"
	"time"

	"github.com/okanmail/okan/pkg/extension"
	"github.com/okanmail/okan/pkg/extension/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Simple smoke test without using AsyncTestListener.
func TestAsyncBrokerEmitCallsOneListener(t *testing.T) {
	broker := &extension.AsyncEventBroker[event.CheckResult]{}

	events := make(chan event.CheckResult, 1)
	broker.AddListener("x", func(r event.CheckResult) {
		events <- r
	})

	broker.Emit(&event.CheckResult{RecordID: "r1", CannotSend: true})

	select {
	case got := <-events:
		assert.Equal(t, "r1", got.RecordID)
		assert.True(t, got.CannotSend)
	case <-time.After(time.Second * 2):
		t.Fatal("Timeout waiting for event")
	}
}

func TestAsyncBrokerEmitCallsMultipleListeners(t *testing.T) {
	broker := &extension.AsyncEventBroker[event.RecordMetadata]{}

	first := broker.AsyncTestListener("first", 1)
	second := broker.AsyncTestListener("second", 1)

	want := event.RecordMetadata{ID: "a", AlertCount: 2}
	broker.Emit(&want)

	firstGot, err := first()
	require.NoError(t, err)
	assert.Equal(t, want, *firstGot)

	secondGot, err := second()
	require.NoError(t, err)
	assert.Equal(t, want, *secondGot)
}

func TestAsyncBrokerPanickingListener(t *testing.T) {
	broker := &extension.AsyncEventBroker[string]{}
	broker.AddListener("panics", func(string) { panic("boom") })
	second := broker.AsyncTestListener("second", 1)

	want := "hi"
	broker.Emit(&want)

	got, err := second()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestAsyncBrokerAddingDuplicateNameReplacesPrevious(t *testing.T) {
	broker := &extension.AsyncEventBroker[string]{}

	first := broker.AsyncTestListener("dup", 1)
	second := broker.AsyncTestListener("dup", 1)

	want := "hi"
	broker.Emit(&want)

	firstGot, err := first()
	require.Error(t, err)
	assert.Nil(t, firstGot)

	secondGot, err := second()
	require.NoError(t, err)
	assert.Equal(t, want, *secondGot)
}

func TestAsyncBrokerRemovingListener(t *testing.T) {
	broker := &extension.AsyncEventBroker[string]{}

	first := broker.AsyncTestListener("1", 1)
	second := broker.AsyncTestListener("2", 1)
	broker.RemoveListener("1")
	broker.RemoveListener("doesn't crash")
	assert.Equal(t, []string{"2"}, broker.Listeners())

	want := "hi"
	broker.Emit(&want)

	firstGot, err := first()
	require.Error(t, err)
	assert.Nil(t, firstGot)

	secondGot, err := second()
	require.NoError(t, err)
	assert.Equal(t, want, *secondGot)
}
