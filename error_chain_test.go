package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

func TestBuildErrorChain(t *testing.T) {
	t.Run("wrapped chain outermost first", func(t *testing.T) {
		inner := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
		middle := fmt.Errorf("failed to connect to database: %w", inner)
		outer := fmt.Errorf("startup failed: %w", middle)

		chain, root := buildErrorChain(outer)
		require.Len(t, chain, 3)
		assert.Equal(t, outer.Error(), chain[0])
		assert.Equal(t, inner.Error(), chain[2])
		assert.Equal(t, inner.Error(), root)
	})

	t.Run("single error", func(t *testing.T) {
		chain, root := buildErrorChain(errors.New("alone"))
		assert.Equal(t, []string{"alone"}, chain)
		assert.Equal(t, "alone", root)
	})

	t.Run("nil error", func(t *testing.T) {
		chain, root := buildErrorChain(nil)
		assert.Empty(t, chain)
		assert.Empty(t, root)
	})

	t.Run("repeated messages stop traversal", func(t *testing.T) {
		base := errors.New("same text")
		wrapped := fmt.Errorf("%w", base)

		chain, _ := buildErrorChain(wrapped)
		assert.Equal(t, []string{"same text"}, chain)
	})
}

type loopError struct{ next error }

func (e *loopError) Error() string { return fmt.Sprintf("loop at %p", e) }
func (e *loopError) Unwrap() error { return e.next }

func TestBuildErrorChain_CycleGuard(t *testing.T) {
	// Two errors unwrapping to each other must not walk forever
	a := &loopError{}
	b := &loopError{next: a}
	a.next = b

	chain, root := buildErrorChain(a)
	assert.NotEmpty(t, chain)
	assert.LessOrEqual(t, len(chain), 50)
	assert.NotEmpty(t, root)
}

func TestJoinChain(t *testing.T) {
	assert.Equal(t, emptyString, joinChain(nil))
	assert.Equal(t, "a", joinChain([]string{"a"}))
	assert.Equal(t, "a -> b -> c", joinChain([]string{"a", "b", "c"}))
}

func TestServiceError_EmitsChainFields(t *testing.T) {
	var buf bytes.Buffer
	svc := New(
		WithConfig(Config{Level: "debug", ShutdownTimeoutMS: 100}),
		WithEngine(&ZerologEngine{logger: zerolog.New(&buf)}),
	)
	require.NoError(t, svc.Initialize())
	defer svc.Close()

	inner := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	outer := fmt.Errorf("startup failed: %w", inner)

	svc.Error(context.Background(), Capture(outer))

	var entry logEntry
	require.NoError(t, json.NewDecoder(&buf).Decode(&entry))

	assert.Equal(t, "error", entry[FieldLevel])
	assert.Equal(t, outer.Error(), entry[FieldMessage])
	assert.Equal(t, string(KindGeneral), entry[FieldType])
	assert.NotEmpty(t, entry[FieldLogID])
	assert.NotEmpty(t, entry[FieldTraceID])

	detail, ok := entry[FieldError].(map[string]any)
	require.True(t, ok, "expected %q to be a serialized error detail", FieldError)
	assert.Equal(t, outer.Error(), detail["message"])
	assert.NotEmpty(t, detail["name"])
	assert.Contains(t, detail["stack"], " -> ")

	chain, ok := entry[fieldErrorChain].([]any)
	require.True(t, ok, "expected %q to be present", fieldErrorChain)
	assert.Len(t, chain, 2)
	assert.Equal(t, inner.Error(), entry[fieldErrorRoot])
}
