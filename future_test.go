package gojacallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeferred_Resolve(t *testing.T) {
	t.Parallel()
	d := NewDeferred[string]()
	fut := d.Future()

	go d.Resolve("hello")

	v, err := fut.Get(testContext(t))
	require.NoError(t, err)
	require.Equal(t, "hello", v)

	// Repeated Get observes the same settlement.
	v, err = fut.Get(testContext(t))
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestDeferred_Reject(t *testing.T) {
	t.Parallel()
	d := NewDeferred[string]()
	boom := errors.New("boom")
	d.Reject(boom)

	v, err := d.Future().Get(testContext(t))
	require.ErrorIs(t, err, boom)
	require.Empty(t, v)
}

func TestDeferred_FirstSettlementWins(t *testing.T) {
	t.Parallel()
	d := NewDeferred[int]()
	d.Resolve(1)
	d.Resolve(2)
	d.Reject(errors.New("too late"))

	v, err := d.Future().Get(testContext(t))
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestFuture_ContextCancellation(t *testing.T) {
	t.Parallel()
	d := NewDeferred[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Future().Get(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// A later settlement is still observable with a live context.
	d.Resolve(9)
	v, err := d.Future().Get(testContext(t))
	require.NoError(t, err)
	require.Equal(t, 9, v)
}

func TestFuture_Done(t *testing.T) {
	t.Parallel()
	d := NewDeferred[int]()
	fut := d.Future()

	select {
	case <-fut.Done():
		t.Fatal("future settled before Resolve")
	default:
	}

	d.Resolve(1)
	select {
	case <-fut.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Resolve")
	}
}
