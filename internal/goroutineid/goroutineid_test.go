package goroutineid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Parallel()

	id := Get()
	require.Positive(t, id)
	require.Equal(t, id, Get(), "repeated calls on one goroutine agree")

	var other int64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		other = Get()
	}()
	wg.Wait()
	require.Positive(t, other)
	require.NotEqual(t, id, other, "distinct goroutines get distinct IDs")
}

func TestParseHeader(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(123), parseHeader([]byte("goroutine 123 [running]:\nmain.main()")))
	require.Equal(t, int64(7), parseHeader([]byte("goroutine 7 [select]:")))
	require.Zero(t, parseHeader([]byte("not a stack header")))
	require.Zero(t, parseHeader(nil))
}

func BenchmarkGet(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Get()
	}
}
