package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := New[int]()
	for i := 0; i < 100; i++ {
		require.NoError(t, q.Push(i))
	}
	require.Equal(t, 100, q.Len())

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		v, err := q.Pop(ctx)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_ConcurrentProducerKeepsOrder(t *testing.T) {
	q := New[int]()
	const n = 5000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_ = q.Push(i)
		}
		q.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make([]int, 0, n)
	for {
		v, err := q.Pop(ctx)
		if err == ErrClosed {
			break
		}
		require.NoError(t, err)
		got = append(got, v)
	}
	wg.Wait()

	require.Len(t, got, n)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := New[string]()
	done := make(chan string, 1)
	go func() {
		v, _ := q.Pop(context.Background())
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("pop returned before push")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, q.Push("x"))
	select {
	case v := <-done:
		assert.Equal(t, "x", v)
	case <-time.After(2 * time.Second):
		t.Fatal("pop did not wake up")
	}
}

func TestQueue_CloseDrainsThenReportsClosed(t *testing.T) {
	q := New[int]()
	require.NoError(t, q.Push(1))
	require.NoError(t, q.Push(2))
	q.Close()

	require.ErrorIs(t, q.Push(3), ErrClosed)

	ctx := context.Background()
	v, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	_, err = q.Pop(ctx)
	require.ErrorIs(t, err, ErrClosed)
}

func TestQueue_DetachFailsPush(t *testing.T) {
	q := New[int]()
	require.NoError(t, q.Push(1))
	q.Detach()
	require.ErrorIs(t, q.Push(2), ErrReceiverGone)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PopHonoursContext(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := q.Pop(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
