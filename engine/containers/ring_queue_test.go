package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)
	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	require.NoError(t, rq.Enqueue(3))
	assert.ErrorIs(t, rq.Enqueue(4), ErrQueueFull)

	v, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = rq.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, []int{2, 3}, rq.Values())
}

func TestRingQueuePushOverwritesOldest(t *testing.T) {
	rq := NewRingQueue[float64](2)
	rq.Push(1)
	rq.Push(2)
	rq.Push(3)

	assert.Equal(t, []float64{2, 3}, rq.Values())
	assert.Equal(t, 2, rq.Len())

	_, _ = rq.Dequeue()
	_, _ = rq.Dequeue()
	_, err := rq.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}
