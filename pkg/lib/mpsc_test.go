package lib

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMpscOrder(t *testing.T) {
	q := NewMpsc[int]()
	require.True(t, q.Empty())
	for i := 0; i < 5; i++ {
		q.Push(i)
	}
	require.Equal(t, 5, q.Len())
	for i := 0; i < 5; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := q.Pop()
	require.False(t, ok)
	require.True(t, q.Empty())
	require.Zero(t, q.Len())
}

func TestMpscConcurrentPush(t *testing.T) {
	q := NewMpsc[int]()
	const producers, perProducer = 8, 1000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(p*perProducer + i)
			}
		}(p)
	}
	wg.Wait()

	// 同一生产者的元素保持先后顺序
	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	count := 0
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		p, i := v/perProducer, v%perProducer
		require.Greater(t, i, last[p])
		last[p] = i
		count++
	}
	require.Equal(t, producers*perProducer, count)
}
