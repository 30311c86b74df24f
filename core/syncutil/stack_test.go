package syncutil

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	var s Stack[int]
	assert.True(t, s.Empty())
	assert.Nil(t, s.Flush())

	s.Push(1)
	s.Push(2)
	s.Push(3)
	assert.False(t, s.Empty())

	v, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, []int{1, 2}, s.Flush())
	assert.True(t, s.Empty())

	_, ok = s.Pop()
	assert.False(t, ok)
}

func TestStack_ConcurrentPush(t *testing.T) {
	var s Stack[int]
	var wg sync.WaitGroup

	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Push(i)
		}(i)
	}

	var got []int
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	// Flush while pushers are still running; nothing may be lost.
	for {
		got = append(got, s.Flush()...)
		select {
		case <-done:
			got = append(got, s.Flush()...)
			sort.Ints(got)
			assert.Len(t, got, 1000)
			for i, v := range got {
				assert.Equal(t, i, v)
			}
			return
		default:
		}
	}
}
