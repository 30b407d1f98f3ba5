package mockwire

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStore_Basics(t *testing.T) {
	s := NewStateStore()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("count", 3)
	v, ok := s.Get("count")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	s.Set("count", 4)
	v, _ = s.Get("count")
	assert.Equal(t, 4, v, "set overwrites")

	s.Delete("count")
	_, ok = s.Get("count")
	assert.False(t, ok)
}

func TestStateStore_AllReturnsCopy(t *testing.T) {
	s := NewStateStore()
	s.Set("a", 1)

	all := s.All()
	all["b"] = 2

	_, ok := s.Get("b")
	assert.False(t, ok, "mutating the snapshot must not touch the store")
}

func TestStateStore_Reset(t *testing.T) {
	s := NewStateStore()
	s.Set("a", 1)
	s.Set("b", 2)

	s.Reset()
	assert.Empty(t, s.All())
}

func TestStateStore_ConcurrentAccess(t *testing.T) {
	s := NewStateStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Set("key", n)
		}(i)
		go func() {
			defer wg.Done()
			s.Get("key")
			s.All()
		}()
	}
	wg.Wait()
}
