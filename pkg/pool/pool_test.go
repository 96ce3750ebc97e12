package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolResetsOnPut(t *testing.T) {
	p := New(func() *[]int { s := make([]int, 0, 4); return &s }, func(s *[]int) { *s = (*s)[:0] })

	s := p.Get()
	*s = append(*s, 1, 2, 3)
	p.Put(s)

	// sync.Pool may drop objects, so only the reset is checked
	assert.Empty(t, *s)
}

func TestPoolStats(t *testing.T) {
	p := NewVectors(3)

	a := p.Get()
	b := p.Get()
	require.Len(t, *a, 3)

	allocated, inUse, _ := p.Stats()
	assert.Equal(t, int64(2), allocated)
	assert.Equal(t, int64(2), inUse)

	p.Put(a)
	p.Put(b)
	_, inUse, _ = p.Stats()
	assert.Zero(t, inUse)
}

func TestPoolConcurrentUse(t *testing.T) {
	p := NewVectors(16)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				v := p.Get()
				(*v)[0] = float64(w)
				p.Put(v)
			}
		}(w)
	}
	wg.Wait()

	allocated, inUse, reused := p.Stats()
	assert.Zero(t, inUse)
	assert.Equal(t, int64(800), allocated+reused)
}
