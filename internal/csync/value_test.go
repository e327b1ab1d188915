package csync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueGetSet(t *testing.T) {
	t.Parallel()

	v := NewValue(1)
	require.Equal(t, 1, v.Get())

	v.Set(42)
	require.Equal(t, 42, v.Get())
}

func TestValueUpdate(t *testing.T) {
	t.Parallel()

	v := NewValue(10)
	got := v.Update(func(n int) int { return n * 2 })
	require.Equal(t, 20, got)
	require.Equal(t, 20, v.Get())
}

func TestValueUpdateConcurrent(t *testing.T) {
	t.Parallel()

	v := NewValue(0)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()
	require.Equal(t, 100, v.Get())
}

func TestValueRejectsPointerKinds(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { NewValue(&struct{}{}) })
	require.Panics(t, func() { NewValue([]int{}) })
	require.Panics(t, func() { NewValue(map[string]int{}) })
}
