package csync

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceAppendPrepend(t *testing.T) {
	t.Parallel()

	s := NewSlice[string]()
	s.Append("b", "c")
	s.Prepend("a")

	require.Equal(t, 3, s.Len())
	require.Equal(t, []string{"a", "b", "c"}, s.Copy())
}

func TestSliceSetSlice(t *testing.T) {
	t.Parallel()

	s := NewSlice[int]()
	s.Append(1, 2, 3)

	src := []int{7, 8}
	s.SetSlice(src)
	src[0] = 99 // 内部持有副本，外部修改不可见
	require.Equal(t, []int{7, 8}, s.Copy())
}

func TestSliceDeleteFunc(t *testing.T) {
	t.Parallel()

	s := NewSlice[int]()
	s.Append(1, 2, 3, 4)
	s.DeleteFunc(func(n int) bool { return n%2 == 0 })
	require.Equal(t, []int{1, 3}, s.Copy())
}

func TestSliceUpdateFunc(t *testing.T) {
	t.Parallel()

	s := NewSlice[int]()
	s.Append(1, 2, 3)

	found := s.UpdateFunc(
		func(n int) bool { return n == 2 },
		func(n int) int { return n * 10 },
	)
	require.True(t, found)
	require.Equal(t, []int{1, 20, 3}, s.Copy())

	found = s.UpdateFunc(
		func(n int) bool { return n == 99 },
		func(n int) int { return n },
	)
	require.False(t, found)
}

func TestSliceSeq(t *testing.T) {
	t.Parallel()

	s := NewSlice[int]()
	s.Append(1, 2, 3)

	var got []int
	for v := range s.Seq() {
		got = append(got, v)
	}
	require.Equal(t, []int{1, 2, 3}, got)
}
