package sender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomStrategy_StaysInRange(t *testing.T) {
	s := NewSeededRandomStrategy(1, 2)

	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		idx, err := s.Next(3)
		require.NoError(t, err)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 3)
		seen[idx] = true
	}
	assert.Len(t, seen, 3, "every index must be reachable")
}

func TestRandomStrategy_SingleItem(t *testing.T) {
	s := NewRandomStrategy()
	for i := 0; i < 10; i++ {
		idx, err := s.Next(1)
		require.NoError(t, err)
		require.Zero(t, idx)
	}
}

func TestRandomStrategy_Empty(t *testing.T) {
	_, err := NewRandomStrategy().Next(0)
	require.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestRoundRobinStrategy(t *testing.T) {
	s := NewRoundRobinStrategy()

	var got []int
	for i := 0; i < 4; i++ {
		idx, err := s.Next(3)
		require.NoError(t, err)
		got = append(got, idx)
	}
	require.Equal(t, []int{0, 1, 2, 0}, got) // Возвращаемся к первому.
}

func TestRoundRobinStrategy_Empty(t *testing.T) {
	_, err := NewRoundRobinStrategy().Next(0)
	require.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestNewStrategy(t *testing.T) {
	for _, name := range []string{"", StrategyRandom, StrategyRoundRobin} {
		s, err := NewStrategy(name)
		require.NoError(t, err, name)
		idx, err := s.Next(5)
		require.NoError(t, err)
		assert.Less(t, idx, 5)
	}

	_, err := NewStrategy("weighted")
	require.Error(t, err)
}
