package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()
	a, b := New(42), New(42)
	for range 16 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestChild(t *testing.T) {
	t.Parallel()
	p1, p2 := New(7), New(7)
	c1, c2 := Child(p1), Child(p2)
	assert.Equal(t, c1.Uint64(), c2.Uint64())

	sibling := Child(p1)
	assert.NotEqual(t, Child(New(7)).Uint64(), sibling.Uint64())
}

func TestSeed(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(99), Seed(99))
	assert.NotZero(t, Seed(0))
}
