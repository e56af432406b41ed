package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLMap_SetGetExpire(t *testing.T) {
	now := time.Now()
	m := NewTTLMap[int](time.Minute)
	m.now = func() time.Time { return now }

	m.Set("a", 1)
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Empty(t, m.Keys())
}

func TestTTLMap_KeysSweepDelete(t *testing.T) {
	now := time.Now()
	m := NewTTLMap[string](time.Minute)
	m.now = func() time.Time { return now }

	m.Set("b", "x")
	m.Set("a", "y")
	assert.Equal(t, []string{"a", "b"}, m.Keys())

	now = now.Add(30 * time.Second)
	m.Set("c", "z")
	now = now.Add(45 * time.Second)
	assert.Equal(t, []string{"c"}, m.Keys())
	assert.Equal(t, 2, m.Sweep())

	m.Delete("c")
	_, ok := m.Get("c")
	assert.False(t, ok)

	m.Set("d", "w")
	m.Clear()
	assert.Empty(t, m.Keys())
}

func TestTTLMap_Concurrent(t *testing.T) {
	m := NewTTLMap[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Set("k", i)
				m.Get("k")
				m.Keys()
			}
		}(i)
	}
	wg.Wait()
	_, ok := m.Get("k")
	assert.True(t, ok)
}
