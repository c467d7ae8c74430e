// ABOUTME: Tests for the in-memory credential store
// ABOUTME: Covers get/set/remove semantics and concurrent access

package tokenstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetRemove(t *testing.T) {
	m := NewMemory()

	_, ok, err := m.Get("access_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set("access_token", "abc"))
	v, ok, err := m.Get("access_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, m.Set("access_token", "def"))
	v, _, _ = m.Get("access_token")
	assert.Equal(t, "def", v)

	require.NoError(t, m.Remove("access_token"))
	_, ok, _ = m.Get("access_token")
	assert.False(t, ok)
}

func TestMemory_RemoveMissingKey(t *testing.T) {
	m := NewMemory()
	assert.NoError(t, m.Remove("nope"))
	assert.Equal(t, 0, m.Len())
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = m.Set(key, "v")
			_, _, _ = m.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, m.Len())
}
