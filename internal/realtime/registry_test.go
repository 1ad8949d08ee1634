package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	client := NewClient(1)

	registry.Register("p1", client)

	got, ok := registry.Lookup("p1")
	assert.True(t, ok)
	assert.Same(t, client, got)

	_, ok = registry.Lookup("p2")
	assert.False(t, ok)
}

func TestRegistry_SecondRegisterReplacesFirst(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	first := NewClient(1)
	second := NewClient(1)

	registry.Register("p1", first)
	registry.Register("p1", second)

	got, ok := registry.Lookup("p1")
	assert.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	client := NewClient(1)

	registry.Register("p1", client)
	registry.Unregister("p1", client)
	registry.Unregister("p1", client)

	_, ok := registry.Lookup("p1")
	assert.False(t, ok)
}

func TestRegistry_StaleUnregisterKeepsReplacement(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	first := NewClient(1)
	second := NewClient(1)

	registry.Register("p1", first)
	registry.Register("p1", second)

	// The replaced stream's deferred cleanup fires after the replacement;
	// it must not evict the new stream.
	registry.Unregister("p1", first)

	got, ok := registry.Lookup("p1")
	assert.True(t, ok)
	assert.Same(t, second, got)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			projectID := fmt.Sprintf("p%d", n%5)
			client := NewClient(1)
			registry.Register(projectID, client)
			registry.Lookup(projectID)
			registry.Unregister(projectID, client)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, registry.Len())
}
