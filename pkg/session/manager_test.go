package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
)

func TestManager_BuildsOnce(t *testing.T) {
	var builds atomic.Int32
	m := NewManager(func(_ context.Context, id string) (*memory.Component, error) {
		builds.Add(1)
		return memory.NewComponent(id, domain.KindPage), nil
	})
	ctx := context.Background()

	var first, second *memory.Component
	require.NoError(t, m.WithPage(ctx, "home", func(_ context.Context, p *memory.Component) error {
		first = p
		return nil
	}))
	require.NoError(t, m.WithPage(ctx, "home", func(_ context.Context, p *memory.Component) error {
		second = p
		return nil
	}))

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, builds.Load())
	assert.Equal(t, []string{"home"}, m.List())

	require.NoError(t, m.Drop(ctx, "home"))
	assert.Empty(t, m.List())
}

func TestManager_SerializesPerPage(t *testing.T) {
	m := NewManager(func(_ context.Context, id string) (*memory.Component, error) {
		return memory.NewComponent(id, domain.KindPage).Append(memory.NewComponent("counter", domain.KindControl)), nil
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithPage(ctx, "p", func(_ context.Context, page *memory.Component) error {
				c, _ := page.Find("counter")
				n, _ := c.Get("n")
				v, _ := n.(int)
				c.Set("n", v+1)
				return nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, m.WithPage(ctx, "p", func(_ context.Context, page *memory.Component) error {
		c, _ := page.Find("counter")
		n, _ := c.Get("n")
		assert.Equal(t, 50, n)
		return nil
	}))

	m.mu.Lock()
	assert.Empty(t, m.locks, "locks are released once idle")
	m.mu.Unlock()
}

func TestManager_NoFactory(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	err := m.WithPage(ctx, "missing", func(context.Context, *memory.Component) error { return nil })
	assert.ErrorIs(t, err, ErrPageNotFound)

	require.NoError(t, m.Put(ctx, "given", memory.NewComponent("given", domain.KindPage)))
	boom := errors.New("boom")
	err = m.WithPage(ctx, "given", func(context.Context, *memory.Component) error { return boom })
	assert.ErrorIs(t, err, boom)
}
