package postman_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/postman"
	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/dsl"
	"github.com/aretw0/postman/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPage(t *testing.T) (*memory.Component, *dsl.Builder) {
	t.Helper()
	b := dsl.New("Root")
	b.Root().
		Panel("B1").Control("L1").Set("x", 1).End().End().
		Panel("B2").Control("L2").Set("y", 2)
	root, err := b.Build()
	require.NoError(t, err)
	return root, b
}

func TestFacade_EndToEnd(t *testing.T) {
	ctx := context.Background()
	root, b := buildPage(t)
	store := memory.NewStore()

	eng, err := postman.New(postman.WithReportStore(store))
	require.NoError(t, err)

	act := eng.NewActivator(postman.WithRequestID("req-1"))
	require.NoError(t, act.OnTreeReady(ctx, root))

	l1, _ := b.Get("L1")
	l1.Set("x", 2)

	report, err := act.OnStateFinalized(ctx)
	require.NoError(t, err)

	b1, _ := b.Get("B1")
	b2, _ := b.Get("B2")
	assert.True(t, b1.Dirty())
	assert.False(t, b2.Dirty())
	assert.Equal(t, []string{"B1"}, report.DirtyIDs)
	assert.Equal(t, "resolved", act.Phase())

	stored, err := store.Load(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, report.DirtyIDs, stored.DirtyIDs)
}

func TestFacade_Process(t *testing.T) {
	ctx := context.Background()
	root, b := buildPage(t)

	eng, err := postman.New()
	require.NoError(t, err)

	report, err := eng.Process(ctx, root, func(context.Context) error {
		l2, _ := b.Get("L2")
		l2.Set("y", 3)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B2"}, report.DirtyIDs)

	// Next request on the same tree: fresh activator, nothing changed.
	root.Reset()
	report, err = eng.Process(ctx, root, nil)
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

func TestFacade_ProcessHandlerError(t *testing.T) {
	root, _ := buildPage(t)
	eng, err := postman.New()
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = eng.Process(context.Background(), root, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestFacade_ExpressionPolicies(t *testing.T) {
	ctx := context.Background()
	b := dsl.New("page")
	b.Root().
		Child("upd-1", "region").Control("field").Set("v", 1).End().End().
		Child("ad", "banner").Set("impressions", 1)
	root := b.MustBuild()

	eng, err := postman.New(
		postman.WithBoundaryExpr(`id startsWith "upd-"`),
		postman.WithIgnoreExpr(`kind == "banner"`),
	)
	require.NoError(t, err)

	report, err := eng.Process(ctx, root, func(context.Context) error {
		field, _ := b.Get("field")
		field.Set("v", 2)
		ad, _ := b.Get("ad")
		ad.Set("impressions", 2)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"upd-1"}, report.DirtyIDs)
	assert.Equal(t, []string{"field"}, report.ChangedIDs)
}

func TestFacade_InvalidExpression(t *testing.T) {
	_, err := postman.New(postman.WithBoundaryExpr("kind =="))
	assert.Error(t, err)

	_, err = postman.New(postman.WithIgnoreExpr("1 + "))
	assert.Error(t, err)
}

func TestFacade_IgnorePolicyNodeOnly(t *testing.T) {
	ctx := context.Background()
	b := dsl.New("page")
	b.Root().
		Panel("p").
		Literal("wrapper").Control("inner").Set("n", 0)
	root := b.MustBuild()

	for _, tc := range []struct {
		policy postman.IgnorePolicy
		dirty  bool
	}{
		{postman.IgnoreSubtree, false},
		{postman.IgnoreNodeOnly, true},
	} {
		root.Reset()
		eng, err := postman.New(postman.WithIgnorePolicy(tc.policy))
		require.NoError(t, err)

		_, err = eng.Process(ctx, root, func(context.Context) error {
			inner, _ := b.Get("inner")
			v, _ := inner.Get("n")
			inner.Set("n", v.(int)+1)
			return nil
		})
		require.NoError(t, err)

		p, _ := b.Get("p")
		assert.Equal(t, tc.dirty, p.Dirty(), "policy %s", tc.policy)
	}
}

func TestFacade_CustomStateReader(t *testing.T) {
	ctx := context.Background()
	root, b := buildPage(t)

	// Host exposes only a subset of state: changes to "y" are invisible.
	reader := ports.StateReaderFunc(func(n domain.Node) (domain.Snapshot, error) {
		c := n.(*memory.Component)
		x, _ := c.Get("x")
		return domain.Snapshot{"x": x}, nil
	})
	eng, err := postman.New(postman.WithStateReader(reader))
	require.NoError(t, err)

	report, err := eng.Process(ctx, root, func(context.Context) error {
		l2, _ := b.Get("L2")
		l2.Set("y", 99)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, report.Clean())
}
