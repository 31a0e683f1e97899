package policy_test

import (
	"testing"

	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	p := policy.Kinds(domain.KindLiteral, "spacer")

	assert.True(t, p(memory.NewComponent("a", domain.KindLiteral)))
	assert.True(t, p(memory.NewComponent("b", "spacer")))
	assert.False(t, p(memory.NewComponent("c", domain.KindControl)))
	assert.False(t, policy.None(memory.NewComponent("d", domain.KindLiteral)))
}

func TestExpr(t *testing.T) {
	p, err := policy.Expr(`kind == "label" && children == 0 || id startsWith "static-"`)
	require.NoError(t, err)

	withChild := memory.NewComponent("l2", "label").Append(memory.NewComponent("x", domain.KindControl))

	assert.True(t, p(memory.NewComponent("l1", "label")))
	assert.False(t, p(withChild))
	assert.True(t, p(memory.NewComponent("static-footer", domain.KindControl)))
	assert.False(t, p(memory.NewComponent("grid", domain.KindControl)))
}

func TestExpr_Invalid(t *testing.T) {
	_, err := policy.Expr("")
	assert.Error(t, err)

	_, err = policy.Expr(`kind ==`)
	assert.Error(t, err)

	_, err = policy.Expr(`children + 1`)
	assert.Error(t, err, "non-boolean expressions are rejected at compile time")
}

func TestBuild(t *testing.T) {
	p, err := policy.Build(nil, "", policy.DefaultBoundary)
	require.NoError(t, err)
	assert.True(t, p(memory.NewComponent("p", domain.KindPanel)))

	p, err = policy.Build([]string{"region", " card "}, `id == "special"`, policy.DefaultBoundary)
	require.NoError(t, err)
	assert.True(t, p(memory.NewComponent("r", "region")))
	assert.True(t, p(memory.NewComponent("c", "card")))
	assert.True(t, p(memory.NewComponent("special", domain.KindControl)))
	assert.False(t, p(memory.NewComponent("p", domain.KindPanel)), "explicit kinds replace the fallback")

	_, err = policy.Build(nil, "(", policy.DefaultBoundary)
	assert.Error(t, err)
}
